// Package wavelettrie implements a wavelet trie: a succinct, dynamic,
// indexed container for a sequence of binary strings. It follows Grossi &
// Ottaviano, "The Wavelet Trie: Maintaining an Indexed Sequence of Strings
// in Compressed Space". Strings are discovered and routed through the trie
// as they arrive; the stored alphabet is never declared up front.
//
// The trie requires stored sequences to be prefix-free: no stored sequence
// may be a prefix of another. Callers with arbitrary byte content should use
// package strcodec to append a terminator before inserting.
package wavelettrie

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wavetrie/wavetrie/pkg/bitstring"
)

// Node is a node in the wavelet trie: either the root of an entire trie, or
// an internal/leaf node reached by recursive descent from the root. A node
// is a leaf when both children are nil; otherwise both children are always
// non-nil (spec shape invariant 1).
type Node struct {
	prefix    *bitstring.BitString // α: the bit-string shared by every sequence in this subtree
	positions *bitstring.BitString // β: routes each stored sequence to left (0) or right (1)
	left      *Node
	right     *Node
}

// New returns an empty wavelet trie.
func New() *Node {
	return &Node{prefix: bitstring.New(), positions: bitstring.New()}
}

// FromSequences builds a wavelet trie from a list of sequences in a single
// pass, equivalent to (but faster than) appending them one at a time.
func FromSequences(sequences []*bitstring.BitString) *Node {
	n := New()
	n.insertStatic(sequences)
	return n
}

// FromParts reconstructs a node from its already-validated constituents,
// without running it through Insert. It exists for trusted collaborators —
// namely package wtsnap's Load — reconstructing a trie that was previously
// dumped from a canonical wavelet trie. Callers that are not reconstructing
// a previously-canonical trie can easily violate the shape invariants.
func FromParts(prefix, positions *bitstring.BitString, left, right *Node) *Node {
	return &Node{prefix: prefix, positions: positions, left: left, right: right}
}

// Prefix returns this node's α, the bit-string shared by every sequence
// stored in the subtree rooted here.
func (n *Node) Prefix() *bitstring.BitString { return n.prefix }

// Positions returns this node's β, the routing bit-string.
func (n *Node) Positions() *bitstring.BitString { return n.positions }

// Left returns the left child, or nil if n is a leaf.
func (n *Node) Left() *Node { return n.left }

// Right returns the right child, or nil if n is a leaf.
func (n *Node) Right() *Node { return n.right }

func (n *Node) isLeaf() bool { return n.left == nil && n.right == nil }

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.isLeaf() }

// Len returns the number of sequences indexed by this (sub)trie.
func (n *Node) Len() int { return n.positions.Len() }

// Append inserts sequence at the end of the trie.
func (n *Node) Append(sequence *bitstring.BitString) error {
	return n.Insert(sequence, n.Len())
}

// Insert places sequence at index i (0 <= i <= Len()), shifting sequences at
// and after i one position towards the end. Returns ErrIndexOutOfRange or
// ErrPrefixFreeViolation on failure; on failure the trie is left unchanged.
func (n *Node) Insert(sequence *bitstring.BitString, i int) error {
	if i < 0 || i > n.Len() {
		return errors.Wrapf(ErrIndexOutOfRange, "insert at %d into trie of length %d", i, n.Len())
	}
	return n.insert(sequence, i)
}

// insert is the recursive core of Insert (spec.md §4.1). Every branch either
// mutates unconditionally and returns nil, or returns an error having
// mutated nothing; insertToChild is the one path that must roll back an
// in-progress mutation if the recursive call below it fails.
func (n *Node) insert(sequence *bitstring.BitString, i int) error {
	if n.prefix.IsEmpty() {
		if n.isLeaf() {
			if n.positions.IsEmpty() {
				// Case 1: the empty trie becomes a one-sequence leaf.
				n.prefix = sequence.Clone()
				n.positions.Insert(i, false)
				return nil
			}
			// A leaf with empty α that already holds occurrences stores
			// the empty (remaining) sequence: an equal one is counted
			// again, a longer one would extend it.
			if sequence.IsEmpty() {
				n.positions.Insert(i, false)
				return nil
			}
			return ErrPrefixFreeViolation
		}

		// Case 2: empty α with children. Reached whenever the sequences
		// below this node disagree on their first bit, so that a split
		// left α empty.
		if sequence.IsEmpty() {
			return ErrPrefixFreeViolation
		}
		return n.insertToChild(sequence, i)
	}

	// Case 3: α is non-empty.
	if sequence.IsEmpty() {
		return ErrPrefixFreeViolation
	}
	if sequence.Equal(n.prefix) {
		if n.isLeaf() {
			n.positions.Insert(i, false)
			return nil
		}
		return ErrPrefixFreeViolation
	}
	if sequence.IsPrefixOf(n.prefix) {
		return ErrPrefixFreeViolation
	}
	if n.prefix.IsPrefixOf(sequence) {
		if n.isLeaf() {
			return ErrPrefixFreeViolation
		}
		return n.insertToChild(sequence, i)
	}

	return n.split(sequence, i)
}

// insertToChild strips n.prefix from sequence, routes the resulting bit into
// β, and recurses into the chosen child with the remaining suffix. n must be
// internal (both children non-nil) whenever this is called.
func (n *Node) insertToChild(sequence *bitstring.BitString, i int) error {
	bit, rest := sequence.DifferentSuffix(n.prefix.Len())

	originalPositions := n.positions.Clone()
	n.positions.Insert(i, bit)
	j := n.positions.Rank(bit, i)

	var err error
	if bit {
		err = n.right.insert(rest, j)
	} else {
		err = n.left.insert(rest, j)
	}
	if err != nil {
		n.positions = originalPositions
		return err
	}
	return nil
}

// split restructures n when sequence diverges from n.prefix partway through,
// per spec.md §4.1's split algorithm. It always succeeds.
func (n *Node) split(sequence *bitstring.BitString, i int) error {
	lcp := sequence.LongestCommonPrefix(n.prefix)
	bitSelf, sufSelf := n.prefix.DifferentSuffix(lcp.Len())
	bitSeq, sufSeq := sequence.DifferentSuffix(lcp.Len())

	originalNode := &Node{
		prefix:    sufSelf,
		positions: n.positions,
		left:      n.left,
		right:     n.right,
	}
	newLeaf := &Node{
		prefix:    sufSeq,
		positions: bitstring.NewFromElem(1, false),
	}

	positionsLen := originalNode.positions.Len()
	n.prefix = lcp
	n.positions = bitstring.NewFromElem(positionsLen, bitSelf)
	n.positions.Insert(i, bitSeq)

	if bitSelf {
		n.left, n.right = newLeaf, originalNode
	} else {
		n.left, n.right = originalNode, newLeaf
	}
	return nil
}

// Delete removes the sequence at index i. Returns ErrIndexOutOfRange if i is
// not in [0, Len()).
func (n *Node) Delete(i int) error {
	if i < 0 || i >= n.Len() {
		return errors.Wrapf(ErrIndexOutOfRange, "delete at %d from trie of length %d", i, n.Len())
	}
	return n.delete(i)
}

// delete is the recursive core of Delete (spec.md §4.1), including the
// merge that follows a child becoming empty.
func (n *Node) delete(i int) error {
	bit := n.positions.Get(i)
	j := n.positions.Rank(bit, i)

	if !n.isLeaf() {
		var child *Node
		if bit {
			child = n.right
		} else {
			child = n.left
		}
		if err := child.delete(j); err != nil {
			return err
		}
		if child.Len() == 0 {
			n.prefix.Push(!bit)

			var survivor *Node
			if bit {
				survivor = n.left
			} else {
				survivor = n.right
			}
			n.prefix.AppendBits(survivor.prefix)
			n.left = survivor.left
			n.right = survivor.right

			// survivor's own β already routes its remaining elements
			// correctly; the stale β at this level (sized for the branch
			// that just emptied out) cannot simply have index i removed
			// from it, since survivor may itself be internal.
			n.positions = survivor.positions
			if n.isLeaf() {
				n.positions.SetNone()
			}
			return nil
		}
	}

	n.positions.Delete(i)

	if n.Len() == 0 {
		n.prefix = bitstring.New()
	}
	if n.isLeaf() {
		n.positions.SetNone()
	}

	return nil
}

// Access retrieves the sequence stored at index i.
func (n *Node) Access(i int) (*bitstring.BitString, error) {
	if i < 0 || i >= n.Len() {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "access at %d into trie of length %d", i, n.Len())
	}
	return n.access(i), nil
}

func (n *Node) access(i int) *bitstring.BitString {
	result := n.prefix.Clone()
	if !n.isLeaf() {
		bit := n.positions.Get(i)
		j := n.positions.Rank(bit, i)
		result.Push(bit)
		if bit {
			result.AppendBits(n.right.access(j))
		} else {
			result.AppendBits(n.left.access(j))
		}
	}
	return result
}

// Rank counts the occurrences of sequence (which may itself be only a
// prefix) up to index i. The second return value is false if the trie is
// empty or sequence diverges from the stored sequences. A sequence that runs
// past the end of a leaf's α is not reported as absent: the count returned
// is then that leaf's β rank of the sequence's next bit.
func (n *Node) Rank(sequence *bitstring.BitString, i int) (int, bool) {
	if n.prefix.IsEmpty() && n.positions.IsEmpty() {
		return 0, false
	}
	if sequence.IsEmpty() || sequence.Equal(n.prefix) {
		return i, true
	}
	if sequence.Len() < n.prefix.Len() {
		if sequence.IsPrefixOf(n.prefix) {
			return i, true
		}
		return 0, false
	}
	if n.prefix.IsPrefixOf(sequence) {
		bit, rest := sequence.DifferentSuffix(n.prefix.Len())
		newIndex := n.positions.Rank(bit, i)
		var child *Node
		if bit {
			child = n.right
		} else {
			child = n.left
		}
		if child != nil {
			return child.Rank(rest, newIndex)
		}
		return newIndex, true
	}
	return 0, false
}

// Select finds the position of the k-th (1-indexed) occurrence of sequence.
// Returns false if there is no such occurrence.
func (n *Node) Select(sequence *bitstring.BitString, k int) (int, bool) {
	if sequence.IsEmpty() || sequence.Equal(n.prefix) || sequence.IsPrefixOf(n.prefix) {
		if k < 1 || k > n.positions.Len() {
			return 0, false
		}
		return k - 1, true
	}
	if n.prefix.IsPrefixOf(sequence) {
		if n.isLeaf() {
			return 0, false
		}
		bit, rest := sequence.DifferentSuffix(n.prefix.Len())
		var child *Node
		if bit {
			child = n.right
		} else {
			child = n.left
		}
		pos, ok := child.Select(rest, k)
		if !ok {
			return 0, false
		}
		return n.positions.Select(bit, pos+1)
	}
	return 0, false
}

// SelectAll finds the positions of every occurrence of sequence.
func (n *Node) SelectAll(sequence *bitstring.BitString) []int {
	if sequence.IsEmpty() || sequence.Equal(n.prefix) || sequence.IsPrefixOf(n.prefix) {
		result := make([]int, n.positions.Len())
		for i := range result {
			result[i] = i
		}
		return result
	}
	if n.prefix.IsPrefixOf(sequence) {
		if n.isLeaf() {
			return []int{}
		}
		bit, rest := sequence.DifferentSuffix(n.prefix.Len())
		var child *Node
		if bit {
			child = n.right
		} else {
			child = n.left
		}
		childPositions := child.SelectAll(rest)
		out := make([]int, 0, len(childPositions))
		for _, p := range childPositions {
			newPos, ok := n.positions.Select(bit, p+1)
			if !ok {
				panic("wavelettrie: select during select_all could not find an expected occurrence")
			}
			out = append(out, newPos)
		}
		return out
	}
	return []int{}
}

// insertStatic is the bulk constructor of spec.md §4.1.
func (n *Node) insertStatic(sequences []*bitstring.BitString) {
	if len(sequences) == 0 {
		return
	}

	first := sequences[0]
	allEqual := true
	for _, s := range sequences {
		if !s.Equal(first) {
			allEqual = false
			break
		}
	}
	if allEqual {
		n.prefix = first.Clone()
		n.positions = bitstring.NewFromElem(len(sequences), false)
		return
	}

	lcp := first.Clone()
	for _, s := range sequences[1:] {
		lcp = lcp.LongestCommonPrefix(s)
	}
	n.prefix = lcp

	var leftSeqs, rightSeqs []*bitstring.BitString
	for _, s := range sequences {
		bit, suffix := s.DifferentSuffix(lcp.Len())
		n.positions.Push(bit)
		if bit {
			rightSeqs = append(rightSeqs, suffix)
		} else {
			leftSeqs = append(leftSeqs, suffix)
		}
	}

	left := New()
	left.insertStatic(leftSeqs)
	right := New()
	right.insertStatic(rightSeqs)
	n.left = left
	n.right = right
}

// String renders n and its subtree as indented α/β pairs, for debugging and
// test failure output. It is not the DOT dump of spec.md §6; see package
// wtdot for that.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n *Node) render(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%sα=%s β=%s\n", strings.Repeat("  ", depth), n.prefix, n.positions)
	if !n.isLeaf() {
		n.left.render(b, depth+1)
		n.right.render(b, depth+1)
	}
}
