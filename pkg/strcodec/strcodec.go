// Package strcodec is the string convenience layer of spec.md §6: it
// translates byte slices to and from the terminated bit-strings a wavelet
// trie requires to keep arbitrary byte content prefix-free, and offers
// thin *-String wrappers over the core trie operations in the style of
// routesum.go's InsertFromString/SummaryStrings wrapping rstrie.
package strcodec

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/wavetrie/wavetrie/pkg/bitstring"
	"github.com/wavetrie/wavetrie/pkg/wavelettrie"
)

// terminator is appended to every encoded byte sequence so that no two
// distinct non-terminated byte sequences remain prefixes of one another.
// This assumes input byte sequences themselves contain no trailing zero
// byte; callers needing full 8-bit transparency need a richer terminator
// encoding than this one.
var terminator = []byte{0x00}

// Encode translates s into a bit-string, most-significant-bit first, with a
// single zero-byte terminator appended.
func Encode(s []byte) *bitstring.BitString {
	terminated := make([]byte, 0, len(s)+1)
	terminated = append(terminated, s...)
	terminated = append(terminated, terminator...)
	return bitstring.NewFromBytes(terminated)
}

// Decode reverses Encode: it packs bits back into bytes and strips the
// trailing terminator byte. It returns an error if the bit-string is not a
// multiple of 8 bits, or has no terminator byte to strip.
func Decode(bits *bitstring.BitString) ([]byte, error) {
	if bits.Len() == 0 || bits.Len()%8 != 0 {
		return nil, errors.Errorf("strcodec: %d bits is not a valid terminated byte sequence", bits.Len())
	}
	raw := bits.ToBytes()
	if !bytes.HasSuffix(raw, terminator) {
		return nil, errors.New("strcodec: decoded bytes are missing their terminator")
	}
	return raw[:len(raw)-len(terminator)], nil
}

// InsertString inserts s, encoded, at index i.
func InsertString(n *wavelettrie.Node, s string, i int) error {
	return n.Insert(Encode([]byte(s)), i)
}

// AppendString appends s, encoded, to the end of the trie.
func AppendString(n *wavelettrie.Node, s string) error {
	return n.Append(Encode([]byte(s)))
}

// AccessString decodes the string stored at index i.
func AccessString(n *wavelettrie.Node, i int) (string, error) {
	bits, err := n.Access(i)
	if err != nil {
		return "", err
	}
	raw, err := Decode(bits)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// RankString counts occurrences of the (possibly partial) string prefix up
// to index i. A partial (non-terminated) prefix is encoded without a
// terminator, matching the bit-prefix semantics Rank already provides.
func RankString(n *wavelettrie.Node, s string, i int) (int, bool) {
	return n.Rank(bitstring.NewFromBytes([]byte(s)), i)
}

// SelectString finds the position of the k-th occurrence of the (possibly
// partial) string prefix s.
func SelectString(n *wavelettrie.Node, s string, k int) (int, bool) {
	return n.Select(bitstring.NewFromBytes([]byte(s)), k)
}

// SelectAllString finds the positions of every occurrence of the (possibly
// partial) string prefix s.
func SelectAllString(n *wavelettrie.Node, s string) []int {
	return n.SelectAll(bitstring.NewFromBytes([]byte(s)))
}
