package wavelettrie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavetrie/wavetrie/pkg/bitstring"
)

// bits builds a BitString from a string of '0'/'1' characters, MSB-first,
// matching the literal notation spec.md's scenarios use.
func bits(s string) *bitstring.BitString {
	b := make([]bool, len(s))
	for i, c := range s {
		b[i] = c == '1'
	}
	return bitstring.NewFromBits(b)
}

// paperExample builds the trie from spec.md scenario 1: insert, in order,
// 0001, 0011, 0100, 00100, 0100, 00100, 0100.
func paperExample(t *testing.T) *Node {
	t.Helper()
	n := New()
	for _, s := range []string{"0001", "0011", "0100", "00100", "0100", "00100", "0100"} {
		require.NoError(t, n.Append(bits(s)))
	}
	require.Equal(t, 7, n.Len())
	return n
}

func TestPaperExampleRank(t *testing.T) {
	n := paperExample(t)

	rank, ok := n.Rank(bits("0100"), 0)
	require.True(t, ok)
	assert.Equal(t, 0, rank)

	rank, ok = n.Rank(bits("0100"), 3)
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	rank, ok = n.Rank(bits("0100"), 5)
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	rank, ok = n.Rank(bits("0100"), 7)
	require.True(t, ok)
	assert.Equal(t, 3, rank)
}

func TestPaperExampleSelect(t *testing.T) {
	n := paperExample(t)

	pos, ok := n.Select(bits("0100"), 1)
	require.True(t, ok)
	assert.Equal(t, 2, pos)

	pos, ok = n.Select(bits("0100"), 2)
	require.True(t, ok)
	assert.Equal(t, 4, pos)

	pos, ok = n.Select(bits("0100"), 3)
	require.True(t, ok)
	assert.Equal(t, 6, pos)
}

func TestPaperExampleSelectAll(t *testing.T) {
	n := paperExample(t)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, n.SelectAll(bits("0")))
	assert.Equal(t, []int{0, 1, 3, 5}, n.SelectAll(bits("00")))
}

func TestByteSequences(t *testing.T) {
	n := New()
	require.NoError(t, n.Append(bitstring.NewFromBytes([]byte{0b00001000})))
	require.NoError(t, n.Append(bitstring.NewFromBytes([]byte{0b10000000})))
	require.NoError(t, n.Append(bitstring.NewFromBytes([]byte{0b10000100})))
	require.NoError(t, n.Append(bitstring.NewFromBytes([]byte{0b11000100, 0b10000000})))

	require.Equal(t, 4, n.Len())
	assert.Equal(t, []int{2, 3}, n.SelectAll(bits("001")))
}

func TestSingleElement(t *testing.T) {
	n := New()
	seq := bitstring.NewFromBytes([]byte{0b00001000})
	require.NoError(t, n.Append(seq))

	require.Equal(t, 1, n.Len())

	got, err := n.Access(0)
	require.NoError(t, err)
	assert.True(t, got.Equal(seq))

	rank, ok := n.Rank(seq, 1)
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestDeleteToEmpty(t *testing.T) {
	n := paperExample(t)

	for want := 6; want >= 0; want-- {
		require.NoError(t, n.Delete(0))
		assert.Equal(t, want, n.Len())
	}

	assert.True(t, n.IsLeaf())
	assert.Equal(t, 0, n.Prefix().Len())
}

// TestMergeAdoptsNonLeafSurvivorPositions covers a merge where the surviving
// sibling is itself internal, not a leaf: deleting the lone element on one
// side must adopt the survivor's own β, not just delete the stale index
// from this node's old β.
func TestMergeAdoptsNonLeafSurvivorPositions(t *testing.T) {
	n := New()
	require.NoError(t, n.Append(bits("00")))
	require.NoError(t, n.Append(bits("01")))
	require.NoError(t, n.Append(bits("1")))

	require.NoError(t, n.Delete(2))

	require.Equal(t, 2, n.Len())
	got0, err := n.Access(0)
	require.NoError(t, err)
	got1, err := n.Access(1)
	require.NoError(t, err)
	assert.Equal(t, "00", got0.String())
	assert.Equal(t, "01", got1.String())
}

func TestSplitAndMergeRoundTrip(t *testing.T) {
	n := New()
	require.NoError(t, n.Append(bits("01010101")))
	require.NoError(t, n.Append(bits("01011101")))
	require.False(t, n.IsLeaf(), "second insert should have forced a split")

	require.NoError(t, n.Delete(1))

	assert.Equal(t, 1, n.Len())
	assert.True(t, n.IsLeaf())

	got, err := n.Access(0)
	require.NoError(t, err)
	assert.Equal(t, "01010101", got.String())
}

func TestInsertPrefixFreeViolation(t *testing.T) {
	n := New()
	require.NoError(t, n.Append(bits("0100")))

	err := n.Insert(bits("01"), 0)
	assert.ErrorIs(t, err, ErrPrefixFreeViolation)
	assert.Equal(t, 1, n.Len(), "rejected insert must not mutate the trie")

	err = n.Insert(bits("010011"), 0)
	assert.ErrorIs(t, err, ErrPrefixFreeViolation)
	assert.Equal(t, 1, n.Len())
}

func TestInsertIndexOutOfRange(t *testing.T) {
	n := New()
	require.NoError(t, n.Append(bits("0100")))

	err := n.Insert(bits("0101"), 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	err = n.Delete(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = n.Access(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRankAccessAgreement(t *testing.T) {
	n := paperExample(t)
	for i := 0; i < n.Len(); i++ {
		seq, err := n.Access(i)
		require.NoError(t, err)

		before, ok := n.Rank(seq, i)
		require.True(t, ok)
		after, ok := n.Rank(seq, i+1)
		require.True(t, ok)
		assert.Equal(t, 1, after-before)
	}
}

func TestSelectRankInverse(t *testing.T) {
	n := paperExample(t)
	seq := bits("0100")
	total, ok := n.Rank(seq, n.Len())
	require.True(t, ok)

	for k := 1; k <= total; k++ {
		pos, ok := n.Select(seq, k)
		require.True(t, ok)

		before, _ := n.Rank(seq, pos)
		after, _ := n.Rank(seq, pos+1)
		assert.Equal(t, 1, after-before)
	}
}

func TestRoundTripAccess(t *testing.T) {
	sequences := []string{"0001", "0011", "0100", "00100", "0100", "00100", "0100"}
	n := New()
	for _, s := range sequences {
		require.NoError(t, n.Append(bits(s)))
	}

	for i, want := range sequences {
		got, err := n.Access(i)
		require.NoError(t, err)
		assert.Equal(t, want, got.String())
	}
}

func TestDeleteInsertIdempotence(t *testing.T) {
	n := paperExample(t)
	before := n.String()

	seq, err := n.Access(3)
	require.NoError(t, err)
	require.NoError(t, n.Delete(3))
	require.NoError(t, n.Insert(seq, 3))

	assert.Equal(t, before, n.String())
}

func TestBulkEqualsIncremental(t *testing.T) {
	sequences := []string{"0001", "0011", "0100", "00100", "0100", "00100", "0100"}

	incremental := New()
	for _, s := range sequences {
		require.NoError(t, incremental.Append(bits(s)))
	}

	seqs := make([]*bitstring.BitString, len(sequences))
	for i, s := range sequences {
		seqs[i] = bits(s)
	}
	bulk := FromSequences(seqs)

	require.Equal(t, incremental.Len(), bulk.Len())
	for i := range sequences {
		a, err := incremental.Access(i)
		require.NoError(t, err)
		b, err := bulk.Access(i)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	}

	for _, s := range []string{"0", "00", "0100", "01"} {
		query := bits(s)
		assert.Equal(t, incremental.SelectAll(query), bulk.SelectAll(query))
	}
}

func TestFromSequencesEmpty(t *testing.T) {
	n := FromSequences(nil)
	assert.Equal(t, 0, n.Len())
	assert.True(t, n.IsLeaf())
}

func TestFromSequencesAllEqual(t *testing.T) {
	seqs := []*bitstring.BitString{bits("101"), bits("101"), bits("101")}
	n := FromSequences(seqs)

	assert.Equal(t, 3, n.Len())
	assert.True(t, n.IsLeaf())
	for i := 0; i < 3; i++ {
		got, err := n.Access(i)
		require.NoError(t, err)
		assert.Equal(t, "101", got.String())
	}
}
