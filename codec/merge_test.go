package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytePairEncode_SingleBytes(t *testing.T) {
	c := newToyCodec(t, nil)
	for b := 0; b < 256; b++ {
		tokens, err := c.bytePairEncode([]byte{byte(b)})
		require.NoError(t, err)
		assert.Equal(t, []Token{Token(b)}, tokens)
	}
}

func TestBytePairEncode_MergesByRankOrder(t *testing.T) {
	// "he"=256 outranks any pair involving 'l' or 'o' (those pairs have no
	// rank at all here), so "hello" merges exactly once.
	c := newToyCodec(t, nil, "he", "llo")
	tokens, err := c.bytePairEncode([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []Token{256, 'l', 'l', 'o'}, tokens)

	// Adding "ll"=258 lets the merge continue: he+ll, then ll+o via "llo".
	c = newToyCodec(t, nil, "he", "llo", "ll")
	tokens, err = c.bytePairEncode([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []Token{256, 257}, tokens)
}

func TestBytePairEncode_LowerRankWinsOverLength(t *testing.T) {
	// "ab"=256 beats "bc"=257 on rank, leaving a dangling 'c'.
	c := newToyCodec(t, nil, "ab", "bc")
	tokens, err := c.bytePairEncode([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []Token{256, 'c'}, tokens)

	// Swap the ranks and the same input resolves the other way.
	c = newToyCodec(t, nil, "bc", "ab")
	tokens, err = c.bytePairEncode([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []Token{'a', 256}, tokens)
}

func TestBytePairEncode_LeftmostTieBreak(t *testing.T) {
	// Both (a,a) pairs in "aaa" have the same rank; the leftmost must merge,
	// yielding ["aa","a"], not ["a","aa"].
	c := newToyCodec(t, nil, "aa")
	tokens, err := c.bytePairEncode([]byte("aaa"))
	require.NoError(t, err)
	assert.Equal(t, []Token{256, 'a'}, tokens)

	// With four a's the leftmost rule pairs them up from the left.
	tokens, err = c.bytePairEncode([]byte("aaaa"))
	require.NoError(t, err)
	assert.Equal(t, []Token{256, 256}, tokens)
}

func TestBytePairEncode_WholeChunkRank(t *testing.T) {
	c := newToyCodec(t, nil, "he", "hel", "hell", "hello")
	tokens, err := c.bytePairEncode([]byte("hello"))
	require.NoError(t, err)
	// Chained merges reach the single whole-word token.
	assert.Equal(t, []Token{259}, tokens)
}

func TestBytePairEncode_MissingByteIsInvariantViolation(t *testing.T) {
	ranks := byteRanks()
	delete(ranks, "x")
	c, err := New("broken", ranks, nil, testPattern)
	require.NoError(t, err)

	_, err = c.bytePairEncode([]byte("x"))
	require.Error(t, err)
	var inv *InvariantViolationError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, []byte("x"), inv.Piece)

	_, err = c.bytePairEncode([]byte("xy"))
	require.Error(t, err)
	require.ErrorAs(t, err, &inv)
}

func TestBytePairEncode_ArbitraryBytesRoundTrip(t *testing.T) {
	c := newToyCodec(t, nil)
	pieces := [][]byte{
		{0x00},
		{0xff, 0xfe, 0xfd},
		{0x80, 0x81, 0xc0}, // invalid UTF-8
		[]byte("plain ascii"),
		[]byte("caf\xc3\xa9"), // valid multi-byte UTF-8
	}
	for _, piece := range pieces {
		tokens, err := c.bytePairEncode(piece)
		require.NoError(t, err)
		decoded, err := c.Decode(tokens)
		require.NoError(t, err)
		assert.Equal(t, piece, decoded)
	}
}
