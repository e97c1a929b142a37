package encodings

import (
	"context"
	"fmt"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	assert.Equal(t, []string{
		"cl100k_base", "gpt2", "o200k_base", "o200k_harmony",
		"p50k_base", "p50k_edit", "r50k_base",
	}, List())
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("cl100k_base")
	require.True(t, ok)
	assert.Equal(t, "cl100k_base", def.Name)
	assert.Equal(t, codec.Rank(100257), def.SpecialTokens[EndOfText])
	assert.Equal(t, codec.Rank(100276), def.SpecialTokens[EndOfPrompt])
	assert.NotEmpty(t, def.Vocab.URL)
	assert.Len(t, def.Vocab.SHA256, 64)

	_, ok = Lookup("no_such_encoding")
	assert.False(t, ok)
}

func TestDefinitions_PatternsCompile(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			def, ok := Lookup(name)
			require.True(t, ok)
			re, err := regexp2.Compile(def.Pattern, regexp2.None)
			require.NoError(t, err)
			m, err := re.FindStringMatch("Hello, world! it's 1234")
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestDefinitions_SpecialTokens(t *testing.T) {
	tests := []struct {
		encoding string
		eot      codec.Rank
	}{
		{"r50k_base", 50256},
		{"gpt2", 50256},
		{"p50k_base", 50256},
		{"p50k_edit", 50256},
		{"cl100k_base", 100257},
		{"o200k_base", 199999},
		{"o200k_harmony", 199999},
	}
	for _, tc := range tests {
		t.Run(tc.encoding, func(t *testing.T) {
			def, ok := Lookup(tc.encoding)
			require.True(t, ok)
			assert.Equal(t, tc.eot, def.SpecialTokens[EndOfText])
		})
	}
}

func TestHarmonySpecialTokens(t *testing.T) {
	tokens := harmonySpecialTokens()

	// 199998 through 201088 inclusive, with no gaps.
	assert.Len(t, tokens, 201088-199998+1)
	assert.Equal(t, codec.Rank(199998), tokens["<|startoftext|>"])
	assert.Equal(t, codec.Rank(199999), tokens[EndOfText])
	assert.Equal(t, codec.Rank(200002), tokens["<|return|>"])
	assert.Equal(t, codec.Rank(200005), tokens["<|channel|>"])
	assert.Equal(t, codec.Rank(200006), tokens["<|start|>"])
	assert.Equal(t, codec.Rank(200007), tokens["<|end|>"])
	assert.Equal(t, codec.Rank(200008), tokens["<|message|>"])
	assert.Equal(t, codec.Rank(200012), tokens["<|call|>"])
	assert.Equal(t, codec.Rank(200000), tokens["<|reserved_200000|>"])
	assert.NotContains(t, tokens, "<|reserved_200002|>")

	seen := make(map[codec.Rank]string, len(tokens))
	for token, rank := range tokens {
		prev, dup := seen[rank]
		require.False(t, dup, "rank %d assigned to both %q and %q", rank, prev, token)
		seen[rank] = token
	}
	for id := codec.Rank(199998); id <= 201088; id++ {
		assert.Contains(t, seen, id)
	}
}

func TestGet_UnknownEncoding(t *testing.T) {
	_, err := Get("no_such_encoding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown encoding")
	assert.Contains(t, err.Error(), "cl100k_base")
}

// TestGetWithClient_CL100K exercises the real cl100k_base vocabulary; it is
// skipped unless the file is already in the local cache, so the test suite
// never depends on the network.
func TestGetWithClient_CL100K(t *testing.T) {
	def, ok := Lookup("cl100k_base")
	require.True(t, ok)
	client := hub.New()
	if !client.HasCached(def.Vocab.URL) {
		t.Skipf("cl100k_base vocabulary not cached under %s", client.CacheDir())
	}

	enc, err := GetWithClient(context.Background(), client, "cl100k_base")
	require.NoError(t, err)

	tokens, err := enc.Encode("hello world", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []codec.Token{15339, 1917}, tokens)

	text, err := enc.DecodeLossy(tokens)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	tokens, err = enc.Encode(fmt.Sprintf("hello %s", EndOfText), []string{EndOfText}, nil)
	require.NoError(t, err)
	assert.Equal(t, codec.Token(100257), tokens[len(tokens)-1])
}
