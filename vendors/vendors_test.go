package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI(t *testing.T) {
	p := OpenAI{}
	assert.Equal(t, "openai", p.Name())
	assert.True(t, SupportsModel(p, "gpt-4"))
	assert.False(t, SupportsModel(p, "claude-3-opus"))
	assert.True(t, SupportsEncoding(p, "cl100k_base"))

	name, err := p.EncodingForModel("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "o200k_base", name)
}

func TestPlaceholderProviders(t *testing.T) {
	tests := []struct {
		provider Provider
		model    string
		encoding string
	}{
		{Anthropic{}, "claude-3-opus", "claude_base"},
		{XAI{}, "grok-1", "grok_base"},
	}
	for _, tc := range tests {
		t.Run(tc.provider.Name(), func(t *testing.T) {
			name, err := tc.provider.EncodingForModel(tc.model)
			require.NoError(t, err)
			assert.Equal(t, tc.encoding, name)

			_, err = tc.provider.EncodingForModel("gpt-4")
			require.Error(t, err)

			enc, err := tc.provider.CreateEncoding(tc.encoding)
			require.NoError(t, err)
			tokens, err := enc.Encode("hello there", nil, nil)
			require.NoError(t, err)
			decoded, err := enc.Decode(tokens)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello there"), decoded)

			_, err = tc.provider.CreateEncoding("no_such_encoding")
			require.Error(t, err)
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"anthropic", "openai", "xai"}, r.Names())

	p, ok := r.Get("openai")
	require.True(t, ok)
	assert.Equal(t, "openai", p.Name())

	_, ok = r.Get("nope")
	assert.False(t, ok)

	p, ok = r.FindForModel("gpt-4")
	require.True(t, ok)
	assert.Equal(t, "openai", p.Name())

	p, ok = r.FindForModel("claude-3-opus")
	require.True(t, ok)
	assert.Equal(t, "anthropic", p.Name())

	_, ok = r.FindForModel("not-a-model")
	assert.False(t, ok)

	p, ok = r.FindForEncoding("grok_base")
	require.True(t, ok)
	assert.Equal(t, "xai", p.Name())
}

func TestRegistry_Enumerations(t *testing.T) {
	r := NewRegistry()

	models := r.AllModels()
	assert.Contains(t, models, [2]string{"anthropic", "claude-3-opus"})
	assert.Contains(t, models, [2]string{"openai", "gpt-4"})
	assert.Contains(t, models, [2]string{"xai", "grok-1"})

	encs := r.AllEncodings()
	assert.Contains(t, encs, [2]string{"openai", "cl100k_base"})
	assert.Contains(t, encs, [2]string{"anthropic", "claude_base"})
}

func TestRegistry_EncodingForAnyModel(t *testing.T) {
	r := NewRegistry()

	// Placeholder vendors build without any download.
	enc, err := r.EncodingForAnyModel("grok-1")
	require.NoError(t, err)
	assert.Equal(t, "grok_base", enc.Name())

	_, err = r.EncodingForAnyModel("not-a-model")
	require.Error(t, err)

	enc, err = r.EncodingFromAnyVendor("claude_base")
	require.NoError(t, err)
	assert.Equal(t, "claude_base", enc.Name())

	_, err = r.EncodingFromAnyVendor("no_such_encoding")
	require.Error(t, err)
}
