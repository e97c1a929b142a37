// Package encodings defines the published vocabulary schemes (r50k_base,
// p50k_base, p50k_edit, cl100k_base, o200k_base, o200k_harmony, gpt2) and
// builds ready-to-use codecs for them.
//
// A scheme is pure data (split pattern, special tokens, vocabulary source),
// so the definitions can be inspected and tested without touching the
// network; only Get downloads anything.
package encodings

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/hub"
	"github.com/gomlx/go-tiktoken/vocab"
	"github.com/pkg/errors"
)

// Definition is the full recipe for one encoding scheme.
type Definition struct {
	Name          string
	Pattern       string // pre-tokenization pattern, regexp2 syntax
	SpecialTokens map[string]codec.Rank
	Vocab         vocab.Source
}

// Special token strings shared across the OpenAI schemes.
const (
	EndOfText   = "<|endoftext|>"
	FimPrefix   = "<|fim_prefix|>"
	FimMiddle   = "<|fim_middle|>"
	FimSuffix   = "<|fim_suffix|>"
	EndOfPrompt = "<|endofprompt|>"
)

// Pre-tokenization patterns, as published for each scheme family. They rely
// on the (?!\S) lookahead, hence regexp2 rather than the standard regexp.
const (
	r50kPattern   = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`
	cl100kPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

var o200kPattern = strings.Join([]string{
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`\p{N}{1,3}`,
	` ?[^\s\p{L}\p{N}]+[\r\n/]*`,
	`\s*[\r\n]+`,
	`\s+(?!\S)`,
	`\s+`,
}, "|")

// Vocabulary files published for each scheme, with their integrity hashes.
var (
	r50kVocab = vocab.Source{
		URL:    "https://openaipublic.blob.core.windows.net/encodings/r50k_base.tiktoken",
		SHA256: "306cd27f03c1a714eca7108e03d66b7dc042abe8c258b44c199a7ed9838dd930",
	}
	p50kVocab = vocab.Source{
		URL:    "https://openaipublic.blob.core.windows.net/encodings/p50k_base.tiktoken",
		SHA256: "94b5ca7dff4d00767bc256fdd1b27e5b17361d7b8a5f968547f9f23eb70d2069",
	}
	cl100kVocab = vocab.Source{
		URL:    "https://openaipublic.blob.core.windows.net/encodings/cl100k_base.tiktoken",
		SHA256: "223921b76ee99bde995b7ff738513eef100fb51d18c93597a113bcffe865b2a7",
	}
	o200kVocab = vocab.Source{
		URL:    "https://openaipublic.blob.core.windows.net/encodings/o200k_base.tiktoken",
		SHA256: "446a9538cb6c348e3516120d7c08b09f57c36495e2acfffe59a5bf8b0cfb1a2d",
	}
)

var definitions = map[string]func() Definition{
	"r50k_base": func() Definition {
		return Definition{
			Name:          "r50k_base",
			Pattern:       r50kPattern,
			SpecialTokens: map[string]codec.Rank{EndOfText: 50256},
			Vocab:         r50kVocab,
		}
	},
	"gpt2": func() Definition {
		// Same vocabulary and pattern as r50k_base under its historical name.
		return Definition{
			Name:          "gpt2",
			Pattern:       r50kPattern,
			SpecialTokens: map[string]codec.Rank{EndOfText: 50256},
			Vocab:         r50kVocab,
		}
	},
	"p50k_base": func() Definition {
		return Definition{
			Name:          "p50k_base",
			Pattern:       r50kPattern,
			SpecialTokens: map[string]codec.Rank{EndOfText: 50256},
			Vocab:         p50kVocab,
		}
	},
	"p50k_edit": func() Definition {
		return Definition{
			Name:    "p50k_edit",
			Pattern: r50kPattern,
			SpecialTokens: map[string]codec.Rank{
				EndOfText: 50256,
				FimPrefix: 50281,
				FimMiddle: 50282,
				FimSuffix: 50283,
			},
			Vocab: p50kVocab,
		}
	},
	"cl100k_base": func() Definition {
		return Definition{
			Name:    "cl100k_base",
			Pattern: cl100kPattern,
			SpecialTokens: map[string]codec.Rank{
				EndOfText:   100257,
				FimPrefix:   100258,
				FimMiddle:   100259,
				FimSuffix:   100260,
				EndOfPrompt: 100276,
			},
			Vocab: cl100kVocab,
		}
	},
	"o200k_base": func() Definition {
		return Definition{
			Name:    "o200k_base",
			Pattern: o200kPattern,
			SpecialTokens: map[string]codec.Rank{
				EndOfText:   199999,
				EndOfPrompt: 200018,
			},
			Vocab: o200kVocab,
		}
	},
	"o200k_harmony": func() Definition {
		return Definition{
			Name:          "o200k_harmony",
			Pattern:       o200kPattern,
			SpecialTokens: harmonySpecialTokens(),
			Vocab:         o200kVocab,
		}
	},
}

// harmonySpecialTokens builds the o200k_harmony special token set: the same
// o200k vocabulary with the harmony chat structure tokens on top, and every
// unassigned id up to 201088 reserved so the special space is contiguous.
func harmonySpecialTokens() map[string]codec.Rank {
	tokens := map[string]codec.Rank{
		"<|startoftext|>": 199998,
		EndOfText:         199999,
		"<|return|>":      200002,
		"<|constrain|>":   200003,
		"<|channel|>":     200005,
		"<|start|>":       200006,
		"<|end|>":         200007,
		"<|message|>":     200008,
		"<|call|>":        200012,
	}
	assigned := make(map[codec.Rank]bool, len(tokens))
	for _, rank := range tokens {
		assigned[rank] = true
	}
	for id := codec.Rank(200000); id <= 201088; id++ {
		if !assigned[id] {
			tokens[fmt.Sprintf("<|reserved_%d|>", id)] = id
		}
	}
	return tokens
}

// List returns the names of all defined encodings, sorted.
func List() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the definition of an encoding without loading its
// vocabulary.
func Lookup(name string) (Definition, bool) {
	ctor, ok := definitions[name]
	if !ok {
		return Definition{}, false
	}
	return ctor(), true
}

// Get builds the named encoding, downloading its vocabulary on first use.
// It is shorthand for GetWithClient with a background context and default
// hub client.
func Get(name string) (*codec.Codec, error) {
	return GetWithClient(context.Background(), nil, name)
}

// GetWithClient builds the named encoding, fetching its vocabulary through
// the given hub client (nil for the default).
func GetWithClient(ctx context.Context, client *hub.Client, name string) (*codec.Codec, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, errors.Errorf("unknown encoding %q (known: %s)", name, strings.Join(List(), ", "))
	}
	ranks, err := vocab.Load(ctx, client, def.Vocab)
	if err != nil {
		return nil, errors.WithMessagef(err, "while building encoding %q", name)
	}
	return codec.New(def.Name, ranks, def.SpecialTokens, def.Pattern)
}
