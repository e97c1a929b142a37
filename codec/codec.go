// Package codec implements the core byte-pair-encoding engine: rank tables,
// the text splitter, special token interception, the merge algorithm and the
// encode/decode operations built on top of them.
//
// A Codec is immutable once built and safe for concurrent use: the rank and
// special token tables are never written after New returns, and the only
// shared mutable state is the internal chunk cache, which is thread-safe.
package codec

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// Rank is the merge priority and identity of a byte sequence in the
// vocabulary. Lower ranks merge earlier.
type Rank = uint32

// Token is an encoded token identifier. Ordinary tokens are identified by
// their rank; special tokens use reserved ranks above the ordinary space.
type Token = Rank

// Codec encodes text to token ids and back for one vocabulary scheme.
type Codec struct {
	name string

	encoder map[string]Rank // byte sequence (as string key) -> rank
	decoder map[Rank][]byte // exact inverse of encoder

	specialEncoder map[string]Rank
	specialDecoder map[Rank][]byte
	// All special token strings, longest first, so that the scanner regex
	// always takes the longest special matching at a given position.
	sortedSpecials []string

	splitPat   *regexp2.Regexp // the scheme's pre-tokenization pattern
	specialPat *regexp.Regexp  // literal alternation of specials, nil when there are none

	cache *chunkCache
}

// New builds a Codec from a mergeable rank table, a special token table and
// the scheme's pre-tokenization pattern.
//
// The rank table is expected to have been validated by the loader (see
// vocab.Validate): bijective, with every single byte present. New only
// performs the cheap structural checks: the pattern must compile, the rank
// table must not map two byte sequences to the same rank, and special tokens
// must be disjoint from the ordinary table in both key and rank space.
func New(name string, mergeableRanks map[string]Rank, specialTokens map[string]Rank, pattern string) (*Codec, error) {
	splitPat, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile split pattern for %q", name)
	}

	c := &Codec{
		name:           name,
		encoder:        maps.Clone(mergeableRanks),
		decoder:        make(map[Rank][]byte, len(mergeableRanks)),
		specialEncoder: maps.Clone(specialTokens),
		specialDecoder: make(map[Rank][]byte, len(specialTokens)),
		splitPat:       splitPat,
		cache:          newChunkCache(DefaultCacheSize),
	}

	for piece, rank := range c.encoder {
		if prev, ok := c.decoder[rank]; ok {
			return nil, errors.Errorf("vocabulary %q is not bijective: rank %d maps to both %q and %q",
				name, rank, prev, piece)
		}
		c.decoder[rank] = []byte(piece)
	}

	for token, rank := range c.specialEncoder {
		if token == "" {
			return nil, errors.Errorf("empty special token string in %q", name)
		}
		if _, ok := c.encoder[token]; ok {
			return nil, errors.Errorf("special token %q of %q is also an ordinary vocabulary entry", token, name)
		}
		if piece, ok := c.decoder[rank]; ok {
			return nil, errors.Errorf("special token %q of %q reuses ordinary rank %d (%q)", token, name, rank, piece)
		}
		if _, ok := c.specialDecoder[rank]; ok {
			return nil, errors.Errorf("two special tokens of %q share rank %d", name, rank)
		}
		c.specialDecoder[rank] = []byte(token)
		c.sortedSpecials = append(c.sortedSpecials, token)
	}

	if len(c.sortedSpecials) > 0 {
		// Longest first; ties broken lexicographically for determinism.
		slices.SortFunc(c.sortedSpecials, func(a, b string) int {
			if d := len(b) - len(a); d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		quoted := make([]string, len(c.sortedSpecials))
		for i, s := range c.sortedSpecials {
			quoted[i] = regexp.QuoteMeta(s)
		}
		c.specialPat, err = regexp.Compile(strings.Join(quoted, "|"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compile special token scanner for %q", name)
		}
	}

	return c, nil
}

// WithCacheSize replaces the chunk cache with one holding up to n entries.
// Meant to be chained right after New, before the Codec is shared.
func (c *Codec) WithCacheSize(n int) *Codec {
	c.cache = newChunkCache(n)
	return c
}

// Name returns the scheme name the Codec was built with.
func (c *Codec) Name() string { return c.name }

// SpecialTokens returns a copy of the special token table.
func (c *Codec) SpecialTokens() map[string]Rank {
	return maps.Clone(c.specialEncoder)
}

// AllSpecial returns all special token strings. Passing the result as the
// disallowed set of Encode gives the strict policy where any special token
// occurring in the input is rejected unless explicitly allowed.
func (c *Codec) AllSpecial() []string {
	return slices.Clone(c.sortedSpecials)
}

// IsSpecialToken reports whether token is a reserved special token id.
func (c *Codec) IsSpecialToken(token Token) bool {
	_, ok := c.specialDecoder[token]
	return ok
}

// MaxTokenValue returns the largest token id in either space.
func (c *Codec) MaxTokenValue() Token {
	var maxID Token
	for rank := range c.decoder {
		if rank > maxID {
			maxID = rank
		}
	}
	for rank := range c.specialDecoder {
		if rank > maxID {
			maxID = rank
		}
	}
	return maxID
}

// VocabSize returns the total number of tokens, ordinary plus special.
func (c *Codec) VocabSize() int {
	return len(c.decoder) + len(c.specialDecoder)
}

// TokenByteValues returns the byte sequences of every token, sorted.
func (c *Codec) TokenByteValues() [][]byte {
	values := make([][]byte, 0, c.VocabSize())
	for _, b := range c.decoder {
		values = append(values, slices.Clone(b))
	}
	for _, b := range c.specialDecoder {
		values = append(values, slices.Clone(b))
	}
	slices.SortFunc(values, slices.Compare[[]byte])
	return values
}

// EndOfText is the conventional end-of-text special token string.
const EndOfText = "<|endoftext|>"

// EOTToken returns the end-of-text token id, if the scheme defines one.
func (c *Codec) EOTToken() (Token, bool) {
	rank, ok := c.specialEncoder[EndOfText]
	return rank, ok
}

// EncodeSingleToken returns the id whose byte sequence or special string is
// exactly text. It fails if text does not correspond to a single token.
func (c *Codec) EncodeSingleToken(text string) (Token, error) {
	if rank, ok := c.specialEncoder[text]; ok {
		return rank, nil
	}
	if rank, ok := c.encoder[text]; ok {
		return rank, nil
	}
	return 0, errors.Errorf("text %q does not correspond to a single token of %q", text, c.name)
}
