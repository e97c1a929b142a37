package codec

import (
	"github.com/pkg/errors"
)

// EncodeOrdinary encodes text ignoring special tokens entirely: any special
// token string occurring in text is split and merged like ordinary text.
// It is total over arbitrary byte content, valid UTF-8 or not.
func (c *Codec) EncodeOrdinary(text string) ([]Token, error) {
	chunks, err := c.splitChunks(text)
	if err != nil {
		return nil, err
	}
	out := make([]Token, 0, len(chunks))
	for _, chunk := range chunks {
		tokens, err := c.encodeChunk(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, tokens...)
	}
	return out, nil
}

// encodeChunk returns the rank sequence of one splitter chunk, consulting the
// shared cache. The returned slice may be shared with the cache and must not
// be mutated by callers (they only append it into their own output).
func (c *Codec) encodeChunk(chunk string) ([]Token, error) {
	// Whole-chunk hit in the rank table needs no merging and no memo.
	if rank, ok := c.encoder[chunk]; ok {
		return []Token{rank}, nil
	}
	if tokens, ok := c.cache.get(chunk); ok {
		return tokens, nil
	}
	tokens, err := c.bytePairEncode([]byte(chunk))
	if err != nil {
		return nil, err
	}
	c.cache.add(chunk, tokens)
	return tokens, nil
}

// Encode converts text to token ids.
//
// Special tokens listed in allowed are matched literally, consumed whole and
// emitted as their reserved rank. If a special token listed in disallowed
// (and not in allowed) occurs in text, Encode fails with a
// DisallowedSpecialTokenError naming the token and its byte offset. Special
// tokens in neither set are treated as ordinary text.
//
// Pass AllSpecial() as disallowed for the strict policy where every special
// token is rejected unless explicitly allowed.
func (c *Codec) Encode(text string, allowed, disallowed []string) ([]Token, error) {
	allowedSet := makeSet(allowed)

	if len(disallowed) > 0 && c.specialPat != nil {
		disallowedSet := makeSet(disallowed)
		for idx := 0; idx <= len(text); {
			loc := c.specialPat.FindStringIndex(text[idx:])
			if loc == nil {
				break
			}
			s, e := idx+loc[0], idx+loc[1]
			token := text[s:e]
			if disallowedSet[token] && !allowedSet[token] {
				return nil, errors.WithStack(&DisallowedSpecialTokenError{Token: token, Offset: s})
			}
			idx = e
		}
	}

	var out []Token
	start := 0
	for start < len(text) {
		s, e, found := c.nextSpecial(text, start, allowedSet)
		if !found {
			s = len(text)
		}
		if s > start {
			tokens, err := c.EncodeOrdinary(text[start:s])
			if err != nil {
				return nil, err
			}
			out = append(out, tokens...)
		}
		if !found {
			break
		}
		out = append(out, c.specialEncoder[text[s:e]])
		start = e
	}
	return out, nil
}

// Count returns the number of tokens Encode would produce for the same
// arguments, with the same error behavior.
func (c *Codec) Count(text string, allowed, disallowed []string) (int, error) {
	tokens, err := c.Encode(text, allowed, disallowed)
	if err != nil {
		return 0, err
	}
	return len(tokens), nil
}
