package codec

import (
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// Decode maps tokens back to their exact byte sequences, concatenated in
// order. Any id outside both rank spaces fails with an UnknownTokenError;
// nothing is silently dropped or substituted.
//
// The result is the exact bytes fed to Encode, but is not guaranteed to be
// valid UTF-8 if the token sequence was constructed by hand. Use DecodeLossy
// for a best-effort string.
func (c *Codec) Decode(tokens []Token) ([]byte, error) {
	out := make([]byte, 0, 2*len(tokens))
	for _, token := range tokens {
		if b, ok := c.decoder[token]; ok {
			out = append(out, b...)
			continue
		}
		if b, ok := c.specialDecoder[token]; ok {
			out = append(out, b...)
			continue
		}
		return nil, errors.WithStack(&UnknownTokenError{Token: token})
	}
	return out, nil
}

// DecodeLossy decodes tokens to a string, replacing byte runs that are not
// valid UTF-8 with the Unicode replacement character. Unknown token ids are
// still an error: lossiness only applies to text encoding, never to ids.
func (c *Codec) DecodeLossy(tokens []Token) (string, error) {
	raw, err := c.Decode(tokens)
	if err != nil {
		return "", err
	}
	repaired, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		// The UTF-8 decoder substitutes rather than fail; an error here means
		// something is broken below us.
		return "", errors.Wrap(err, "utf-8 repair failed")
	}
	return string(repaired), nil
}

// DecodeSingleTokenBytes returns the byte sequence of one token id.
func (c *Codec) DecodeSingleTokenBytes(token Token) ([]byte, error) {
	if b, ok := c.decoder[token]; ok {
		return slices.Clone(b), nil
	}
	if b, ok := c.specialDecoder[token]; ok {
		return slices.Clone(b), nil
	}
	return nil, errors.WithStack(&UnknownTokenError{Token: token})
}
