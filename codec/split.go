package codec

import (
	"github.com/pkg/errors"
)

// splitChunks applies the scheme's pre-tokenization pattern to text and
// returns the matched chunks in order. The patterns are written so that their
// matches are contiguous and cover the whole input; each chunk is then merged
// independently, never across chunk boundaries.
//
// regexp2 reports match positions in rune offsets, so chunk text is taken via
// Match.String() rather than by slicing the input.
func (c *Codec) splitChunks(text string) ([]string, error) {
	var chunks []string
	m, err := c.splitPat.FindStringMatch(text)
	if err != nil {
		return nil, errors.Wrapf(err, "split pattern failed on input for %q", c.name)
	}
	for m != nil {
		chunks = append(chunks, m.String())
		m, err = c.splitPat.FindNextMatch(m)
		if err != nil {
			return nil, errors.Wrapf(err, "split pattern failed on input for %q", c.name)
		}
	}
	return chunks, nil
}

// nextSpecial returns the earliest literal occurrence, at or after start, of a
// special token contained in want. Matching at a position is longest-first
// (the scanner's alternatives are sorted longest first), so a shorter special
// that is a prefix of a longer one never shadows it. Occurrences of specials
// not in want are skipped whole, mirroring non-overlapping scanner semantics.
func (c *Codec) nextSpecial(text string, start int, want map[string]bool) (s, e int, found bool) {
	if c.specialPat == nil || len(want) == 0 {
		return 0, 0, false
	}
	for search := start; search <= len(text); {
		loc := c.specialPat.FindStringIndex(text[search:])
		if loc == nil {
			return 0, 0, false
		}
		s, e = search+loc[0], search+loc[1]
		if want[text[s:e]] {
			return s, e, true
		}
		search = e
	}
	return 0, 0, false
}

func makeSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
