// Package vocab loads and validates BPE vocabularies in the tiktoken file
// format: one entry per line, the token's bytes in base64 followed by a space
// and its decimal rank.
//
// The package is the "vocabulary supply" side of the library: everything it
// hands to codec.New has already been validated, so the core never has to
// recover from a malformed vocabulary at encode time.
package vocab

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"strconv"

	"github.com/gomlx/go-tiktoken/codec"
	"github.com/pkg/errors"
)

// Parse reads a tiktoken-format vocabulary. Blank lines are skipped; anything
// else malformed is an error naming the line.
func Parse(data []byte) (map[string]codec.Rank, error) {
	ranks := make(map[string]codec.Rank)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("invalid vocabulary line %d: expected \"<base64> <rank>\", got %q", lineNo, line)
		}
		token, err := base64.StdEncoding.DecodeString(string(fields[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid base64 on vocabulary line %d", lineNo)
		}
		rank, err := strconv.ParseUint(string(fields[1]), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rank on vocabulary line %d", lineNo)
		}
		ranks[string(token)] = codec.Rank(rank)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed reading vocabulary data")
	}
	return ranks, nil
}

// Validate checks the invariants the merge engine relies on: every possible
// single byte has an entry (the merge base case), and the rank mapping is
// bijective. A vocabulary failing here must not be handed to codec.New.
func Validate(ranks map[string]codec.Rank) error {
	seen := make(map[codec.Rank]string, len(ranks))
	for piece, rank := range ranks {
		if len(piece) == 0 {
			return errors.New("vocabulary contains an empty byte sequence")
		}
		if prev, ok := seen[rank]; ok {
			return errors.Errorf("vocabulary is not bijective: rank %d maps to both %q and %q", rank, prev, piece)
		}
		seen[rank] = piece
	}
	for b := 0; b < 256; b++ {
		if _, ok := ranks[string([]byte{byte(b)})]; !ok {
			return errors.Errorf("vocabulary is missing single-byte entry 0x%02x", b)
		}
	}
	return nil
}

// Basic returns a small demonstration vocabulary: all 256 single bytes at
// ranks 0-255 plus a handful of common English pairs. It passes Validate and
// is meant for tests and examples, not for compatibility with any published
// scheme.
func Basic() map[string]codec.Rank {
	ranks := make(map[string]codec.Rank, 256+64)
	next := codec.Rank(0)
	for b := 0; b < 256; b++ {
		ranks[string([]byte{byte(b)})] = next
		next++
	}
	common := []string{
		"th", "he", "in", "er", "an", "re", "ed", "nd", "on", "en",
		"at", "ou", "it", "is", "or", "ti", "as", "te", "et", "ng",
		"of", "al", "de", "se", "le", "to", "nt", "ha", "ar",
		" the", " and", " to", " of", " a", " in", " is", " it",
		" you", " that", " he", " was", " for", " are", " with",
	}
	for _, piece := range common {
		ranks[piece] = next
		next++
	}
	return ranks
}
