package codec

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// rankInf marks a pair with no entry in the rank table.
const rankInf = Rank(math.MaxUint32)

// part is one element of the merge state: a byte span of the piece starting
// at start, carrying the rank of the pair formed with the next part (rankInf
// when that concatenation is not in the table). The parts slice always ends
// with two sentinel entries so every real part has a "pair rank" slot.
type part struct {
	start int
	rank  Rank
}

// bytePairMerge runs the greedy merge loop over piece and returns the final
// parts. The span of part i is piece[parts[i].start:parts[i+1].start].
//
// Each iteration merges the pair with the minimal rank; on ties the leftmost
// pair wins (the scan below only replaces the minimum on a strictly smaller
// rank). This left-to-right tie-break must not be changed: it is what makes
// the output bit-identical to the reference tokenizers.
func (c *Codec) bytePairMerge(piece []byte) []part {
	parts := make([]part, len(piece)+1)
	for i := range parts {
		parts[i] = part{start: i, rank: rankInf}
	}

	// Rank of the span covering parts[i] through parts[i+skip+1], i.e. the
	// candidate merge of part i with its neighbor(s).
	getRank := func(parts []part, i, skip int) Rank {
		if i+skip+2 >= len(parts) {
			return rankInf
		}
		if rank, ok := c.encoder[string(piece[parts[i].start:parts[i+skip+2].start])]; ok {
			return rank
		}
		return rankInf
	}

	for i := 0; i+2 < len(parts); i++ {
		parts[i].rank = getRank(parts, i, 0)
	}

	for len(parts) > 1 {
		minRank := rankInf
		minIdx := -1
		for i := 0; i+1 < len(parts); i++ {
			if parts[i].rank < minRank {
				minRank, minIdx = parts[i].rank, i
			}
		}
		if minRank == rankInf {
			break
		}

		// Merge parts[minIdx] and parts[minIdx+1], then recompute the pair
		// ranks of the merged part and of its left neighbor, whose right
		// neighbor just changed.
		i := minIdx
		parts[i].rank = getRank(parts, i, 1)
		if i > 0 {
			parts[i-1].rank = getRank(parts, i-1, 1)
		}
		parts = slices.Delete(parts, i+1, i+2)
	}

	return parts
}

// bytePairEncode maps piece to its rank sequence. It is total over arbitrary
// bytes for a validated vocabulary; a missing span is reported as an
// InvariantViolationError.
func (c *Codec) bytePairEncode(piece []byte) ([]Token, error) {
	if len(piece) == 1 {
		rank, ok := c.encoder[string(piece)]
		if !ok {
			return nil, errors.WithStack(&InvariantViolationError{Piece: slices.Clone(piece)})
		}
		return []Token{rank}, nil
	}

	parts := c.bytePairMerge(piece)
	out := make([]Token, 0, len(parts)-1)
	for i := 0; i+1 < len(parts); i++ {
		span := piece[parts[i].start:parts[i+1].start]
		rank, ok := c.encoder[string(span)]
		if !ok {
			return nil, errors.WithStack(&InvariantViolationError{Piece: slices.Clone(span)})
		}
		out = append(out, rank)
	}
	return out, nil
}
