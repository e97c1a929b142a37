package codec

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch operations run data-parallel across items: each worker encodes or
// decodes disjoint inputs against the same shared, read-only tables. The
// number of workers is bounded by GOMAXPROCS; the work is pure CPU.

// EncodeBatch encodes each text with the same special token policy. The
// result preserves input order. The first error aborts the batch.
func (c *Codec) EncodeBatch(texts []string, allowed, disallowed []string) ([][]Token, error) {
	results := make([][]Token, len(texts))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			tokens, err := c.Encode(text, allowed, disallowed)
			results[i] = tokens
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EncodeOrdinaryBatch encodes each text ignoring special tokens.
func (c *Codec) EncodeOrdinaryBatch(texts []string) ([][]Token, error) {
	results := make([][]Token, len(texts))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			tokens, err := c.EncodeOrdinary(text)
			results[i] = tokens
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DecodeBatch decodes each token sequence to a string. The bytes are passed
// through unchanged (Go strings may carry arbitrary bytes); use
// DecodeBytesBatch to make that explicit.
func (c *Codec) DecodeBatch(batches [][]Token) ([]string, error) {
	raw, err := c.DecodeBytesBatch(batches)
	if err != nil {
		return nil, err
	}
	results := make([]string, len(raw))
	for i, b := range raw {
		results[i] = string(b)
	}
	return results, nil
}

// DecodeBytesBatch decodes each token sequence to its exact bytes.
func (c *Codec) DecodeBytesBatch(batches [][]Token) ([][]byte, error) {
	results := make([][]byte, len(batches))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, tokens := range batches {
		i, tokens := i, tokens
		g.Go(func() error {
			b, err := c.Decode(tokens)
			results[i] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
