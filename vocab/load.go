package vocab

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/hub"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Source identifies where a scheme's vocabulary file lives and the sha256
// (hex) its contents must hash to. The hash is checked on every load, so a
// corrupted or tampered cache entry fails before the core ever sees it.
type Source struct {
	URL    string
	SHA256 string
}

// Load fetches (or reuses from cache) the vocabulary file for src through
// client, verifies its integrity hash, parses and validates it. A nil client
// uses a default hub.Client.
func Load(ctx context.Context, client *hub.Client, src Source) (map[string]codec.Rank, error) {
	if client == nil {
		client = hub.New()
	}
	path, err := client.Fetch(ctx, src.URL)
	if err != nil {
		return nil, errors.WithMessagef(err, "while fetching vocabulary from %q", src.URL)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cached vocabulary %q", path)
	}
	defer func() { _ = f.Close() }()

	// Vocabulary files run to a few MiB; map them instead of copying.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap cached vocabulary %q", path)
	}
	defer func() { _ = data.Unmap() }()

	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != src.SHA256 {
		return nil, errors.Errorf("vocabulary %q failed integrity check: expected sha256 %s, got %s (remove it to re-download)",
			path, src.SHA256, got)
	}

	ranks, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing vocabulary from %q", path)
	}
	if err := Validate(ranks); err != nil {
		return nil, errors.WithMessagef(err, "vocabulary from %q is unusable", src.URL)
	}
	klog.V(1).Infof("loaded %d ranks from %s", len(ranks), path)
	return ranks, nil
}

// LoadFile parses and validates a local tiktoken-format vocabulary file,
// without any integrity check. Meant for offline use with files the caller
// already trusts.
func LoadFile(path string) (map[string]codec.Rank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read vocabulary file %q", path)
	}
	ranks, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing vocabulary file %q", path)
	}
	if err := Validate(ranks); err != nil {
		return nil, errors.WithMessagef(err, "vocabulary file %q is unusable", path)
	}
	return ranks, nil
}
