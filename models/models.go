// Package models maps model names to the encoding scheme they use.
//
// The mapping is a pure lookup: exact names first, then known prefixes (for
// dated snapshots like "gpt-4-0314" or fine-tune ids like "ft:gpt-4:...").
package models

import (
	"slices"
	"strings"

	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/encodings"
	"github.com/pkg/errors"
)

// modelEncodings maps exact model names to encoding names.
var modelEncodings = map[string]string{
	// Reasoning models.
	"o1":      "o200k_base",
	"o3":      "o200k_base",
	"o4-mini": "o200k_base",

	// Chat models.
	"gpt-5":         "o200k_base",
	"gpt-4.1":       "o200k_base",
	"gpt-4o":        "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
	"gpt-3.5":       "cl100k_base",
	"gpt-35-turbo":  "cl100k_base", // Azure deployment name

	// Base models.
	"davinci-002": "cl100k_base",
	"babbage-002": "cl100k_base",

	// Embedding models.
	"text-embedding-ada-002": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
	"text-embedding-3-large": "cl100k_base",

	// Deprecated text models.
	"text-davinci-003": "p50k_base",
	"text-davinci-002": "p50k_base",
	"text-davinci-001": "r50k_base",
	"text-curie-001":   "r50k_base",
	"text-babbage-001": "r50k_base",
	"text-ada-001":     "r50k_base",
	"davinci":          "r50k_base",
	"curie":            "r50k_base",
	"babbage":          "r50k_base",
	"ada":              "r50k_base",

	// Deprecated code models.
	"code-davinci-002": "p50k_base",
	"code-davinci-001": "p50k_base",
	"code-cushman-002": "p50k_base",
	"code-cushman-001": "p50k_base",
	"davinci-codex":    "p50k_base",
	"cushman-codex":    "p50k_base",

	// Deprecated edit models.
	"text-davinci-edit-001": "p50k_edit",
	"code-davinci-edit-001": "p50k_edit",

	// Deprecated embedding models.
	"text-similarity-davinci-001":  "r50k_base",
	"text-similarity-curie-001":    "r50k_base",
	"text-similarity-babbage-001":  "r50k_base",
	"text-similarity-ada-001":      "r50k_base",
	"text-search-davinci-doc-001":  "r50k_base",
	"text-search-curie-doc-001":    "r50k_base",
	"text-search-babbage-doc-001":  "r50k_base",
	"text-search-ada-doc-001":      "r50k_base",
	"code-search-babbage-code-001": "r50k_base",
	"code-search-ada-code-001":     "r50k_base",

	// Open source models.
	"gpt2":  "gpt2",
	"gpt-2": "gpt2",
}

// modelPrefixEncodings maps model name prefixes to encoding names, for dated
// snapshots and fine-tuned variants.
var modelPrefixEncodings = map[string]string{
	// Reasoning models.
	"o1-":      "o200k_base",
	"o3-":      "o200k_base",
	"o4-mini-": "o200k_base",

	// Chat models.
	"gpt-5-":       "o200k_base",
	"gpt-4.5-":     "o200k_base",
	"gpt-4.1-":     "o200k_base",
	"chatgpt-4o-":    "o200k_base",
	"gpt-4o-":        "o200k_base",
	"gpt-4-":         "cl100k_base",
	"gpt-3.5-turbo-": "cl100k_base",
	"gpt-35-turbo-":  "cl100k_base", // Azure deployment name
	"gpt-oss-":       "o200k_harmony",

	// Fine-tuned models.
	"ft:gpt-4o":        "o200k_base",
	"ft:gpt-4":         "cl100k_base",
	"ft:gpt-3.5-turbo": "cl100k_base",
	"ft:davinci-002":   "cl100k_base",
	"ft:babbage-002":   "cl100k_base",
}

// sortedPrefixes holds the keys of modelPrefixEncodings, longest first, so
// that overlapping prefixes (e.g. "ft:gpt-4o" vs "ft:gpt-4") always resolve
// to the most specific one regardless of map iteration order.
var sortedPrefixes = sortedModelPrefixes()

func sortedModelPrefixes() []string {
	prefixes := make([]string, 0, len(modelPrefixEncodings))
	for prefix := range modelPrefixEncodings {
		prefixes = append(prefixes, prefix)
	}
	slices.SortFunc(prefixes, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return prefixes
}

// EncodingNameForModel returns the encoding scheme name a model uses.
func EncodingNameForModel(modelName string) (string, error) {
	if name, ok := modelEncodings[modelName]; ok {
		return name, nil
	}
	for _, prefix := range sortedPrefixes {
		if strings.HasPrefix(modelName, prefix) {
			return modelPrefixEncodings[prefix], nil
		}
	}
	return "", errors.Errorf("unknown model %q", modelName)
}

// EncodingForModel builds the encoding a model uses, downloading the
// vocabulary on first use.
func EncodingForModel(modelName string) (*codec.Codec, error) {
	name, err := EncodingNameForModel(modelName)
	if err != nil {
		return nil, err
	}
	return encodings.Get(name)
}

// IsSupported reports whether the model name maps to a known encoding.
func IsSupported(modelName string) bool {
	_, err := EncodingNameForModel(modelName)
	return err == nil
}

// ListSupported returns all exactly-known model names, sorted.
func ListSupported() []string {
	names := make([]string, 0, len(modelEncodings))
	for name := range modelEncodings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
