// Package vendors routes model and encoding names across tokenizer vendors.
//
// The OpenAI provider is the fully supported one; Anthropic and xAI are
// placeholders that answer with a demonstration vocabulary until those
// vendors publish their tokenizers.
package vendors

import (
	"slices"
	"strings"

	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/encodings"
	"github.com/gomlx/go-tiktoken/models"
	"github.com/gomlx/go-tiktoken/vocab"
	"github.com/pkg/errors"
)

// Provider answers encoding questions for one vendor's models.
type Provider interface {
	// Name returns the vendor name, e.g. "openai".
	Name() string

	// AvailableEncodings lists the encoding names this vendor defines.
	AvailableEncodings() []string

	// AvailableModels lists the model names this vendor supports.
	AvailableModels() []string

	// EncodingForModel returns the encoding name a model uses.
	EncodingForModel(model string) (string, error)

	// CreateEncoding builds an encoding by name.
	CreateEncoding(name string) (*codec.Codec, error)
}

// SupportsModel reports whether p lists model.
func SupportsModel(p Provider, model string) bool {
	return slices.Contains(p.AvailableModels(), model)
}

// SupportsEncoding reports whether p lists encoding.
func SupportsEncoding(p Provider, encoding string) bool {
	return slices.Contains(p.AvailableEncodings(), encoding)
}

// OpenAI implements Provider for the OpenAI schemes.
type OpenAI struct{}

func (OpenAI) Name() string { return "openai" }

func (OpenAI) AvailableEncodings() []string {
	return encodings.List()
}

func (OpenAI) AvailableModels() []string {
	return models.ListSupported()
}

func (OpenAI) EncodingForModel(model string) (string, error) {
	return models.EncodingNameForModel(model)
}

func (OpenAI) CreateEncoding(name string) (*codec.Codec, error) {
	return encodings.Get(name)
}

// placeholderPattern is used by vendors that have not published a tokenizer.
const placeholderPattern = `\p{L}+|\p{N}+|[^\s\p{L}\p{N}]+|\s+`

// Anthropic is a placeholder Provider until Anthropic publishes a tokenizer.
type Anthropic struct{}

func (Anthropic) Name() string { return "anthropic" }

func (Anthropic) AvailableEncodings() []string { return []string{"claude_base"} }

func (Anthropic) AvailableModels() []string {
	return []string{
		"claude-3-opus", "claude-3-sonnet", "claude-3-haiku",
		"claude-2.1", "claude-2.0", "claude-instant-1.2",
	}
}

func (Anthropic) EncodingForModel(model string) (string, error) {
	if strings.HasPrefix(model, "claude") {
		return "claude_base", nil
	}
	return "", errors.Errorf("unknown model %q", model)
}

func (Anthropic) CreateEncoding(name string) (*codec.Codec, error) {
	if name != "claude_base" {
		return nil, errors.Errorf("unknown encoding %q", name)
	}
	return codec.New(name, vocab.Basic(), nil, placeholderPattern)
}

// XAI is a placeholder Provider until xAI publishes a tokenizer.
type XAI struct{}

func (XAI) Name() string { return "xai" }

func (XAI) AvailableEncodings() []string { return []string{"grok_base"} }

func (XAI) AvailableModels() []string {
	return []string{"grok-1", "grok-1.5", "grok-2"}
}

func (XAI) EncodingForModel(model string) (string, error) {
	if strings.HasPrefix(model, "grok") {
		return "grok_base", nil
	}
	return "", errors.Errorf("unknown model %q", model)
}

func (XAI) CreateEncoding(name string) (*codec.Codec, error) {
	if name != "grok_base" {
		return nil, errors.Errorf("unknown encoding %q", name)
	}
	return codec.New(name, vocab.Basic(), nil, placeholderPattern)
}

// Registry holds a set of providers and routes lookups across them.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns a Registry with the default providers registered.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(OpenAI{})
	r.Register(Anthropic{})
	r.Register(XAI{})
	return r
}

// Register adds (or replaces) a provider.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider with the given name, if registered.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// FindForModel returns the first provider that lists model.
func (r *Registry) FindForModel(model string) (Provider, bool) {
	for _, name := range r.Names() {
		if p := r.providers[name]; SupportsModel(p, model) {
			return p, true
		}
	}
	return nil, false
}

// FindForEncoding returns the first provider that lists encoding.
func (r *Registry) FindForEncoding(encoding string) (Provider, bool) {
	for _, name := range r.Names() {
		if p := r.providers[name]; SupportsEncoding(p, encoding) {
			return p, true
		}
	}
	return nil, false
}

// Names returns the registered vendor names, sorted for deterministic
// iteration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AllModels returns (vendor, model) pairs across all providers.
func (r *Registry) AllModels() [][2]string {
	var out [][2]string
	for _, name := range r.Names() {
		for _, model := range r.providers[name].AvailableModels() {
			out = append(out, [2]string{name, model})
		}
	}
	return out
}

// AllEncodings returns (vendor, encoding) pairs across all providers.
func (r *Registry) AllEncodings() [][2]string {
	var out [][2]string
	for _, name := range r.Names() {
		for _, encoding := range r.providers[name].AvailableEncodings() {
			out = append(out, [2]string{name, encoding})
		}
	}
	return out
}

// EncodingForAnyModel builds the encoding for a model from whichever
// registered vendor supports it.
func (r *Registry) EncodingForAnyModel(model string) (*codec.Codec, error) {
	p, ok := r.FindForModel(model)
	if !ok {
		return nil, errors.Errorf("no registered vendor supports model %q", model)
	}
	name, err := p.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	return p.CreateEncoding(name)
}

// EncodingFromAnyVendor builds an encoding by name from whichever registered
// vendor defines it.
func (r *Registry) EncodingFromAnyVendor(encoding string) (*codec.Codec, error) {
	p, ok := r.FindForEncoding(encoding)
	if !ok {
		return nil, errors.Errorf("no registered vendor defines encoding %q", encoding)
	}
	return p.CreateEncoding(encoding)
}
