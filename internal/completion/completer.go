// Package completion talks to the hosted language models that write fixes.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Providers understood by New.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// Default request settings.
const (
	DefaultMaxTokens      = 3000
	DefaultTemperature    = 0.8
	DefaultTopP           = 0.9
	DefaultRequestTimeout = 60 * time.Second
)

var (
	// ErrNoAPIKey is returned when a backend is built without credentials.
	ErrNoAPIKey = errors.New("no API key provided")
	// ErrEmptyReply is returned when the model answered with no text.
	ErrEmptyReply = errors.New("model returned no text")
	// ErrUnknownProvider is returned by New for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Completer turns a prompt into the model's reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Options are shared by every backend.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	Timeout      time.Duration
	// BaseURL overrides the provider endpoint. Empty uses the public API.
	BaseURL string
}

// withDefaults fills zero values.
func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultRequestTimeout
	}
	return o
}

// New builds the backend for provider.
func New(provider, apiKey string, opts Options) (Completer, error) {
	switch provider {
	case ProviderGroq:
		return NewGroq(apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropic(apiKey, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// DisplayName returns the human-facing name of provider.
func DisplayName(provider string) string {
	switch provider {
	case ProviderGroq:
		return "Groq"
	case ProviderAnthropic:
		return "Anthropic"
	default:
		return provider
	}
}
