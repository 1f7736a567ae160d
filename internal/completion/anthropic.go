package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_5)

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	api  anthropic.Client
	opts Options
}

// NewAnthropic creates an Anthropic backend. The SDK's own retries are
// disabled; wrap the result with WithRetry instead.
func NewAnthropic(apiKey string, opts Options) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
	}
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = DefaultAnthropicModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Anthropic{
		api:  anthropic.NewClient(reqOpts...),
		opts: opts,
	}, nil
}

// Model returns the configured model name.
func (a *Anthropic) Model() string {
	return a.opts.Model
}

// Complete sends prompt as a single user turn and joins the text blocks of
// the reply. Only temperature is sent; newer models reject requests that set
// both temperature and top_p.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.opts.Model),
		MaxTokens:   int64(a.opts.MaxTokens),
		Temperature: anthropic.Float(a.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.opts.SystemPrompt}}
	}

	msg, err := a.api.Messages.New(ctx, params)
	if err != nil {
		return "", formatAnthropicError(err)
	}

	var b strings.Builder
	for i := range msg.Content {
		if text, ok := msg.Content[i].AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyReply
	}
	return b.String(), nil
}

// formatAnthropicError maps SDK errors onto StatusError.
func formatAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &StatusError{
			Provider:   ProviderAnthropic,
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}
	return fmt.Errorf("anthropic request failed: %w", err)
}
