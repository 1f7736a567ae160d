package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

const (
	// DefaultGroqBaseURL is the OpenAI-compatible Groq endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	// DefaultGroqModel is used when no model is configured.
	DefaultGroqModel = "llama-3.3-70b-versatile"

	// maxErrorBodyBytes bounds how much of an error body is read.
	maxErrorBodyBytes = 64 << 10
)

// Groq calls the Groq chat completions API through the OpenAI SDK.
type Groq struct {
	api  openai.Client
	opts Options
}

// NewGroq creates a Groq backend. The SDK's own retries are disabled; wrap
// the result with WithRetry instead.
func NewGroq(apiKey string, opts Options) (*Groq, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: %w", ErrNoAPIKey)
	}
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = DefaultGroqModel
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	return &Groq{
		api: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(opts.Timeout),
			option.WithMaxRetries(0),
		),
		opts: opts,
	}, nil
}

// Model returns the configured model name.
func (g *Groq) Model() string {
	return g.opts.Model
}

// params renders the chat completion request. top_p is left out when unset.
func (g *Groq) params(prompt string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if g.opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(g.opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.opts.Model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(g.opts.MaxTokens)),
		Temperature: openai.Float(g.opts.Temperature),
	}
	if g.opts.TopP > 0 {
		params.TopP = openai.Float(g.opts.TopP)
	}
	return params
}

// Complete sends prompt and returns the first choice's message content.
func (g *Groq) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.api.Chat.Completions.New(ctx, g.params(prompt))
	if err != nil {
		return "", formatGroqError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// formatGroqError maps SDK errors onto StatusError. Groq puts the reason in
// error.message of the response body.
func formatGroqError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("groq request failed: %w", err)
	}

	statusErr := &StatusError{
		Provider:   ProviderGroq,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Err:        err,
	}
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		body, readErr := io.ReadAll(io.LimitReader(apiErr.Response.Body, maxErrorBodyBytes))
		if readErr == nil {
			if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
				statusErr.Message = msg
			}
		}
	}
	return statusErr
}
