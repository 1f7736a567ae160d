package completion

import (
	"context"
	"log/slog"
	"time"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/util"
)

type retrying struct {
	next   Completer
	opts   []util.Option
	logger *slog.Logger
}

// WithRetry retries transient failures of next (see Retryable). opts tune
// the backoff; the retry condition is always Retryable.
func WithRetry(next Completer, logger *slog.Logger, opts ...util.Option) Completer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &retrying{next: next, opts: opts, logger: logger}
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	opts := append([]util.Option{
		util.WithMaxAttempts(3),
		util.WithInitialDelay(time.Second),
		util.WithMaxDelay(10 * time.Second),
	}, r.opts...)
	opts = append(opts,
		util.WithRetryIf(Retryable),
		util.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			r.logger.Warn("completion failed, retrying",
				"attempt", attempt,
				"wait", wait,
				"error", err)
		}),
	)

	return util.Do(ctx, func(ctx context.Context) (string, error) {
		return r.next.Complete(ctx, prompt)
	}, opts...)
}
