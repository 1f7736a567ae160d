package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/advisor"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
)

// DefaultConcurrency bounds in-flight completion requests.
const DefaultConcurrency = 4

// Result pairs a case with its report, or the error that prevented one.
type Result struct {
	Case   Case
	Report *output.Report
	Err    error
}

// Adviser is the part of advisor.Advisor that Run needs.
type Adviser interface {
	Advise(ctx context.Context, req advisor.Request) (*output.Report, error)
}

// Run analyzes cases with at most concurrency requests in flight. Results
// are returned in input order. A failing case does not stop the others; only
// a cancelled ctx aborts the run, in which case ctx.Err() is returned along
// with whatever finished.
func Run(ctx context.Context, adv Adviser, cases []Case, concurrency int, logger *slog.Logger) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range cases {
		results[i].Case = c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			report, err := adv.Advise(gctx, advisor.Request{
				Name:      c.Name,
				Code:      c.Code,
				Traceback: c.Traceback,
			})
			results[i].Report = report
			results[i].Err = err
			if err != nil {
				logger.Warn("case failed", "case", c.Name, "source", c.Source, "error", err)
				if gctx.Err() != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return results, ctxErr
	}
	return results, err
}
