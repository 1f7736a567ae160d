// Package advisor runs one bug-fix analysis end to end: traceback analysis,
// prompt construction, the completion call and reply parsing.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/analysis"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/completion"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/prompt"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/sentry"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/util"
)

var (
	// ErrEmptyCode is returned when no source code was supplied.
	ErrEmptyCode = errors.New("please provide Python code to analyze")
	// ErrEmptyTraceback is returned when no traceback was supplied.
	ErrEmptyTraceback = errors.New("please provide the error traceback")
)

// Validate checks the two required inputs.
func Validate(code, tb string) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	if strings.TrimSpace(tb) == "" {
		return ErrEmptyTraceback
	}
	return nil
}

// Stage identifies a step of Advise for progress display.
type Stage int

const (
	StageAnalyzing Stage = iota
	StageGenerating
)

// Request is one piece of code and the traceback it produced.
type Request struct {
	Name      string
	Code      string
	Traceback string
	// Progress, when set, is called as Advise moves between stages.
	Progress func(Stage)
}

func (r Request) report(s Stage) {
	if r.Progress != nil {
		r.Progress(s)
	}
}

// Options configures New.
type Options struct {
	Provider string
	Model    string
	Logger   *slog.Logger
}

// Advisor composes the analysis pipeline with a completion backend.
// It is safe for concurrent use when the Completer is.
type Advisor struct {
	analyzer  *analysis.Analyzer
	completer completion.Completer
	provider  string
	model     string
	logger    *slog.Logger
}

// New creates an Advisor.
func New(analyzer *analysis.Analyzer, completer completion.Completer, opts Options) *Advisor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Advisor{
		analyzer:  analyzer,
		completer: completer,
		provider:  opts.Provider,
		model:     opts.Model,
		logger:    logger,
	}
}

// Advise validates req and produces a report. A failed completion does not
// return an error: the report carries failure sections and Failed is set.
// Errors are returned for invalid input and for a cancelled ctx.
func (a *Advisor) Advise(ctx context.Context, req Request) (*output.Report, error) {
	if err := Validate(req.Code, req.Traceback); err != nil {
		return nil, err
	}
	start := time.Now()

	req.report(StageAnalyzing)
	res := a.analyzer.Analyze(req.Code, req.Traceback)
	plan := a.analyzer.Plan(req.Code, res)
	if plan.Method == analysis.MethodChunked {
		a.logger.Debug("code exceeds chunk size",
			"name", req.Name, "chars", res.CodeLength, "chunks", len(plan.Chunks))
	}

	text := prompt.Build(req.Code, req.Traceback, res)
	sum := sha256.Sum256([]byte(text))

	report := &output.Report{
		Name:      req.Name,
		Provider:  a.provider,
		Model:     a.model,
		Analysis:  res,
		Plan:      plan,
		Structure: analysis.ScanStructure(req.Code),
		PromptSHA: hex.EncodeToString(sum[:]),
	}

	req.report(StageGenerating)
	reply, err := a.completer.Complete(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Warn("completion failed",
			"name", req.Name, "provider", a.provider, "error", err)
		sentry.AddBreadcrumb("completion", err.Error())

		report.Sections = response.FailureSections(err, completion.DisplayName(a.provider))
		report.Failed = true
		report.Error = err.Error()
		report.Duration = util.FormatDuration(time.Since(start))
		return report, nil
	}

	sections, strategy := response.ParseWithStrategy(reply)
	a.logger.Debug("parsed reply",
		"name", req.Name, "strategy", strategy, "reply_chars", len(reply))

	report.Sections = sections
	report.Strategy = strategy
	report.Duration = util.FormatDuration(time.Since(start))
	return report, nil
}
