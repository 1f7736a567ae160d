// Package analysis combines traceback extraction and chunking into a single
// per-request record.
package analysis

import (
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/chunk"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/traceback"
)

// Config holds the knobs that shape one analysis. It is built once at startup
// and passed by value.
type Config struct {
	ChunkSize      int
	OverlapSize    int
	ContextLines   int
	EnableChunking bool
}

// DefaultConfig returns the built-in analysis settings.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      chunk.DefaultSize,
		OverlapSize:    chunk.DefaultOverlap,
		ContextLines:   traceback.DefaultContextLines,
		EnableChunking: true,
	}
}

// Result describes one code/traceback pair.
type Result struct {
	traceback.Details
	NeedsChunking   bool   `json:"needs_chunking"`
	EnhancedContext string `json:"enhanced_context,omitempty"`
	CodeLength      int    `json:"code_length"`
}

// MarshalJSON flattens the traceback details next to the analysis fields.
// Without it the promoted Details marshaler would drop the other fields.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		traceback.DetailsJSON
		NeedsChunking   bool   `json:"needs_chunking"`
		EnhancedContext string `json:"enhanced_context,omitempty"`
		CodeLength      int    `json:"code_length"`
	}{r.Details.JSON(), r.NeedsChunking, r.EnhancedContext, r.CodeLength})
}

// Processing methods reported by Plan.
const (
	MethodDirect  = "direct"
	MethodChunked = "chunked"
)

// Plan records how the code would be handed to the model.
type Plan struct {
	Method string         `json:"method"`
	Chunks []string       `json:"-"`
	Bounds []chunk.Bounds `json:"chunks,omitempty"`
}

// Analyzer runs the extraction pipeline. It holds no per-request state and is
// safe for concurrent use.
type Analyzer struct {
	cfg       Config
	extractor *traceback.Extractor
	chunker   *chunk.Chunker
	logger    *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger discards output.
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		cfg:       cfg,
		extractor: traceback.NewExtractor(cfg.ContextLines, logger),
		chunker:   chunk.New(chunk.WithSize(cfg.ChunkSize), chunk.WithOverlap(cfg.OverlapSize)),
		logger:    logger,
	}
}

// Config returns the settings the Analyzer was built with.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze extracts error details from tb and, when a line number was found,
// the numbered context around it. NeedsChunking compares the character count
// of code against ChunkSize. Analyze never fails.
func (a *Analyzer) Analyze(code, tb string) Result {
	a.logger.Debug("analyzing",
		"code_length", len(code),
		"error_preview", preview(tb, 100))

	res := Result{
		Details:    a.extractor.Extract(tb),
		CodeLength: utf8.RuneCountInString(code),
	}
	if res.HasLine() {
		res.EnhancedContext = a.extractor.Context(code, res.Line)
		a.logger.Debug("enhanced context extracted", "line", res.Line)
	}
	res.NeedsChunking = res.CodeLength > a.cfg.ChunkSize
	return res
}

// Plan decides whether code is processed directly or in chunks. Chunking
// happens only when the result needs it and chunking is enabled.
func (a *Analyzer) Plan(code string, res Result) Plan {
	if !res.NeedsChunking || !a.cfg.EnableChunking {
		return Plan{Method: MethodDirect}
	}

	p := Plan{
		Method: MethodChunked,
		Chunks: a.chunker.Split(code),
		Bounds: a.chunker.Boundaries(code),
	}
	a.logger.Debug("code split into chunks", "chunks", len(p.Chunks))
	return p
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
