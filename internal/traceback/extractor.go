package traceback

import (
	"log/slog"
	"strconv"
	"strings"
)

// DefaultContextLines is the number of lines shown on each side of the error line.
const DefaultContextLines = 5

const (
	errorMarker = ">>> "
	plainMarker = "    "
)

// Extractor recovers error details from tracebacks and renders numbered
// context windows around the failing line.
type Extractor struct {
	contextLines int
	logger       *slog.Logger
}

// NewExtractor creates an Extractor using contextLines lines of context on
// each side of the error line. Negative values are treated as 0.
func NewExtractor(contextLines int, logger *slog.Logger) *Extractor {
	if contextLines < 0 {
		contextLines = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{contextLines: contextLines, logger: logger}
}

// ContextLines returns the configured context radius.
func (e *Extractor) ContextLines() int {
	return e.contextLines
}

// Extract recovers error details from tb. It never fails; unmatched fields
// keep their defaults.
func (e *Extractor) Extract(tb string) Details {
	details, name := extract(tb)
	if name == "" {
		e.logger.Debug("no traceback pattern matched", "length", len(tb))
	} else {
		e.logger.Debug("traceback matched",
			"pattern", name,
			"error_type", details.ErrorType,
			"line", details.Line,
			"file", details.File)
	}
	return details
}

// Context renders the numbered window around the 1-indexed errorLine.
func (e *Extractor) Context(code string, errorLine int) string {
	return Context(code, errorLine, e.contextLines)
}

// Extract recovers error details from tb using the ordered pattern table.
func Extract(tb string) Details {
	details, _ := extract(tb)
	return details
}

func extract(tb string) (details Details, matched string) {
	details = DefaultDetails()

	defer func() {
		if r := recover(); r != nil {
			details, matched = DefaultDetails(), ""
		}
	}()

	for _, m := range matchers {
		groups := m.pattern.FindStringSubmatch(tb)
		if groups == nil {
			continue
		}
		return m.apply(groups[1:]), m.name
	}
	return details, ""
}

// Context renders lines [errorLine-radius, errorLine+radius] of code, clipped
// to the file. Each line is prefixed with a four character marker (">>> " on
// the error line) and a 1-indexed "Line N:" label. Returns "" when the window
// holds no lines.
func Context(code string, errorLine, radius int) string {
	if radius < 0 {
		radius = 0
	}

	lines := strings.Split(code, "\n")
	idx := max(0, errorLine-1)
	start := max(0, idx-radius)
	end := min(len(lines), idx+radius+1)
	if start >= end {
		return ""
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		lineNum := i + 1
		if lineNum == errorLine {
			b.WriteString(errorMarker)
		} else {
			b.WriteString(plainMarker)
		}
		b.WriteString("Line ")
		b.WriteString(strconv.Itoa(lineNum))
		b.WriteString(": ")
		b.WriteString(lines[i])
	}
	return b.String()
}
