package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/advisor"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/analysis"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/completion"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/prompt"
)

// Output formats accepted by --format.
const (
	formatText   = "text"
	formatStyled = "styled"
	formatJSON   = "json"
)

const (
	defaultWidth = 100
	maxWidth     = 120
)

// maxInputBytes bounds code and traceback files read from disk or stdin.
const maxInputBytes = 4 << 20

func analysisConfig(cfg *persistence.Config) analysis.Config {
	return analysis.Config{
		ChunkSize:      cfg.ChunkSize,
		OverlapSize:    cfg.OverlapSize,
		ContextLines:   cfg.ContextLines,
		EnableChunking: cfg.EnableChunking,
	}
}

func newAnalyzer(cfg *persistence.Config) *analysis.Analyzer {
	return analysis.NewAnalyzer(analysisConfig(cfg), logger.Logger)
}

// newCompleter builds the provider backend wrapped with retries and, when
// cache is non-nil, the shared reply cache.
func newCompleter(cfg *persistence.Config, cache *completion.Cache) (completion.Completer, error) {
	backend, err := completion.New(cfg.Provider, cfg.APIKey(), completion.Options{
		Model:        cfg.Model,
		SystemPrompt: prompt.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		Timeout:      time.Duration(cfg.TimeoutSecs) * time.Second,
	})
	if err != nil {
		if errors.Is(err, completion.ErrNoAPIKey) {
			return nil, fmt.Errorf("%w: set %s or run 'advisor config set %s <key>'",
				err, apiKeyEnv(cfg.Provider), apiKeyConfigKey(cfg.Provider))
		}
		return nil, err
	}

	c := completion.WithRetry(backend, logger.Logger)
	if cache != nil {
		c = completion.Cached(c, cache, cfg.Provider+"/"+cfg.Model)
	}
	return c, nil
}

func newAdvisor(cfg *persistence.Config, cache *completion.Cache) (*advisor.Advisor, error) {
	c, err := newCompleter(cfg, cache)
	if err != nil {
		return nil, err
	}
	return advisor.New(newAnalyzer(cfg), c, advisor.Options{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Logger:   logger.Logger,
	}), nil
}

func apiKeyEnv(provider string) string {
	if provider == persistence.ProviderAnthropic {
		return persistence.EnvAnthropicAPIKey
	}
	return persistence.EnvGroqAPIKey
}

func apiKeyConfigKey(provider string) string {
	if provider == persistence.ProviderAnthropic {
		return "anthropic_api_key"
	}
	return "groq_api_key"
}

// resolveFormat picks the output format. An empty flag means styled on a
// terminal and plain text otherwise.
func resolveFormat(flag string, w io.Writer) (string, error) {
	switch flag {
	case "":
		if isTerminal(w) {
			return formatStyled, nil
		}
		return formatText, nil
	case formatText, formatStyled, formatJSON:
		return flag, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be 'text', 'styled' or 'json'", flag)
	}
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, maxWidth)
		}
	}
	return defaultWidth
}

// writeReport prints report in format.
func writeReport(w io.Writer, report *output.Report, format string) error {
	switch format {
	case formatJSON:
		return output.FormatJSON(w, report)
	case formatStyled:
		_, err := io.WriteString(w, output.RenderStyled(report.Sections, terminalWidth(w)))
		return err
	default:
		_, err := io.WriteString(w, output.Render(report.Sections))
		return err
	}
}

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		// #nosec G304 - path is supplied by the user on the command line
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", path, maxInputBytes)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func codeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// saveReport records report in the history database. Failures are logged,
// never returned: history is a convenience.
func saveReport(report *output.Report, code string, elapsed time.Duration) string {
	h, err := persistence.OpenHistory()
	if err != nil {
		logger.Warn("opening history failed", "error", err)
		return ""
	}
	defer func() { _ = h.Close() }()

	var buf strings.Builder
	if err := output.FormatJSON(&buf, report); err != nil {
		logger.Warn("encoding report failed", "error", err)
		return ""
	}

	entry := &persistence.HistoryEntry{
		Name:         report.Name,
		Provider:     report.Provider,
		Model:        report.Model,
		ErrorType:    report.Analysis.ErrorType,
		ErrorMessage: report.Analysis.ErrorMessage,
		Strategy:     string(report.Strategy),
		Failed:       report.Failed,
		Duration:     elapsed,
		CodeSHA256:   codeHash(code),
		ReportJSON:   []byte(buf.String()),
	}
	if err := h.Record(entry); err != nil {
		logger.Warn("saving history failed", "error", err)
		return ""
	}
	logger.Debug("analysis saved", "id", entry.ID, "path", h.Path())
	return entry.ID
}
