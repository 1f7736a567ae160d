package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/analysis"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/completion"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
)

const (
	sampleCode = "def avg(xs):\n    return sum(xs) / len(xs)\n\navg([])\n"
	sampleTB   = "Traceback (most recent call last):\n" +
		"  File \"main.py\", line 2, in avg\n" +
		"ZeroDivisionError: division by zero"
	strictReply = "ERROR EXPLANATION:\nThe list is empty.\n\n" +
		"SOLUTION 1 (SIMPLE FIX):\nCheck for an empty list first.\n\n" +
		"SOLUTION 2 (TRY-EXCEPT HANDLING):\nCatch ZeroDivisionError and return 0.\n\n" +
		"SOLUTION 3 (ALTERNATIVE APPROACH):\nUse statistics.fmean with a default."
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newTestAdvisor(c completion.Completer) *Advisor {
	return New(analysis.NewAnalyzer(analysis.DefaultConfig(), nil), c, Options{
		Provider: completion.ProviderGroq,
		Model:    "llama-3.3-70b-versatile",
	})
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("", "tb"), ErrEmptyCode)
	assert.ErrorIs(t, Validate("  \n\t", "tb"), ErrEmptyCode)
	assert.ErrorIs(t, Validate("x = 1", ""), ErrEmptyTraceback)
	assert.ErrorIs(t, Validate("x = 1", " \n"), ErrEmptyTraceback)
	assert.NoError(t, Validate("x = 1", "ValueError: bad"))

	assert.Equal(t, "please provide Python code to analyze", ErrEmptyCode.Error())
	assert.Equal(t, "please provide the error traceback", ErrEmptyTraceback.Error())
}

func TestAdviseRejectsInvalidInput(t *testing.T) {
	fc := &fakeCompleter{reply: strictReply}
	a := newTestAdvisor(fc)

	_, err := a.Advise(context.Background(), Request{Code: "", Traceback: sampleTB})
	require.ErrorIs(t, err, ErrEmptyCode)
	assert.Empty(t, fc.prompts, "no request may be sent for invalid input")
}

func TestAdviseSuccess(t *testing.T) {
	fc := &fakeCompleter{reply: strictReply}
	a := newTestAdvisor(fc)

	var stages []Stage
	report, err := a.Advise(context.Background(), Request{
		Name:      "avg",
		Code:      sampleCode,
		Traceback: sampleTB,
		Progress:  func(s Stage) { stages = append(stages, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageAnalyzing, StageGenerating}, stages)
	assert.False(t, report.Failed)
	assert.Equal(t, response.StrategyStrict, report.Strategy)
	assert.Equal(t, "The list is empty.", report.Sections.Explanation)
	assert.Equal(t, "Use statistics.fmean with a default.", report.Sections.Solution3)

	assert.Equal(t, "ZeroDivisionError", report.Analysis.ErrorType)
	assert.Equal(t, 2, report.Analysis.Line)
	assert.Equal(t, analysis.MethodDirect, report.Plan.Method)
	assert.Equal(t, []string{"avg"}, report.Structure.Functions)
	assert.True(t, report.Structure.SyntaxValid)
	assert.Len(t, report.PromptSHA, 64)
	assert.Equal(t, "groq", report.Provider)

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], sampleCode)
	assert.Contains(t, fc.prompts[0], "ZeroDivisionError")
}

func TestAdviseCompletionFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("invalid Groq API key")}
	a := newTestAdvisor(fc)

	report, err := a.Advise(context.Background(), Request{Code: sampleCode, Traceback: sampleTB})
	require.NoError(t, err)

	assert.True(t, report.Failed)
	assert.Equal(t, "invalid Groq API key", report.Error)
	assert.Equal(t, "❌ API Error: invalid Groq API key", report.Sections.Explanation)
	assert.Equal(t, "Please check your API key and internet connection", report.Sections.Solution1)
	assert.Equal(t, "Ensure the Groq API key is valid and has credits", report.Sections.Solution2)
	assert.Equal(t, "Try again later or use a different model", report.Sections.Solution3)
	assert.Empty(t, report.Strategy)
}

func TestAdviseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAdvisor(completion.Func(func(ctx context.Context, _ string) (string, error) {
		return "", ctx.Err()
	}))

	_, err := a.Advise(ctx, Request{Code: sampleCode, Traceback: sampleTB})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdviseUnstructuredReply(t *testing.T) {
	fc := &fakeCompleter{reply: "Just wrap it in a try block."}
	a := newTestAdvisor(fc)

	report, err := a.Advise(context.Background(), Request{Code: sampleCode, Traceback: sampleTB})
	require.NoError(t, err)

	assert.Equal(t, response.StrategyRaw, report.Strategy)
	assert.Equal(t, "Just wrap it in a try block.", report.Sections.Explanation)
	assert.Equal(t, "No simple fix provided", report.Sections.Solution1)
}

func TestAdviseLargeCodeIsChunked(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.ChunkSize = 10
	cfg.OverlapSize = 1
	a := New(analysis.NewAnalyzer(cfg, nil), &fakeCompleter{reply: strictReply}, Options{})

	code := strings.Repeat("x = 1\n", 30)
	report, err := a.Advise(context.Background(), Request{Code: code, Traceback: "NameError: name 'y' is not defined"})
	require.NoError(t, err)

	assert.True(t, report.Analysis.NeedsChunking)
	assert.Equal(t, analysis.MethodChunked, report.Plan.Method)
	assert.NotEmpty(t, report.Plan.Chunks)
}
