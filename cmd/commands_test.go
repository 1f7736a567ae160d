package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
)

const sampleReply = "ERROR EXPLANATION:\nThe list is empty.\n" +
	"SOLUTION 1: check the length.\n" +
	"SOLUTION 2: catch ZeroDivisionError.\n" +
	"SOLUTION 3: use statistics.fmean."

func TestExamplesCommandListsPresets(t *testing.T) {
	setupTestHome(t)

	out, err := executeCommand(t, "examples")
	if err != nil {
		t.Fatalf("examples error = %v", err)
	}
	for _, name := range []string{"file-processing", "api-data", "database-ops"} {
		if !strings.Contains(out, name) {
			t.Errorf("examples output missing %q:\n%s", name, out)
		}
	}
}

func TestExamplesCommandShow(t *testing.T) {
	setupTestHome(t)

	out, err := executeCommand(t, "examples", "--show", "2")
	if err != nil {
		t.Fatalf("examples --show error = %v", err)
	}
	if !strings.Contains(out, "JSONDecodeError") {
		t.Errorf("examples --show output missing traceback:\n%s", out)
	}
}

func TestExamplesCommandUnknown(t *testing.T) {
	setupTestHome(t)

	if _, err := executeCommand(t, "examples", "--show", "nope"); err == nil {
		t.Error("examples --show nope should fail")
	}
}

func TestPromptCommandWithExample(t *testing.T) {
	setupTestHome(t)

	out, err := executeCommand(t, "prompt", "--example", "database-ops")
	if err != nil {
		t.Fatalf("prompt error = %v", err)
	}
	if !strings.Contains(out, "TypeError") {
		t.Errorf("prompt output missing error type:\n%s", out)
	}
	if !strings.Contains(out, "calculate_discount") {
		t.Errorf("prompt output missing code:\n%s", out)
	}
}

func TestPromptCommandFromFiles(t *testing.T) {
	dir := setupTestHome(t)
	code := writeFile(t, dir, "avg.py", "def avg(xs):\n    return sum(xs) / len(xs)\n\navg([])\n")
	tb := writeFile(t, dir, "tb.txt", "Traceback (most recent call last):\n  File \"avg.py\", line 2, in avg\nZeroDivisionError: division by zero\n")

	out, err := executeCommand(t, "prompt", code, tb)
	if err != nil {
		t.Fatalf("prompt error = %v", err)
	}
	if !strings.Contains(out, "ZeroDivisionError") {
		t.Errorf("prompt output missing error type:\n%s", out)
	}
}

func TestPromptCommandRequiresTraceback(t *testing.T) {
	dir := setupTestHome(t)
	code := writeFile(t, dir, "avg.py", "print(1)\n")

	if _, err := executeCommand(t, "prompt", code); err == nil {
		t.Error("prompt without a traceback should fail")
	}
}

func TestParseCommandJSON(t *testing.T) {
	dir := setupTestHome(t)
	reply := writeFile(t, dir, "reply.txt", sampleReply)

	out, err := executeCommand(t, "parse", reply, "--format", "json")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse output is not JSON: %v\n%s", err, out)
	}
	if report.Strategy != response.StrategyStrict {
		t.Errorf("Strategy = %q, want %q", report.Strategy, response.StrategyStrict)
	}
	if report.Sections.Solution2 != "catch ZeroDivisionError." {
		t.Errorf("Solution2 = %q", report.Sections.Solution2)
	}
}

func TestParseCommandText(t *testing.T) {
	dir := setupTestHome(t)
	reply := writeFile(t, dir, "reply.txt", sampleReply)

	out, err := executeCommand(t, "parse", reply)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if !strings.Contains(out, output.LabelSolution3) {
		t.Errorf("parse output missing solution label:\n%s", out)
	}
	if !strings.Contains(out, "use statistics.fmean.") {
		t.Errorf("parse output missing solution text:\n%s", out)
	}
}

func TestChunkCommandBoundaries(t *testing.T) {
	dir := setupTestHome(t)
	file := writeFile(t, dir, "five.py", "a\nb\nc\nd\ne")

	out, err := executeCommand(t, "chunk", file, "--size", "2", "--overlap", "0")
	if err != nil {
		t.Fatalf("chunk error = %v", err)
	}
	for _, want := range []string{"3 chunk(s)", "lines 1-2", "lines 3-4", "lines 5-5"} {
		if !strings.Contains(out, want) {
			t.Errorf("chunk output missing %q:\n%s", want, out)
		}
	}
}

func TestChunkCommandJSON(t *testing.T) {
	dir := setupTestHome(t)
	file := writeFile(t, dir, "five.py", "a\nb\nc\nd\ne")

	out, err := executeCommand(t, "chunk", file, "--size", "3", "--overlap", "1", "--json")
	if err != nil {
		t.Fatalf("chunk error = %v", err)
	}
	if n := gjson.Get(out, "#").Int(); n != 3 {
		t.Errorf("got %d chunks, want 3:\n%s", n, out)
	}
	if got := gjson.Get(out, "1.overlap_start").Int(); got != 2 {
		t.Errorf("second chunk overlap_start = %d, want 2", got)
	}
}

func TestAnalyzeCommandWithoutKey(t *testing.T) {
	setupTestHome(t)

	_, err := executeCommand(t, "analyze", "--example", "1", "--no-save")
	if err == nil {
		t.Fatal("analyze without an API key should fail")
	}
	if !strings.Contains(err.Error(), persistence.EnvGroqAPIKey) {
		t.Errorf("error %q should name %s", err, persistence.EnvGroqAPIKey)
	}
}

func TestAnalyzeCommandRejectsBothFromStdin(t *testing.T) {
	setupTestHome(t)

	if _, err := executeCommand(t, "analyze", "-", "-"); err == nil {
		t.Error("reading both inputs from stdin should fail")
	}
}

func TestConfigSetAndReset(t *testing.T) {
	dir := setupTestHome(t)

	if _, err := executeCommand(t, "config", "set", "max_tokens", "1200"); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	cfg, err := persistence.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTokens != 1200 {
		t.Errorf("MaxTokens = %d, want 1200", cfg.MaxTokens)
	}

	out, err := executeCommand(t, "config", "set", "groq_api_key", "gsk_abcdefgh1234")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if strings.Contains(out, "abcdefgh") {
		t.Errorf("config set echoed the API key: %q", out)
	}

	if _, err := executeCommand(t, "config", "reset", "--force"); err != nil {
		t.Fatalf("config reset error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); !os.IsNotExist(err) {
		t.Errorf("config file should be removed, stat error = %v", err)
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	setupTestHome(t)

	_, err := executeCommand(t, "config", "set", "colour", "blue")
	if !errors.Is(err, persistence.ErrUnknownKey) {
		t.Errorf("config set colour error = %v, want ErrUnknownKey", err)
	}
}

func TestConfigResetDeclined(t *testing.T) {
	dir := setupTestHome(t)
	writeFile(t, dir, "config.yaml", "max_tokens: 900\n")

	out, err := executeCommand(t, "config", "reset")
	if err != nil {
		t.Fatalf("config reset error = %v", err)
	}
	if !strings.Contains(out, "Cancelled") {
		t.Errorf("config reset output = %q, want Cancelled", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config file should remain: %v", err)
	}
}

func TestConfigShowMasksKeys(t *testing.T) {
	setupTestHome(t)
	t.Setenv(persistence.EnvGroqAPIKey, "gsk_secretvalue9876")

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out, "secretvalue") {
		t.Errorf("config show leaked the key:\n%s", out)
	}
	if !strings.Contains(out, "****9876") {
		t.Errorf("config show missing masked key:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	dir := setupTestHome(t)

	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, "config.yaml") {
		t.Errorf("config path = %q", out)
	}
}

func recordEntry(t *testing.T, report *output.Report) string {
	t.Helper()
	h, err := persistence.OpenHistory()
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	defer h.Close()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	entry := &persistence.HistoryEntry{
		Name:       report.Name,
		Provider:   report.Provider,
		ErrorType:  report.Analysis.ErrorType,
		ReportJSON: data,
	}
	if err := h.Record(entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	return entry.ID
}

func TestHistoryListAndShow(t *testing.T) {
	setupTestHome(t)
	report := &output.Report{
		Name:     "avg.py",
		Provider: "groq",
		Sections: response.Sections{
			Explanation: "Empty list.",
			Solution1:   "```python\nprint(1)\n```",
			Solution2:   "wrap it",
			Solution3:   "rewrite it",
		},
	}
	report.Analysis.ErrorType = "ZeroDivisionError"
	id := recordEntry(t, report)

	out, err := executeCommand(t, "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "ZeroDivisionError") {
		t.Errorf("history list output missing entry:\n%s", out)
	}

	out, err = executeCommand(t, "history", "show", id, "--format", "json")
	if err != nil {
		t.Fatalf("history show error = %v", err)
	}
	if got := gjson.Get(out, "id").String(); got != id {
		t.Errorf("history show id = %q, want %q", got, id)
	}
	if got := gjson.Get(out, "sections.solution2").String(); got != "wrap it" {
		t.Errorf("history show solution2 = %q", got)
	}

	out, err = executeCommand(t, "history", "show", id, "--format", "text")
	if err != nil {
		t.Fatalf("history show error = %v", err)
	}
	if !strings.Contains(out, "Empty list.") {
		t.Errorf("history show text output missing explanation:\n%s", out)
	}
}

func TestHistoryShowMissing(t *testing.T) {
	setupTestHome(t)

	_, err := executeCommand(t, "history", "show", "000000000000")
	if !errors.Is(err, persistence.ErrEntryNotFound) {
		t.Errorf("history show error = %v, want ErrEntryNotFound", err)
	}
}

func TestHistoryListEmpty(t *testing.T) {
	setupTestHome(t)

	out, err := executeCommand(t, "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, "No saved analyses") {
		t.Errorf("history list output = %q", out)
	}
}

func TestSandboxCodeFromHistory(t *testing.T) {
	setupTestHome(t)
	report := &output.Report{Sections: response.Sections{
		Solution1: "Do this:\n```python\nprint('fixed')\n```",
		Solution2: "no code here",
	}}
	id := recordEntry(t, report)

	resetFlags()
	t.Cleanup(resetFlags)
	sandboxHistoryID = id

	sandboxSolution = 1
	code, err := sandboxCode(sandboxRunCmd, nil)
	if err != nil {
		t.Fatalf("sandboxCode() error = %v", err)
	}
	if strings.TrimSpace(code) != "print('fixed')" {
		t.Errorf("sandboxCode() = %q", code)
	}

	sandboxSolution = 2
	if _, err := sandboxCode(sandboxRunCmd, nil); err == nil {
		t.Error("solution without a code block should fail")
	}

	sandboxSolution = 4
	if _, err := sandboxCode(sandboxRunCmd, nil); err == nil {
		t.Error("solution 4 should be rejected")
	}
}

func TestSandboxRunRequiresInput(t *testing.T) {
	setupTestHome(t)

	if _, err := executeCommand(t, "sandbox", "run"); err == nil {
		t.Error("sandbox run without a file should fail")
	}
}

func TestSandboxCommandSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range sandboxCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "clean"} {
		if !names[want] {
			t.Errorf("sandbox command missing subcommand %q", want)
		}
	}
}

func TestBatchCommandMissingFiles(t *testing.T) {
	dir := setupTestHome(t)

	if _, err := executeCommand(t, "batch", filepath.Join(dir, "nothing-*.yaml")); err == nil {
		t.Error("batch with no matching files should fail")
	}
}
