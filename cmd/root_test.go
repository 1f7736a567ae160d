package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
)

// setupTestHome points the advisor at a temp directory and clears every
// environment variable the config layer reads.
func setupTestHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(persistence.AdvisorHomeEnv, dir)
	for _, name := range []string{
		persistence.EnvProvider, persistence.EnvModel, persistence.EnvGroqAPIKey,
		persistence.EnvAnthropicAPIKey, persistence.EnvMaxTokens, persistence.EnvTemperature,
		persistence.EnvChunkSize, persistence.EnvOverlapSize, persistence.EnvContextLines,
		persistence.EnvEnableChunking, persistence.EnvDebug, "SENTRY_DSN",
	} {
		t.Setenv(name, "")
	}
	return dir
}

// resetFlags restores flag-bound globals between runs of the shared command tree.
func resetFlags() {
	debugFlag, quietFlag, providerArg, modelArg = false, true, "", ""
	analyzeCodeFile, analyzeErrorFile, analyzeExample, analyzeFormat = "", "", "", ""
	analyzeNoSave = false
	promptSystem = false
	parseFormat = ""
	chunkSize, chunkOverlap, chunkJSON, chunkShow = 0, -1, false, false
	examplesShow = ""
	historyLimit, historyFormat = 20, ""
	sandboxHistoryID, sandboxSolution, sandboxTimeout, sandboxForce = "", 1, 0, false
	batchConcurrency, batchFormat, batchSave = 0, "", false
	forceReset = false
}

// executeCommand runs the root command with args and returns what it wrote
// to stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--quiet"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRootCommandSubcommands(t *testing.T) {
	expected := []string{
		"analyze", "batch", "prompt", "parse", "chunk",
		"sandbox", "history", "examples", "config", "version",
	}

	commandMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		commandMap[c.Name()] = true
	}
	for _, name := range expected {
		if !commandMap[name] {
			t.Errorf("Expected subcommand %q not found in root command", name)
		}
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"debug", "quiet", "provider", "model"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root command should have persistent flag %q", name)
		}
	}
	if f := rootCmd.PersistentFlags().Lookup("model"); f != nil && f.Shorthand != "m" {
		t.Errorf("model flag shorthand = %q, want %q", f.Shorthand, "m")
	}
}

func TestSkipsSetup(t *testing.T) {
	tests := []struct {
		name string
		cmd  *cobra.Command
		want bool
	}{
		{"config", configCmd, true},
		{"config show", configShowCmd, true},
		{"version", versionCmd, true},
		{"analyze", analyzeCmd, false},
		{"history list", historyListCmd, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := skipsSetup(tt.cmd); got != tt.want {
				t.Errorf("skipsSetup(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestApplyGlobalFlagsProviderSwitchesModel(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	cfg := persistence.NewConfigWithDefaults()
	providerArg = persistence.ProviderAnthropic
	applyGlobalFlags(analyzeCmd, cfg)

	if cfg.Provider != persistence.ProviderAnthropic {
		t.Errorf("Provider = %q, want %q", cfg.Provider, persistence.ProviderAnthropic)
	}
	if cfg.Model != persistence.DefaultAnthropicModel {
		t.Errorf("Model = %q, want %q", cfg.Model, persistence.DefaultAnthropicModel)
	}
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		flag    string
		want    string
		wantErr bool
	}{
		{"", formatText, false},
		{"json", formatJSON, false},
		{"styled", formatStyled, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, &buf)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q) = %q, want %q", tt.flag, got, tt.want)
		}
	}
}

func TestReadInputNormalizesLineEndings(t *testing.T) {
	got, err := readInput("-", strings.NewReader("a\r\nb\r\n"))
	if err != nil {
		t.Fatalf("readInput() error = %v", err)
	}
	if got != "a\nb\n" {
		t.Errorf("readInput() = %q, want %q", got, "a\nb\n")
	}
}

func TestVersionCommand(t *testing.T) {
	setupTestHome(t)
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("version output %q does not contain %q", out, Version)
	}
}
