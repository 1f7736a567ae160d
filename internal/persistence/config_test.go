package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestAdvisorHome points ADVISOR_HOME at a temp dir and clears every
// environment override so tests see only what they set.
func setupTestAdvisorHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(AdvisorHomeEnv, dir)
	for _, name := range []string{
		EnvProvider, EnvModel, EnvGroqAPIKey, EnvAnthropicAPIKey, EnvMaxTokens,
		EnvTemperature, EnvChunkSize, EnvOverlapSize, EnvContextLines,
		EnvEnableChunking, EnvDebug,
	} {
		t.Setenv(name, "")
	}
	return dir
}

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestLoadDefaults(t *testing.T) {
	setupTestAdvisorHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != ProviderGroq {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderGroq)
	}
	if cfg.Model != DefaultGroqModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultGroqModel)
	}
	if cfg.ChunkSize != 1500 || cfg.OverlapSize != 150 || cfg.ContextLines != 5 {
		t.Errorf("chunking defaults = %d/%d/%d, want 1500/150/5", cfg.ChunkSize, cfg.OverlapSize, cfg.ContextLines)
	}
	if cfg.MaxTokens != 3000 {
		t.Errorf("MaxTokens = %d, want 3000", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.8 {
		t.Errorf("Temperature = %v, want 0.8", cfg.Temperature)
	}
	if !cfg.EnableChunking {
		t.Error("EnableChunking should default to true")
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if !hasWarning(cfg.Warnings, EnvGroqAPIKey) {
		t.Errorf("expected missing key warning, got %v", cfg.Warnings)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := setupTestAdvisorHome(t)
	writeConfigFile(t, dir, "   \n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want default", cfg.ChunkSize)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := setupTestAdvisorHome(t)
	writeConfigFile(t, dir, "chunk_size: [unterminated\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := setupTestAdvisorHome(t)
	writeConfigFile(t, dir, "chunk_size: 200\ncontext_lines: 2\ngroq_api_key: file-key-1234\n")
	t.Setenv(EnvChunkSize, "300")
	t.Setenv(EnvEnableChunking, "FALSE")
	t.Setenv(EnvDebug, "True")

	src, err := LoadWithSources()
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}

	if src.ChunkSize.Value != 300 || src.ChunkSize.Source != SourceEnv {
		t.Errorf("ChunkSize = %+v, want 300 from env", src.ChunkSize)
	}
	if src.ContextLines.Value != 2 || src.ContextLines.Source != SourceFile {
		t.Errorf("ContextLines = %+v, want 2 from file", src.ContextLines)
	}
	if src.EnableChunking.Value || src.EnableChunking.Source != SourceEnv {
		t.Errorf("EnableChunking = %+v, want false from env", src.EnableChunking)
	}
	if !src.Debug.Value {
		t.Error("DEBUG_MODE=True should enable debug")
	}
	if src.GroqAPIKey.Source != SourceFile {
		t.Errorf("GroqAPIKey source = %v, want file", src.GroqAPIKey.Source)
	}
	if src.MaxTokens.Source != SourceDefault {
		t.Errorf("MaxTokens source = %v, want default", src.MaxTokens.Source)
	}
	if hasWarning(src.Warnings, EnvGroqAPIKey) {
		t.Errorf("no key warning expected, got %v", src.Warnings)
	}
}

func TestEnvInvalidNumberWarns(t *testing.T) {
	setupTestAdvisorHome(t)
	t.Setenv(EnvChunkSize, "lots")
	t.Setenv(EnvTemperature, "warm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want default", cfg.ChunkSize)
	}
	if cfg.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want default", cfg.Temperature)
	}
	if !hasWarning(cfg.Warnings, EnvChunkSize) || !hasWarning(cfg.Warnings, EnvTemperature) {
		t.Errorf("expected warnings for both vars, got %v", cfg.Warnings)
	}
}

func TestClamping(t *testing.T) {
	setupTestAdvisorHome(t)
	t.Setenv(EnvChunkSize, "0")
	t.Setenv(EnvOverlapSize, "-5")
	t.Setenv(EnvTemperature, "7")
	t.Setenv(EnvContextLines, "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 1 {
		t.Errorf("ChunkSize = %d, want 1", cfg.ChunkSize)
	}
	if cfg.OverlapSize != 0 {
		t.Errorf("OverlapSize = %d, want 0", cfg.OverlapSize)
	}
	if cfg.Temperature != maxTemperature {
		t.Errorf("Temperature = %v, want %v", cfg.Temperature, maxTemperature)
	}
	if cfg.ContextLines != 0 {
		t.Errorf("ContextLines = %d, want 0", cfg.ContextLines)
	}
}

func TestModelValidation(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		model     string
		wantModel string
		wantWarn  bool
	}{
		{"known groq model", "", "llama-3.1-8b-instant", "llama-3.1-8b-instant", false},
		{"unknown groq model falls back", "", "gpt-4", DefaultGroqModel, true},
		{"anthropic default", ProviderAnthropic, "", DefaultAnthropicModel, false},
		{"anthropic custom claude model", ProviderAnthropic, "claude-opus-4-1", "claude-opus-4-1", false},
		{"anthropic non-claude model falls back", ProviderAnthropic, "llama-3.1-8b-instant", DefaultAnthropicModel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestAdvisorHome(t)
			t.Setenv(EnvProvider, tt.provider)
			t.Setenv(EnvModel, tt.model)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", cfg.Model, tt.wantModel)
			}
			if got := hasWarning(cfg.Warnings, "model"); got != tt.wantWarn {
				t.Errorf("model warning = %v, want %v (%v)", got, tt.wantWarn, cfg.Warnings)
			}
		})
	}
}

func TestUnknownProviderFallsBack(t *testing.T) {
	setupTestAdvisorHome(t)
	t.Setenv(EnvProvider, "openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != ProviderGroq {
		t.Errorf("Provider = %q, want groq", cfg.Provider)
	}
	if !hasWarning(cfg.Warnings, "unknown provider") {
		t.Errorf("expected provider warning, got %v", cfg.Warnings)
	}
}

func TestAPIKeyForProvider(t *testing.T) {
	cfg := &Config{Provider: ProviderGroq, GroqAPIKey: "g", AnthropicAPIKey: "a"}
	if cfg.APIKey() != "g" {
		t.Errorf("groq APIKey() = %q", cfg.APIKey())
	}
	cfg.Provider = ProviderAnthropic
	if cfg.APIKey() != "a" {
		t.Errorf("anthropic APIKey() = %q", cfg.APIKey())
	}
}

func TestSetPersists(t *testing.T) {
	dir := setupTestAdvisorHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for key, value := range map[string]string{
		"chunk_size":      "800",
		"temperature":     "0.3",
		"enable_chunking": "false",
		"provider":        "Anthropic",
		"groq_api_key":    "gsk_abcdef",
	} {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	info, err := os.Stat(filepath.Join(dir, configFileName))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	reloaded, err := LoadWithSources()
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.ChunkSize.Value != 800 || reloaded.ChunkSize.Source != SourceFile {
		t.Errorf("ChunkSize = %+v", reloaded.ChunkSize)
	}
	if reloaded.Temperature.Value != 0.3 {
		t.Errorf("Temperature = %v", reloaded.Temperature.Value)
	}
	if reloaded.EnableChunking.Value {
		t.Error("EnableChunking should be false")
	}
	if reloaded.Provider.Value != ProviderAnthropic {
		t.Errorf("Provider = %q", reloaded.Provider.Value)
	}

	// Clearing a key falls back to the default
	if err := cfg.Set("chunk_size", ""); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	reloaded, err = LoadWithSources()
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.ChunkSize.Source != SourceDefault {
		t.Errorf("ChunkSize source = %v, want default", reloaded.ChunkSize.Source)
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	setupTestAdvisorHome(t)
	cfg := NewConfigWithDefaults()

	tests := []struct{ key, value string }{
		{"chunk_size", "big"},
		{"temperature", "hot"},
		{"debug", "maybe"},
		{"provider", "openai"},
		{"colour", "blue"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) should fail", tt.key, tt.value)
		}
	}
}

func TestReset(t *testing.T) {
	dir := setupTestAdvisorHome(t)
	writeConfigFile(t, dir, "chunk_size: 10\n")

	if err := Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, configFileName)); !os.IsNotExist(err) {
		t.Errorf("config file still exists: %v", err)
	}
	if err := Reset(); err != nil {
		t.Errorf("second Reset() error = %v", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "****"},
		{"abcd", "****"},
		{"gsk_1234567890", "****7890"},
	}
	for _, tt := range tests {
		if got := MaskAPIKey(tt.key); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValueSourceString(t *testing.T) {
	if SourceDefault.String() != "default" || SourceFile.String() != "file" || SourceEnv.String() != "env" {
		t.Error("unexpected ValueSource names")
	}
	if ValueSource(42).String() != "unknown" {
		t.Error("out of range source should be unknown")
	}
}

func TestPathsUseAdvisorHome(t *testing.T) {
	dir := setupTestAdvisorHome(t)

	for name, fn := range map[string]func() (string, error){
		configFileName: GetConfigPath,
		historyDBName:  GetHistoryPath,
		debugLogName:   GetDebugLogPath,
	} {
		got, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if want := filepath.Join(dir, name); got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	}
}
