package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// --- File paths ---

const (
	advisorDirName = ".advisor"
	configFileName = "config.yaml"
	historyDBName  = "history.db"
	debugLogName   = "debug.log"

	// AdvisorHomeEnv overrides ~/.advisor, mainly for tests.
	AdvisorHomeEnv = "ADVISOR_HOME"
)

var (
	cachedAdvisorDir   string
	cachedAdvisorDirMu sync.RWMutex
)

// --- Structs ---

// FileConfig is the raw structure persisted to ~/.advisor/config.yaml.
// Pointer fields distinguish "unset" from zero values.
type FileConfig struct {
	Provider           string   `yaml:"provider,omitempty"`
	Model              string   `yaml:"model,omitempty"`
	GroqAPIKey         string   `yaml:"groq_api_key,omitempty"`
	AnthropicAPIKey    string   `yaml:"anthropic_api_key,omitempty"`
	MaxTokens          *int     `yaml:"max_tokens,omitempty"`
	Temperature        *float64 `yaml:"temperature,omitempty"`
	TopP               *float64 `yaml:"top_p,omitempty"`
	ChunkSize          *int     `yaml:"chunk_size,omitempty"`
	OverlapSize        *int     `yaml:"overlap_size,omitempty"`
	ContextLines       *int     `yaml:"context_lines,omitempty"`
	EnableChunking     *bool    `yaml:"enable_chunking,omitempty"`
	Debug              *bool    `yaml:"debug,omitempty"`
	TimeoutSecs        *int     `yaml:"timeout_secs,omitempty"`
	SandboxInterpreter string   `yaml:"sandbox_interpreter,omitempty"`
	SandboxTimeoutSecs *int     `yaml:"sandbox_timeout_secs,omitempty"`
	Concurrency        *int     `yaml:"concurrency,omitempty"`
}

// Config is the merged, resolved config used by the application.
// Values are resolved from: env var > config file > defaults.
type Config struct {
	Provider           string
	Model              string
	GroqAPIKey         string
	AnthropicAPIKey    string
	MaxTokens          int
	Temperature        float64
	TopP               float64
	ChunkSize          int
	OverlapSize        int
	ContextLines       int
	EnableChunking     bool
	Debug              bool
	TimeoutSecs        int
	SandboxInterpreter string
	SandboxTimeoutSecs int
	Concurrency        int

	// Warnings collects problems found while resolving values. They are
	// returned to the caller rather than printed.
	Warnings []string

	file *FileConfig
}

// --- Defaults ---

// Providers.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

const (
	DefaultProvider           = ProviderGroq
	DefaultGroqModel          = "llama-3.3-70b-versatile"
	DefaultAnthropicModel     = "claude-sonnet-4-5"
	DefaultMaxTokens          = 3000
	DefaultTemperature        = 0.8
	DefaultTopP               = 0.9
	DefaultChunkSize          = 1500
	DefaultOverlapSize        = 150
	DefaultContextLines       = 5
	DefaultEnableChunking     = true
	DefaultTimeoutSecs        = 60
	DefaultSandboxInterpreter = "python3"
	DefaultSandboxTimeoutSecs = 5
	DefaultConcurrency        = 4

	minMaxTokens      = 1
	maxMaxTokens      = 32768
	maxTemperature    = 2.0
	maxChunkSize      = 100000
	maxContextLines   = 100
	minTimeoutSecs    = 1
	maxTimeoutSecs    = 600
	maxSandboxTimeout = 300
	maxConcurrency    = 16

	anthropicModelPrefix = "claude-"
)

// KnownGroqModels lists the Groq models accepted without a warning.
var KnownGroqModels = []string{
	DefaultGroqModel,
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
}

// Environment variables read during resolution.
const (
	EnvProvider        = "ADVISOR_PROVIDER"
	EnvModel           = "MODEL_NAME"
	EnvGroqAPIKey      = "GROQ_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvMaxTokens       = "MAX_TOKENS"
	EnvTemperature     = "TEMPERATURE"
	EnvChunkSize       = "CHUNK_SIZE"
	EnvOverlapSize     = "OVERLAP_SIZE"
	EnvContextLines    = "CONTEXT_LINES"
	EnvEnableChunking  = "ENABLE_CHUNKING"
	EnvDebug           = "DEBUG_MODE"
)

// --- Value Source Tracking ---

// ValueSource indicates where a configuration value originated.
type ValueSource int

// Value sources indicate where configuration values originated.
const (
	SourceDefault ValueSource = iota // SourceDefault indicates the value is a hardcoded default.
	SourceFile                       // SourceFile indicates the value comes from ~/.advisor/config.yaml.
	SourceEnv                        // SourceEnv indicates the value comes from an environment variable.
)

// String returns the display name for a value source.
func (s ValueSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	}
	return "unknown"
}

// ConfigValue holds a resolved value with its source.
type ConfigValue[T any] struct {
	Value  T
	Source ValueSource
}

// ConfigWithSources provides resolved values with source information.
// Used by `advisor config show`.
type ConfigWithSources struct {
	Provider           ConfigValue[string]
	Model              ConfigValue[string]
	GroqAPIKey         ConfigValue[string]
	AnthropicAPIKey    ConfigValue[string]
	MaxTokens          ConfigValue[int]
	Temperature        ConfigValue[float64]
	TopP               ConfigValue[float64]
	ChunkSize          ConfigValue[int]
	OverlapSize        ConfigValue[int]
	ContextLines       ConfigValue[int]
	EnableChunking     ConfigValue[bool]
	Debug              ConfigValue[bool]
	TimeoutSecs        ConfigValue[int]
	SandboxInterpreter ConfigValue[string]
	SandboxTimeoutSecs ConfigValue[int]
	Concurrency        ConfigValue[int]

	Warnings []string

	File *FileConfig
}

// --- Path helpers ---

// GetAdvisorDir returns the advisor directory path (~/.advisor).
// If ADVISOR_HOME is set, uses that instead.
// This function is safe for concurrent use.
func GetAdvisorDir() (string, error) {
	if override := os.Getenv(AdvisorHomeEnv); override != "" {
		return filepath.Clean(override), nil
	}

	cachedAdvisorDirMu.RLock()
	cached := cachedAdvisorDir
	cachedAdvisorDirMu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	cachedAdvisorDirMu.Lock()
	defer cachedAdvisorDirMu.Unlock()
	if cachedAdvisorDir != "" {
		return cachedAdvisorDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	cachedAdvisorDir = filepath.Join(home, advisorDirName)
	return cachedAdvisorDir, nil
}

func pathInAdvisorDir(name string) (string, error) {
	dir, err := GetAdvisorDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) { return pathInAdvisorDir(configFileName) }

// GetHistoryPath returns the path to the history database.
func GetHistoryPath() (string, error) { return pathInAdvisorDir(historyDBName) }

// GetDebugLogPath returns the path to the debug log.
func GetDebugLogPath() (string, error) { return pathInAdvisorDir(debugLogName) }

// EnsureAdvisorDir creates the advisor directory with owner-only permissions.
func EnsureAdvisorDir() (string, error) {
	dir, err := GetAdvisorDir()
	if err != nil {
		return "", err
	}
	// #nosec G301 - 0700 is intentionally restrictive
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating advisor directory: %w", err)
	}
	return dir, nil
}

// --- Loading ---

// Load reads the config file and resolves every value.
func Load() (*Config, error) {
	file, err := loadFile()
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return merge(file), nil
}

// LoadWithSources is Load that also reports where each value came from.
func LoadWithSources() (*ConfigWithSources, error) {
	file, err := loadFile()
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return mergeInternal(file), nil
}

// NewConfigWithDefaults returns a Config holding only built-in defaults.
func NewConfigWithDefaults() *Config {
	c := merge(&FileConfig{})
	c.GroqAPIKey = ""
	c.AnthropicAPIKey = ""
	c.Warnings = nil
	return c
}

func loadFile() (*FileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is derived from the user's home directory
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("reading: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return &FileConfig{}, nil
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return &fc, nil
}

// resolver accumulates warnings while applying overrides.
type resolver struct {
	warnings []string
}

func (r *resolver) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func fileInt(v *ConfigValue[int], p *int, clamp func(int) int) {
	if p != nil {
		*v = ConfigValue[int]{Value: clamp(*p), Source: SourceFile}
	}
}

func fileFloat(v *ConfigValue[float64], p *float64, clamp func(float64) float64) {
	if p != nil {
		*v = ConfigValue[float64]{Value: clamp(*p), Source: SourceFile}
	}
}

func fileBool(v *ConfigValue[bool], p *bool) {
	if p != nil {
		*v = ConfigValue[bool]{Value: *p, Source: SourceFile}
	}
}

func (r *resolver) envInt(v *ConfigValue[int], name string, clamp func(int) int) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.warnf("ignoring %s=%q: not an integer", name, raw)
		return
	}
	*v = ConfigValue[int]{Value: clamp(n), Source: SourceEnv}
}

func (r *resolver) envFloat(v *ConfigValue[float64], name string, clamp func(float64) float64) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		r.warnf("ignoring %s=%q: not a number", name, raw)
		return
	}
	*v = ConfigValue[float64]{Value: clamp(f), Source: SourceEnv}
}

// envBool treats "true" (any case) as true and everything else as false.
func envBool(v *ConfigValue[bool], name string) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return
	}
	*v = ConfigValue[bool]{Value: strings.EqualFold(strings.TrimSpace(raw), "true"), Source: SourceEnv}
}

func envString(v *ConfigValue[string], name string) {
	if raw := os.Getenv(name); raw != "" {
		*v = ConfigValue[string]{Value: raw, Source: SourceEnv}
	}
}

// mergeInternal combines the file config, environment and defaults.
func mergeInternal(file *FileConfig) *ConfigWithSources {
	if file == nil {
		file = &FileConfig{}
	}
	r := &resolver{}

	c := &ConfigWithSources{
		Provider:           ConfigValue[string]{Value: DefaultProvider},
		GroqAPIKey:         ConfigValue[string]{},
		AnthropicAPIKey:    ConfigValue[string]{},
		MaxTokens:          ConfigValue[int]{Value: DefaultMaxTokens},
		Temperature:        ConfigValue[float64]{Value: DefaultTemperature},
		TopP:               ConfigValue[float64]{Value: DefaultTopP},
		ChunkSize:          ConfigValue[int]{Value: DefaultChunkSize},
		OverlapSize:        ConfigValue[int]{Value: DefaultOverlapSize},
		ContextLines:       ConfigValue[int]{Value: DefaultContextLines},
		EnableChunking:     ConfigValue[bool]{Value: DefaultEnableChunking},
		TimeoutSecs:        ConfigValue[int]{Value: DefaultTimeoutSecs},
		SandboxInterpreter: ConfigValue[string]{Value: DefaultSandboxInterpreter},
		SandboxTimeoutSecs: ConfigValue[int]{Value: DefaultSandboxTimeoutSecs},
		Concurrency:        ConfigValue[int]{Value: DefaultConcurrency},
		File:               file,
	}

	// Config file
	if file.Provider != "" {
		c.Provider = ConfigValue[string]{Value: file.Provider, Source: SourceFile}
	}
	if file.Model != "" {
		c.Model = ConfigValue[string]{Value: file.Model, Source: SourceFile}
	}
	if file.GroqAPIKey != "" {
		c.GroqAPIKey = ConfigValue[string]{Value: file.GroqAPIKey, Source: SourceFile}
	}
	if file.AnthropicAPIKey != "" {
		c.AnthropicAPIKey = ConfigValue[string]{Value: file.AnthropicAPIKey, Source: SourceFile}
	}
	if file.SandboxInterpreter != "" {
		c.SandboxInterpreter = ConfigValue[string]{Value: file.SandboxInterpreter, Source: SourceFile}
	}
	fileInt(&c.MaxTokens, file.MaxTokens, clampMaxTokens)
	fileFloat(&c.Temperature, file.Temperature, clampTemperature)
	fileFloat(&c.TopP, file.TopP, clampTopP)
	fileInt(&c.ChunkSize, file.ChunkSize, clampChunkSize)
	fileInt(&c.OverlapSize, file.OverlapSize, clampOverlap)
	fileInt(&c.ContextLines, file.ContextLines, clampContextLines)
	fileBool(&c.EnableChunking, file.EnableChunking)
	fileBool(&c.Debug, file.Debug)
	fileInt(&c.TimeoutSecs, file.TimeoutSecs, clampTimeout)
	fileInt(&c.SandboxTimeoutSecs, file.SandboxTimeoutSecs, clampSandboxTimeout)
	fileInt(&c.Concurrency, file.Concurrency, clampConcurrency)

	// Environment overrides everything
	envString(&c.Provider, EnvProvider)
	envString(&c.Model, EnvModel)
	envString(&c.GroqAPIKey, EnvGroqAPIKey)
	envString(&c.AnthropicAPIKey, EnvAnthropicAPIKey)
	r.envInt(&c.MaxTokens, EnvMaxTokens, clampMaxTokens)
	r.envFloat(&c.Temperature, EnvTemperature, clampTemperature)
	r.envInt(&c.ChunkSize, EnvChunkSize, clampChunkSize)
	r.envInt(&c.OverlapSize, EnvOverlapSize, clampOverlap)
	r.envInt(&c.ContextLines, EnvContextLines, clampContextLines)
	envBool(&c.EnableChunking, EnvEnableChunking)
	envBool(&c.Debug, EnvDebug)

	r.validateProvider(c)
	r.validateModel(c)
	r.validateAPIKey(c)

	c.Warnings = r.warnings
	return c
}

func (r *resolver) validateProvider(c *ConfigWithSources) {
	p := strings.ToLower(strings.TrimSpace(c.Provider.Value))
	switch p {
	case ProviderGroq, ProviderAnthropic:
		c.Provider.Value = p
	default:
		r.warnf("unknown provider %q, using %s", c.Provider.Value, DefaultProvider)
		c.Provider = ConfigValue[string]{Value: DefaultProvider}
	}
}

// validateModel falls back to the provider's default model when the
// configured one is not recognised.
func (r *resolver) validateModel(c *ConfigWithSources) {
	def := DefaultModelFor(c.Provider.Value)
	if c.Model.Value == "" {
		c.Model = ConfigValue[string]{Value: def}
		return
	}

	switch c.Provider.Value {
	case ProviderGroq:
		if !slices.Contains(KnownGroqModels, c.Model.Value) {
			r.warnf("model %s might not be available, using default: %s", c.Model.Value, def)
			c.Model = ConfigValue[string]{Value: def}
		}
	case ProviderAnthropic:
		if !strings.HasPrefix(c.Model.Value, anthropicModelPrefix) {
			r.warnf("ignoring invalid model %q (must start with %q), using default: %s", c.Model.Value, anthropicModelPrefix, def)
			c.Model = ConfigValue[string]{Value: def}
		}
	}
}

func (r *resolver) validateAPIKey(c *ConfigWithSources) {
	switch c.Provider.Value {
	case ProviderGroq:
		if c.GroqAPIKey.Value == "" {
			r.warnf("%s not set: export it or run 'advisor config set groq_api_key <key>' (free keys at https://console.groq.com/)", EnvGroqAPIKey)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey.Value == "" {
			r.warnf("%s not set: export it or run 'advisor config set anthropic_api_key <key>'", EnvAnthropicAPIKey)
		}
	}
}

// DefaultModelFor returns the default model of provider.
func DefaultModelFor(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultGroqModel
}

func merge(file *FileConfig) *Config {
	src := mergeInternal(file)
	return &Config{
		Provider:           src.Provider.Value,
		Model:              src.Model.Value,
		GroqAPIKey:         src.GroqAPIKey.Value,
		AnthropicAPIKey:    src.AnthropicAPIKey.Value,
		MaxTokens:          src.MaxTokens.Value,
		Temperature:        src.Temperature.Value,
		TopP:               src.TopP.Value,
		ChunkSize:          src.ChunkSize.Value,
		OverlapSize:        src.OverlapSize.Value,
		ContextLines:       src.ContextLines.Value,
		EnableChunking:     src.EnableChunking.Value,
		Debug:              src.Debug.Value,
		TimeoutSecs:        src.TimeoutSecs.Value,
		SandboxInterpreter: src.SandboxInterpreter.Value,
		SandboxTimeoutSecs: src.SandboxTimeoutSecs.Value,
		Concurrency:        src.Concurrency.Value,
		Warnings:           src.Warnings,
		file:               src.File,
	}
}

// APIKey returns the key of the active provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GroqAPIKey
}

// --- Clamping helpers ---

func clampInt(lo, hi int) func(int) int {
	return func(v int) int { return min(hi, max(lo, v)) }
}

func clampFloat(lo, hi float64) func(float64) float64 {
	return func(v float64) float64 { return min(hi, max(lo, v)) }
}

var (
	clampMaxTokens      = clampInt(minMaxTokens, maxMaxTokens)
	clampTemperature    = clampFloat(0, maxTemperature)
	clampTopP           = clampFloat(0, 1)
	clampChunkSize      = clampInt(1, maxChunkSize)
	clampOverlap        = clampInt(0, maxChunkSize)
	clampContextLines   = clampInt(0, maxContextLines)
	clampTimeout        = clampInt(minTimeoutSecs, maxTimeoutSecs)
	clampSandboxTimeout = clampInt(1, maxSandboxTimeout)
	clampConcurrency    = clampInt(1, maxConcurrency)
)

// --- Saving ---

func saveFile(file *FileConfig) error {
	dir, err := EnsureAdvisorDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}

	path := filepath.Join(dir, configFileName)
	// #nosec G306 - 0600 is intentionally restrictive
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}

// Save persists the file-backed part of the config.
func (c *Config) Save() error {
	if c.file == nil {
		c.file = &FileConfig{}
	}
	return saveFile(c.file)
}

// ErrUnknownKey is returned by Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// SettableKeys lists the keys accepted by Set, in display order.
var SettableKeys = []string{
	"provider", "model", "groq_api_key", "anthropic_api_key",
	"max_tokens", "temperature", "top_p",
	"chunk_size", "overlap_size", "context_lines", "enable_chunking",
	"debug", "timeout_secs", "sandbox_interpreter", "sandbox_timeout_secs", "concurrency",
}

// Set parses value for key, stores it in the config file and saves.
// An empty value clears the key.
func (c *Config) Set(key, value string) error {
	if c.file == nil {
		c.file = &FileConfig{}
	}
	if err := setField(c.file, key, strings.TrimSpace(value)); err != nil {
		return err
	}
	return c.Save()
}

func setField(f *FileConfig, key, value string) error {
	intPtr := func(dst **int) error {
		if value == "" {
			*dst = nil
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		*dst = &n
		return nil
	}
	floatPtr := func(dst **float64) error {
		if value == "" {
			*dst = nil
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, value)
		}
		*dst = &v
		return nil
	}
	boolPtr := func(dst **bool) error {
		if value == "" {
			*dst = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, value)
		}
		*dst = &b
		return nil
	}

	switch key {
	case "provider":
		v := strings.ToLower(value)
		if v != "" && v != ProviderGroq && v != ProviderAnthropic {
			return fmt.Errorf("provider must be %q or %q", ProviderGroq, ProviderAnthropic)
		}
		f.Provider = v
	case "model":
		f.Model = value
	case "groq_api_key":
		f.GroqAPIKey = value
	case "anthropic_api_key":
		f.AnthropicAPIKey = value
	case "sandbox_interpreter":
		f.SandboxInterpreter = value
	case "max_tokens":
		return intPtr(&f.MaxTokens)
	case "temperature":
		return floatPtr(&f.Temperature)
	case "top_p":
		return floatPtr(&f.TopP)
	case "chunk_size":
		return intPtr(&f.ChunkSize)
	case "overlap_size":
		return intPtr(&f.OverlapSize)
	case "context_lines":
		return intPtr(&f.ContextLines)
	case "enable_chunking":
		return boolPtr(&f.EnableChunking)
	case "debug":
		return boolPtr(&f.Debug)
	case "timeout_secs":
		return intPtr(&f.TimeoutSecs)
	case "sandbox_timeout_secs":
		return intPtr(&f.SandboxTimeoutSecs)
	case "concurrency":
		return intPtr(&f.Concurrency)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Reset removes the config file. A missing file is not an error.
func Reset() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing config: %w", err)
	}
	return nil
}

// MaskAPIKey returns a masked version of an API key for safe display.
// Shows only the last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
