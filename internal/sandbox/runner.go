// Package sandbox runs suggested fixes in a throwaway directory with a
// filtered environment and a hard timeout.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nightlyone/lockfile"
)

const (
	// DefaultInterpreter is looked up on PATH.
	DefaultInterpreter = "python3"
	// DefaultTimeout bounds a single run.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxOutput caps each of stdout and stderr.
	DefaultMaxOutput = 50 * 1024

	// DirPrefix names every sandbox directory created under BaseDir.
	DirPrefix = "advisor-sandbox-"
	// LockFileName is held for the lifetime of a run.
	LockFileName = ".advisor.lock"
	// ScriptName is the file the code is written to.
	ScriptName = "main.py"

	timeoutMessage  = "Execution timed out (possible infinite loop)"
	truncatedSuffix = "\n... (truncated)"
)

// Result is the outcome of one run.
type Result struct {
	Success  bool          `json:"success"`
	Stdout   string        `json:"output"`
	Stderr   string        `json:"error"`
	TimedOut bool          `json:"timed_out,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Runner executes Python code. The zero value uses the defaults.
type Runner struct {
	Interpreter string
	Timeout     time.Duration
	// BaseDir holds sandbox directories. Empty means os.TempDir().
	BaseDir   string
	MaxOutput int
}

func (r Runner) withDefaults() Runner {
	if r.Interpreter == "" {
		r.Interpreter = DefaultInterpreter
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.BaseDir == "" {
		r.BaseDir = os.TempDir()
	}
	if r.MaxOutput <= 0 {
		r.MaxOutput = DefaultMaxOutput
	}
	return r
}

// Run writes code to a fresh directory and executes it. Failures to set up
// or start the process are reported in Stderr as "Sandbox error: ...";
// Run itself never fails. The directory is always removed.
func (r Runner) Run(ctx context.Context, code string) Result {
	r = r.withDefaults()
	start := time.Now()

	res, err := r.run(ctx, code)
	if err != nil {
		res = Result{Stderr: "Sandbox error: " + err.Error(), ExitCode: -1}
	}
	res.Duration = time.Since(start)
	return res
}

func (r Runner) run(ctx context.Context, code string) (Result, error) {
	base, err := filepath.Abs(r.BaseDir)
	if err != nil {
		return Result{}, fmt.Errorf("resolving base dir: %w", err)
	}
	// #nosec G301 - owner-only base directory
	if err := os.MkdirAll(base, 0o700); err != nil {
		return Result{}, fmt.Errorf("creating base dir: %w", err)
	}

	dir, err := os.MkdirTemp(base, DirPrefix+"*")
	if err != nil {
		return Result{}, fmt.Errorf("creating sandbox dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	lock, err := lockfile.New(filepath.Join(dir, LockFileName))
	if err != nil {
		return Result{}, fmt.Errorf("creating lock: %w", err)
	}
	if err := lock.TryLock(); err != nil {
		return Result{}, fmt.Errorf("acquiring lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	script := filepath.Join(dir, ScriptName)
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return Result{}, fmt.Errorf("writing script: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	// #nosec G204 - interpreter comes from local configuration
	cmd := exec.CommandContext(execCtx, r.Interpreter, script)
	cmd.Dir = dir
	cmd.Env = safeEnv(dir)

	stdout := &cappedBuffer{limit: r.MaxOutput}
	stderr := &cappedBuffer{limit: r.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()

	// The caller's deadline or cancellation is not a timeout of the code.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return Result{Stderr: timeoutMessage, TimedOut: true, ExitCode: -1}, nil
	}

	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{}, runErr
		}
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.Success = true
	return res, nil
}

// safeEnv returns the parent environment reduced to an allowlist, with
// anything that looks like a credential removed and HOME pointed at dir.
func safeEnv(dir string) []string {
	allowed := map[string]struct{}{
		"PATH": {}, "USER": {}, "LANG": {}, "LC_ALL": {}, "LC_CTYPE": {},
		"SYSTEMROOT": {}, "PYTHONPATH": {}, "VIRTUAL_ENV": {}, "PYTHONHOME": {},
	}
	blockedSuffixes := []string{
		"_KEY", "_TOKEN", "_SECRET", "_PASSWORD", "_CREDS", "_AUTH",
	}

	env := []string{
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"PYTHONDONTWRITEBYTECODE=1",
		"PYTHONIOENCODING=utf-8",
	}
	for _, kv := range os.Environ() {
		idx := strings.Index(kv, "=")
		if idx <= 0 {
			continue
		}
		key := kv[:idx]
		upper := strings.ToUpper(key)

		blocked := false
		for _, suffix := range blockedSuffixes {
			if strings.HasSuffix(upper, suffix) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		if _, ok := allowed[key]; ok {
			env = append(env, kv)
		}
	}
	return env
}

// cappedBuffer keeps the first limit bytes written to it and drops the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + truncatedSuffix
	}
	return b.buf.String()
}
