package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/sandbox"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var (
	sandboxHistoryID string
	sandboxSolution  int
	sandboxTimeout   time.Duration
	sandboxForce     bool
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run Python code or a suggested fix in a throwaway directory",
}

var sandboxRunCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Python file, or a solution from a saved analysis",
	Long: `Runs code with a filtered environment and a hard timeout. Secrets such
as API keys are not passed to the child process.

  advisor sandbox run fix.py
  advisor sandbox run --history 3f2a9c1b0d4e --solution 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSandbox,
}

var sandboxCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove sandbox directories left behind by killed runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := sandbox.CleanOrphaned("", sandboxForce)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.ExitSuccess(fmt.Sprintf("removed %d sandbox director%s", removed, pluralY(removed))))
		return nil
	},
}

func init() {
	sandboxRunCmd.Flags().StringVar(&sandboxHistoryID, "history", "", "take code from a saved analysis")
	sandboxRunCmd.Flags().IntVar(&sandboxSolution, "solution", 1, "solution to run with --history (1-3)")
	sandboxRunCmd.Flags().DurationVar(&sandboxTimeout, "timeout", 0, "execution timeout (default from config)")
	sandboxCleanCmd.Flags().BoolVarP(&sandboxForce, "force", "f", false, "also remove recent unlocked directories")

	sandboxCmd.AddCommand(sandboxRunCmd)
	sandboxCmd.AddCommand(sandboxCleanCmd)
}

func runSandbox(cmd *cobra.Command, args []string) error {
	code, err := sandboxCode(cmd, args)
	if err != nil {
		return err
	}

	runner := sandbox.Runner{
		Interpreter: globalConfig.SandboxInterpreter,
		Timeout:     time.Duration(globalConfig.SandboxTimeoutSecs) * time.Second,
	}
	if sandboxTimeout > 0 {
		runner.Timeout = sandboxTimeout
	}

	logger.Debug("sandbox run", "interpreter", runner.Interpreter, "timeout", runner.Timeout)
	res := runner.Run(cmd.Context(), code)

	out := cmd.OutOrStdout()
	if res.Stdout != "" {
		fmt.Fprint(out, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
	}
	status := fmt.Sprintf("exit %d in %s", res.ExitCode, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", tui.StatusIcon(res.Success), tui.MutedStyle.Render(status))
	if !res.Success {
		return errSandboxFailed
	}
	return nil
}

var errSandboxFailed = errors.New("code did not run successfully")

func sandboxCode(cmd *cobra.Command, args []string) (string, error) {
	if sandboxHistoryID == "" {
		if len(args) == 0 {
			return "", errors.New("a file or --history is required")
		}
		return readInput(args[0], cmd.InOrStdin())
	}

	if sandboxSolution < 1 || sandboxSolution > 3 {
		return "", fmt.Errorf("--solution must be 1, 2 or 3, got %d", sandboxSolution)
	}
	field := response.Fields[sandboxSolution]

	h, err := persistence.OpenHistory()
	if err != nil {
		return "", err
	}
	defer h.Close()

	entry, err := h.Get(sandboxHistoryID)
	if err != nil {
		return "", err
	}
	text := gjson.GetBytes(entry.ReportJSON, "sections."+field.String()).String()
	code, ok := sandbox.ExtractCode(text)
	if !ok {
		return "", fmt.Errorf("solution %d of %s has no Python code block", sandboxSolution, entry.ID)
	}
	return code, nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
