package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/advisor"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/examples"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/sentry"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var (
	analyzeCodeFile  string
	analyzeErrorFile string
	analyzeExample   string
	analyzeFormat    string
	analyzeNoSave    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [code-file] [traceback-file]",
	Short: "Analyze code and its traceback and suggest three fixes",
	Long: `Reads Python code and the traceback it produced, then prints an
explanation of the error and three suggested solutions.

Inputs can be given as positional arguments or flags. Use "-" to read one of
them from stdin. --example runs one of the built-in samples instead.

Examples:
  advisor analyze app.py error.txt
  python app.py 2>&1 | advisor analyze app.py -
  advisor analyze --example file-processing --format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCodeFile, "code", "c", "", "file holding the Python code (- for stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeErrorFile, "error", "e", "", "file holding the traceback (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeExample, "example", "", "run a built-in example (see 'advisor examples')")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "o", "", "output format: text, styled, json (default styled on a terminal)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record the analysis in history")
}

// analyzeInputs resolves code and traceback from the example, flags and
// positional arguments, in that order of precedence.
func analyzeInputs(cmd *cobra.Command, args []string) (name, code, tb string, err error) {
	if analyzeExample != "" {
		ex, exErr := examples.Get(analyzeExample)
		if exErr != nil {
			return "", "", "", exErr
		}
		return ex.Name, ex.Code, ex.Traceback, nil
	}

	codePath, tbPath := analyzeCodeFile, analyzeErrorFile
	if codePath == "" && len(args) > 0 {
		codePath = args[0]
	}
	if tbPath == "" && len(args) > 1 {
		tbPath = args[1]
	}
	if codePath == "-" && tbPath == "-" {
		return "", "", "", errors.New("only one of code and traceback can be read from stdin")
	}
	if codePath == "" {
		return "", "", "", advisor.ErrEmptyCode
	}
	if tbPath == "" {
		return "", "", "", advisor.ErrEmptyTraceback
	}

	if code, err = readInput(codePath, cmd.InOrStdin()); err != nil {
		return "", "", "", err
	}
	if tb, err = readInput(tbPath, cmd.InOrStdin()); err != nil {
		return "", "", "", err
	}
	if codePath != "-" {
		name = codePath
	}
	return name, code, tb, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(analyzeFormat, out)
	if err != nil {
		return err
	}

	name, code, tb, err := analyzeInputs(cmd, args)
	if err != nil {
		return err
	}
	if err := advisor.Validate(code, tb); err != nil {
		return err
	}

	adv, err := newAdvisor(globalConfig, nil)
	if err != nil {
		return err
	}

	sentry.SetTag("provider", globalConfig.Provider)
	start := time.Now()

	var report *output.Report
	interactive := format != formatJSON && isTerminal(os.Stderr)
	err = tui.RunWithProgress(cmd.Context(), os.Stderr, interactive, func(ctx context.Context, progress tui.Reporter) error {
		var adviseErr error
		report, adviseErr = adv.Advise(ctx, advisor.Request{
			Name:      name,
			Code:      code,
			Traceback: tb,
			Progress:  func(s advisor.Stage) { progress(stageText(s)) },
		})
		return adviseErr
	})
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return context.Canceled
		}
		return err
	}
	elapsed := time.Since(start)

	if format == formatStyled {
		fmt.Fprintln(out, tui.Header(Version, "analyze")+" "+
			tui.ProviderStyle(globalConfig.Provider).Render(globalConfig.Model))
		fmt.Fprintf(out, "%s %s\n", tui.Bullet(), tui.MutedStyle.Render(summaryLine(report)))
	}
	if err := writeReport(out, report, format); err != nil {
		return err
	}

	if !analyzeNoSave {
		if id := saveReport(report, code, elapsed); id != "" && format == formatStyled {
			fmt.Fprintf(out, "%s %s\n", tui.Bullet(),
				tui.HintStyle.Render("saved as "+id+" · advisor history show "+id))
		}
	}
	return nil
}

func stageText(s advisor.Stage) string {
	if s == advisor.StageGenerating {
		return tui.StageGenerating
	}
	return tui.StageAnalyzing
}

// summaryLine describes the recovered error in one line.
func summaryLine(r *output.Report) string {
	line := r.Analysis.ErrorType + ": " + r.Analysis.ErrorMessage
	if r.Analysis.HasLine() {
		line += fmt.Sprintf(" (line %d)", r.Analysis.Line)
	}
	if r.Plan.Method != "" {
		line += " · " + r.Plan.Method
	}
	if !r.Structure.SyntaxValid && r.Structure.Error != nil {
		line += " · " + *r.Structure.Error
	}
	return line
}
