package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/advisor"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/prompt"
)

var promptSystem bool

var promptCmd = &cobra.Command{
	Use:   "prompt [code-file] [traceback-file]",
	Short: "Print the prompt that analyze would send, without calling a model",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&analyzeCodeFile, "code", "c", "", "file holding the Python code (- for stdin)")
	promptCmd.Flags().StringVarP(&analyzeErrorFile, "error", "e", "", "file holding the traceback (- for stdin)")
	promptCmd.Flags().StringVar(&analyzeExample, "example", "", "use a built-in example")
	promptCmd.Flags().BoolVar(&promptSystem, "system", false, "also print the system prompt")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	_, code, tb, err := analyzeInputs(cmd, args)
	if err != nil {
		return err
	}
	if err := advisor.Validate(code, tb); err != nil {
		return err
	}

	res := newAnalyzer(globalConfig).Analyze(code, tb)
	out := cmd.OutOrStdout()
	if promptSystem {
		fmt.Fprintf(out, "%s\n\n", prompt.SystemPrompt)
	}
	fmt.Fprintln(out, prompt.Build(code, tb, res))
	return nil
}
