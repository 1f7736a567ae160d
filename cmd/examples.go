package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/examples"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var examplesShow string

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List the built-in sample bugs",
	Long: `Lists the built-in sample programs and their tracebacks. Run one with:

  advisor analyze --example file-processing`,
	Args: cobra.NoArgs,
	RunE: runExamples,
}

func init() {
	examplesCmd.Flags().StringVar(&examplesShow, "show", "", "print the code and traceback of one example")
}

func runExamples(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if examplesShow != "" {
		ex, err := examples.Get(examplesShow)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", tui.BoldPrimaryStyle.Render(ex.Title))
		fmt.Fprintln(out, tui.MutedStyle.Render("# code"))
		fmt.Fprintln(out, ex.Code)
		fmt.Fprintln(out, tui.MutedStyle.Render("# traceback"))
		fmt.Fprintln(out, ex.Traceback)
		return nil
	}

	for i, ex := range examples.All() {
		fmt.Fprintf(out, "%d. %s  %s\n", i+1, tui.BrandStyle.Render(ex.Name), ex.Title)
		fmt.Fprintf(out, "   %s\n", tui.MutedStyle.Render(ex.Description))
	}
	return nil
}
