package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <reply-file>",
	Short: "Parse a saved model reply into the four sections",
	Long: `Runs the reply parser on a model reply saved to a file (or stdin with "-")
and prints the recovered sections. Useful for checking how a reply from
another tool would be interpreted.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "o", "", "output format: text, styled, json")
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(parseFormat, out)
	if err != nil {
		return err
	}

	reply, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	sections, strategy := response.ParseWithStrategy(reply)
	report := &output.Report{Name: args[0], Sections: sections, Strategy: strategy}
	logger.Debug("reply parsed", "strategy", strategy)

	if format == formatStyled {
		fmt.Fprintf(out, "%s %s\n", tui.Bullet(), tui.MutedStyle.Render("strategy: "+string(strategy)))
	}
	return writeReport(out, report, format)
}
