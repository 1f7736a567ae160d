package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/batch"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/completion"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

const batchCacheBytes = 32 << 20

var (
	batchConcurrency int
	batchFormat      string
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <pattern>...",
	Short: "Analyze every case in a set of YAML files",
	Long: `Loads cases from YAML files matched by the given patterns and analyzes
them concurrently. Patterns support ** for recursive matching.

A case file holds one case, or a list under "cases":

  name: empty-average
  code: |
    def avg(xs):
        return sum(xs) / len(xs)
  error: |
    ZeroDivisionError: division by zero

Identical prompts within one run are answered from a shared cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", 0, "requests in flight (default from config)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "o", "", "output format: text, styled, json")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "record each analysis in history")
}

func runBatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(batchFormat, out)
	if err != nil {
		return err
	}

	cases, err := batch.LoadCases(args...)
	if err != nil {
		return err
	}

	cache, err := completion.NewCache(batchCacheBytes, completion.DefaultCacheTTL)
	if err != nil {
		return err
	}
	defer cache.Close()

	adv, err := newAdvisor(globalConfig, cache)
	if err != nil {
		return err
	}

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = globalConfig.Concurrency
	}

	start := time.Now()
	results, runErr := batch.Run(cmd.Context(), adv, cases, concurrency, logger.Logger)

	reports := make([]*output.Report, 0, len(results))
	failed := 0
	for _, r := range results {
		report := r.Report
		if r.Err != nil {
			failed++
			report = &output.Report{Name: r.Case.Name, Failed: true, Error: r.Err.Error()}
		} else if report.Failed {
			failed++
		}
		reports = append(reports, report)

		if batchSave && r.Err == nil {
			saveReport(report, r.Case.Code, 0)
		}
	}

	if format == formatJSON {
		if err := output.FormatJSONList(out, reports); err != nil {
			return err
		}
	} else {
		for i, report := range reports {
			heading := fmt.Sprintf("=== %s (%s) ===", report.Name, cases[i].Source)
			if format == formatStyled {
				heading = tui.BoldPrimaryStyle.Render(report.Name) + " " + tui.MutedStyle.Render(cases[i].Source)
			}
			fmt.Fprintln(out, heading)
			if results[i].Err != nil {
				fmt.Fprintf(out, "%s\n\n", tui.ExitError(report.Error))
				continue
			}
			if err := writeReport(out, report, format); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		summary := fmt.Sprintf("%d cases, %d failed, %d cached replies in %s",
			len(reports), failed, cache.Hits(), time.Since(start).Round(time.Millisecond))
		fmt.Fprintln(cmd.ErrOrStderr(), tui.MutedStyle.Render(summary))
	}
	return runErr
}
