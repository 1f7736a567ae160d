package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/output"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/util"
)

var (
	historyLimit  int
	historyFormat string
	historyOlder  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete analyses older than --older-than",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "o", "", "output format: text, styled, json")
	historyPruneCmd.Flags().DurationVar(&historyOlder, "older-than", 30*24*time.Hour, "age of entries to delete")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	h, err := persistence.OpenHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := h.List(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, tui.MutedStyle.Render("No saved analyses yet. Run: advisor analyze"))
		return nil
	}

	now := time.Now()
	for _, e := range entries {
		label := e.ErrorType
		if label == "" {
			label = "Unknown"
		}
		name := e.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(out, "%s  %s %-24s %-20s %s\n",
			tui.BrandStyle.Render(e.ID),
			tui.StatusIcon(!e.Failed),
			label,
			tui.MutedStyle.Render(name),
			tui.MutedStyle.Render(util.FormatAge(e.CreatedAt, now)),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(historyFormat, out)
	if err != nil {
		return err
	}

	h, err := persistence.OpenHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	entry, err := h.Get(args[0])
	if err != nil {
		return err
	}

	if format == formatJSON {
		raw, err := sjson.SetBytes(entry.ReportJSON, "id", entry.ID)
		if err != nil {
			return fmt.Errorf("annotating report: %w", err)
		}
		if raw, err = sjson.SetBytes(raw, "created_at", entry.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("annotating report: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", raw)
		return err
	}

	var report output.Report
	if err := json.Unmarshal(entry.ReportJSON, &report); err != nil {
		return fmt.Errorf("decoding saved report %s: %w", entry.ID, err)
	}
	fmt.Fprintln(out, tui.MutedStyle.Render(fmt.Sprintf("%s · %s · %s", entry.ID, entry.CreatedAt.Local().Format(time.DateTime), entry.Provider)))
	return writeReport(out, &report, format)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	h, err := persistence.OpenHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	n, err := h.Prune(time.Now().Add(-historyOlder))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.ExitSuccess(fmt.Sprintf("deleted %d entr%s", n, pluralY(int(n)))))
	return nil
}
