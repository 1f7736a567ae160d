package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/chunk"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var (
	chunkSize    int
	chunkOverlap int
	chunkJSON    bool
	chunkShow    bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Show how a source file would be split into overlapping chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	chunkCmd.Flags().IntVar(&chunkSize, "size", 0, "lines per chunk (default from config)")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "overlap lines (default from config)")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "print boundaries as JSON")
	chunkCmd.Flags().BoolVar(&chunkShow, "show", false, "print each chunk's text")
}

func runChunk(cmd *cobra.Command, args []string) error {
	code, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	size, overlap := globalConfig.ChunkSize, globalConfig.OverlapSize
	if chunkSize > 0 {
		size = chunkSize
	}
	if chunkOverlap >= 0 {
		overlap = chunkOverlap
	}
	c := chunk.New(chunk.WithSize(size), chunk.WithOverlap(overlap))
	bounds := c.Boundaries(code)

	out := cmd.OutOrStdout()
	if chunkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bounds)
	}

	fmt.Fprintf(out, "%s %s\n", tui.Bullet(),
		tui.MutedStyle.Render(fmt.Sprintf("size %d, overlap %d, %d chunk(s)", c.Size(), c.Overlap(), len(bounds))))
	chunks := c.Split(code)
	for i, b := range bounds {
		fmt.Fprintf(out, "%3d  lines %d-%d", i+1, b.Start, b.End)
		if b.OverlapStart < b.Start {
			fmt.Fprintf(out, "  (overlap from %d)", b.OverlapStart)
		}
		fmt.Fprintln(out)
		if chunkShow && i < len(chunks) {
			fmt.Fprintln(out, chunks[i])
		}
	}
	return nil
}
