package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

// Version is set at build time via -ldflags "-X .../cmd.Version=x.y.z".
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the advisor version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Header(Version, "version"))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tui.Bullet(), tui.MutedStyle.Render(runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH))
	},
}
