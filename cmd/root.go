package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/logs"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/signal"
)

const (
	brandingColor = "42"  // Green - matches ColorBrand in TUI
	commandColor  = "15"  // Pure white for command name
	contextColor  = "241" // Gray - hints
)

var (
	// Global flags shared across commands
	debugFlag   bool
	quietFlag   bool
	providerArg string
	modelArg    string
)

// globalConfig holds the resolved configuration, available to all commands.
// Initialized in PersistentPreRunE.
var globalConfig *persistence.Config

// logger is built in PersistentPreRunE and closed in PersistentPostRunE.
var logger *logs.Logger

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

var (
	brandingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(brandingColor))
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(commandColor))
	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(contextColor))
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Explain Python errors and suggest three ways to fix them",
	Long: `advisor reads a piece of Python code and the traceback it produced,
asks a hosted language model what went wrong, and prints:

  - an explanation of the error
  - a simple fix
  - a fix using try/except handling
  - an alternative approach

Credentials:
  GROQ_API_KEY       for the default groq provider (free keys at console.groq.com)
  ANTHROPIC_API_KEY  for --provider anthropic`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Config subcommands and version handle configuration themselves
		if skipsSetup(cmd) {
			return nil
		}

		cfg, configErr := persistence.Load()
		if configErr != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n",
				warnStyle.Render("⚠"),
				contextStyle.Render(fmt.Sprintf("Config error: %v", configErr)))
			fmt.Fprintf(os.Stderr, "  %s %s %s\n\n",
				contextStyle.Render("Run"),
				commandStyle.Render("advisor config reset"),
				contextStyle.Render("to fix"))
			// Continue with defaults
			cfg = persistence.NewConfigWithDefaults()
		}
		applyGlobalFlags(cmd, cfg)
		globalConfig = cfg

		l, err := newLogger(cfg)
		if err != nil {
			return err
		}
		logger = l

		if !quietFlag && needsCredentials(cmd) {
			for _, w := range cfg.Warnings {
				fmt.Fprintf(os.Stderr, "%s %s\n", warnStyle.Render("⚠"), contextStyle.Render(w))
			}
		}
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if logger != nil {
			return logger.Close()
		}
		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, stop := signal.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		signal.PrintCancellationMessage("advisor")
		return nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errorLine(err))
	}
	return err
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(sandboxCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging (also DEBUG_MODE=true)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress configuration warnings")
	rootCmd.PersistentFlags().StringVar(&providerArg, "provider", "", "completion provider: groq or anthropic")
	rootCmd.PersistentFlags().StringVarP(&modelArg, "model", "m", "", "model name (overrides MODEL_NAME)")

	rootCmd.SetHelpTemplate(fmt.Sprintf(`%s
{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}`, brandingStyle.Render(fmt.Sprintf("advisor v%s", Version))))
}

func skipsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd || c == versionCmd {
			return true
		}
	}
	return false
}

// needsCredentials reports whether cmd talks to a completion provider.
func needsCredentials(cmd *cobra.Command) bool {
	return cmd == analyzeCmd || cmd == batchCmd
}

// applyGlobalFlags lets command-line flags override the resolved config.
func applyGlobalFlags(cmd *cobra.Command, cfg *persistence.Config) {
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = debugFlag
	}
	if providerArg != "" {
		cfg.Provider = providerArg
		if !flags.Changed("model") {
			cfg.Model = persistence.DefaultModelFor(providerArg)
		}
	}
	if modelArg != "" {
		cfg.Model = modelArg
	}
}

func newLogger(cfg *persistence.Config) (*logs.Logger, error) {
	opts := logs.Options{Writer: os.Stderr, Debug: cfg.Debug}
	if cfg.Debug {
		if path, err := persistence.GetDebugLogPath(); err == nil {
			opts.FilePath = path
		}
	}
	l, err := logs.New(opts)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return l, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func errorLine(err error) string {
	return warnStyle.Render("✗") + " " + err.Error()
}
