package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/persistence"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var forceReset bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage advisor configuration",
	Long: `View and manage the advisor configuration in ~/.advisor/config.yaml.

Environment variables (GROQ_API_KEY, MODEL_NAME, MAX_TOKENS, ...) take
precedence over the file. Set ADVISOR_HOME to use another directory.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the config file",
	Long: `Store a setting in the config file. An empty value removes it.

Keys:
  ` + strings.Join(persistence.SettableKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long: `Delete the config file so every setting falls back to its default.

API keys stored in the file are removed too.`,
	Args: cobra.NoArgs,
	RunE: runConfigReset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configPathCmd)

	configResetCmd.Flags().BoolVarP(&forceReset, "force", "f", false, "skip confirmation")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.Header(Version, "config"))
	fmt.Fprintln(out)

	c, err := persistence.LoadWithSources()
	if err != nil {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "%s Failed to load configuration\n", tui.ErrorStyle.Render("✗"))
		fmt.Fprintf(errOut, "%s %s\n", tui.Bullet(), tui.MutedStyle.Render(err.Error()))
		fmt.Fprintf(errOut, "%s %s\n\n", tui.Bullet(), tui.SecondaryStyle.Render("Run: advisor config reset"))
		return nil
	}

	row := func(label, value string, src persistence.ValueSource) {
		fmt.Fprintf(out, "  %-14s %-28s %s\n", label, tui.PrimaryStyle.Render(value), tui.Badge(src.String()))
	}
	key := func(label string, v persistence.ConfigValue[string]) {
		if v.Value == "" {
			fmt.Fprintf(out, "  %-14s %s\n", label, tui.WarningStyle.Render("not configured"))
			return
		}
		row(label, persistence.MaskAPIKey(v.Value), v.Source)
	}

	fmt.Fprintln(out, tui.SecondaryStyle.Render("Provider"))
	fmt.Fprintf(out, "  %-14s %-28s %s\n", "Provider",
		tui.ProviderStyle(c.Provider.Value).Render(c.Provider.Value), tui.Badge(c.Provider.Source.String()))
	row("Model", c.Model.Value, c.Model.Source)
	key("Groq key", c.GroqAPIKey)
	key("Anthropic key", c.AnthropicAPIKey)

	fmt.Fprintf(out, "\n%s\n", tui.SecondaryStyle.Render("Generation"))
	row("Max tokens", fmt.Sprint(c.MaxTokens.Value), c.MaxTokens.Source)
	row("Temperature", fmt.Sprint(c.Temperature.Value), c.Temperature.Source)
	row("Top p", fmt.Sprint(c.TopP.Value), c.TopP.Source)
	row("Timeout", fmt.Sprintf("%ds", c.TimeoutSecs.Value), c.TimeoutSecs.Source)
	row("Concurrency", fmt.Sprint(c.Concurrency.Value), c.Concurrency.Source)

	fmt.Fprintf(out, "\n%s\n", tui.SecondaryStyle.Render("Analysis"))
	row("Chunking", onOff(c.EnableChunking.Value), c.EnableChunking.Source)
	row("Chunk size", fmt.Sprint(c.ChunkSize.Value), c.ChunkSize.Source)
	row("Overlap", fmt.Sprint(c.OverlapSize.Value), c.OverlapSize.Source)
	row("Context lines", fmt.Sprint(c.ContextLines.Value), c.ContextLines.Source)

	fmt.Fprintf(out, "\n%s\n", tui.SecondaryStyle.Render("Sandbox"))
	row("Interpreter", c.SandboxInterpreter.Value, c.SandboxInterpreter.Source)
	row("Timeout", fmt.Sprintf("%ds", c.SandboxTimeoutSecs.Value), c.SandboxTimeoutSecs.Source)
	row("Debug", onOff(c.Debug.Value), c.Debug.Source)

	if len(c.Warnings) > 0 {
		fmt.Fprintf(out, "\n%s\n", tui.WarningStyle.Render("Warnings"))
		for _, w := range c.Warnings {
			fmt.Fprintf(out, "  %s %s\n", tui.Bullet(), tui.MutedStyle.Render(w))
		}
	}

	if path, err := persistence.GetConfigPath(); err == nil {
		fmt.Fprintf(out, "\n%s\n", tui.SecondaryStyle.Render("File"))
		fmt.Fprintf(out, "  %s\n", tui.MutedStyle.Render(path))
	}
	fmt.Fprintln(out)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := persistence.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	key := strings.ToLower(args[0])
	if err := cfg.Set(key, args[1]); err != nil {
		return err
	}

	shown := args[1]
	if strings.HasSuffix(key, "_api_key") {
		shown = persistence.MaskAPIKey(shown)
	}
	if shown == "" {
		fmt.Fprintln(cmd.OutOrStdout(), tui.ExitSuccess(key+" cleared"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.ExitSuccess(fmt.Sprintf("%s = %s", key, shown)))
	return nil
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if !forceReset {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s Reset to defaults?\n", tui.WarningStyle.Render("!"))
		fmt.Fprintf(out, "%s Stored API keys will be removed\n", tui.Bullet())
		fmt.Fprintf(out, "%s Environment variables are not affected\n\n", tui.Bullet())
		fmt.Fprint(out, "Continue? [y/N] ")

		if !confirmed(cmd.InOrStdin()) {
			fmt.Fprintf(out, "\n%s Cancelled\n\n", tui.MutedStyle.Render("·"))
			return nil
		}
		fmt.Fprintln(out)
	}

	if err := persistence.Reset(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Configuration reset\n\n", tui.SuccessStyle.Render("✓"))
	fmt.Fprintf(out, "  Provider     %s\n", tui.PrimaryStyle.Render(persistence.DefaultProvider))
	fmt.Fprintf(out, "  Model        %s\n", tui.PrimaryStyle.Render(persistence.DefaultGroqModel))
	fmt.Fprintf(out, "  Max tokens   %s\n\n", tui.PrimaryStyle.Render(fmt.Sprint(persistence.DefaultMaxTokens)))
	return nil
}

func confirmed(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := persistence.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
