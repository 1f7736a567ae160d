package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette shared by all commands.
const (
	ColorBrand     = "42"  // Green - brand, success states
	ColorPrimary   = "255" // White - main text, emphasis
	ColorSecondary = "245" // Light gray - supporting text
	ColorMuted     = "240" // Dark gray - hints, less important info
	ColorSuccess   = "42"  // Green - operations succeeded
	ColorError     = "203" // Red - errors, failures
	ColorWarning   = "214" // Orange - cautions, attention needed
	ColorAccent    = "45"  // Cyan - highlights, links (use sparingly)
	ColorAnthropic = "208" // Orange - Anthropic brand color
	ColorGroq      = "209" // Coral - Groq brand color
)

// Common styles used across all commands.
var (
	BrandStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrand))
	AnthropicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAnthropic))
	GroqStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGroq))

	PrimaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimary))
	SecondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondary))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle      = MutedStyle.Italic(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))

	AccentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	BoldStyle        = lipgloss.NewStyle().Bold(true)
	BoldPrimaryStyle = PrimaryStyle.Bold(true)

	// SectionStyle frames one block of model output.
	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorMuted)).
			Padding(0, 1)
)

// StatusIcon returns the appropriate icon for a status.
func StatusIcon(success bool) string {
	if success {
		return SuccessStyle.Render("✓")
	}
	return ErrorStyle.Render("✗")
}

// Bullet returns a muted bullet point.
func Bullet() string {
	return MutedStyle.Render("·")
}

// Arrow returns a muted arrow.
func Arrow() string {
	return MutedStyle.Render("→")
}

// Badge renders a source badge for config values.
func Badge(source string) string {
	return MutedStyle.Render("[" + source + "]")
}

// SourceBadge returns a badge only for values that came from the environment.
// The source is passed as a string to keep this package free of persistence imports.
func SourceBadge(sourceString string) string {
	if sourceString == "env" {
		return Badge("env")
	}
	return ""
}

// ProviderStyle returns the brand style for a completion provider.
func ProviderStyle(provider string) lipgloss.Style {
	switch provider {
	case "anthropic":
		return AnthropicStyle
	case "groq":
		return GroqStyle
	default:
		return AccentStyle
	}
}

// Header renders the standard branding header.
// Format: "advisor v0.1.0 commandname"
func Header(version, commandName string) string {
	return BrandStyle.Render("advisor") + " " + BrandStyle.Render("v"+version) + " " + PrimaryStyle.Render(commandName)
}

// ExitSuccess returns a success exit message with green checkmark.
func ExitSuccess(message string) string {
	return SuccessStyle.Render("✓") + " " + message
}

// ExitError returns an error exit message with red X.
func ExitError(message string) string {
	return ErrorStyle.Render("✗") + " " + message
}
