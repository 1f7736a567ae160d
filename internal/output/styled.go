package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/tui"
)

var styledTitles = map[response.Field]struct {
	icon  string
	title string
	style lipgloss.Style
}{
	response.Explanation: {icon: "🐛", title: "Error explanation", style: tui.ErrorStyle},
	response.Solution1:   {icon: "🔧", title: "Solution 1 · Simple fix", style: tui.BrandStyle},
	response.Solution2:   {icon: "🛡️", title: "Solution 2 · Try-except handling", style: tui.WarningStyle},
	response.Solution3:   {icon: "💡", title: "Solution 3 · Alternative approach", style: tui.AccentStyle},
}

// RenderStyled formats s for a terminal using lipgloss. width bounds each
// block; values below 20 disable wrapping.
func RenderStyled(s response.Sections, width int) string {
	s = s.WithPlaceholders()

	body := tui.SectionStyle
	if width >= 20 {
		body = body.Width(width - 2)
	}

	blocks := make([]string, 0, len(response.Fields))
	for _, f := range response.Fields {
		t := styledTitles[f]
		title := t.style.Bold(true).Render(t.icon + " " + t.title)
		content := s.Get(f)
		if isPlaceholder(f, content) {
			content = tui.HintStyle.Render(content)
		} else {
			content = tui.PrimaryStyle.Render(content)
		}
		blocks = append(blocks, title+"\n"+body.Render(content))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func isPlaceholder(f response.Field, content string) bool {
	return content == f.Placeholder()
}
