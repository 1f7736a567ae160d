// Package output renders parsed sections and analysis reports.
package output

import (
	"strings"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
)

// Decorated labels, in display order.
const (
	LabelExplanation = "🐛 **ERROR EXPLANATION:**"
	LabelSolution1   = "🔧 **SOLUTION 1 (SIMPLE FIX):**"
	LabelSolution2   = "🛡️ **SOLUTION 2 (TRY-EXCEPT HANDLING):**"
	LabelSolution3   = "💡 **SOLUTION 3 (ALTERNATIVE APPROACH):**"
)

// Label returns the decorated heading for f.
func Label(f response.Field) string {
	switch f {
	case response.Explanation:
		return LabelExplanation
	case response.Solution1:
		return LabelSolution1
	case response.Solution2:
		return LabelSolution2
	case response.Solution3:
		return LabelSolution3
	default:
		return ""
	}
}

// Render formats s as the four labeled blocks. Blank fields are replaced by
// their placeholders. The result starts and ends with a newline.
func Render(s response.Sections) string {
	s = s.WithPlaceholders()

	var b strings.Builder
	b.WriteByte('\n')
	for i, f := range response.Fields {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Label(f))
		b.WriteByte('\n')
		b.WriteString(s.Get(f))
	}
	b.WriteByte('\n')
	return b.String()
}
