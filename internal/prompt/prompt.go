// Package prompt renders the instruction document sent to the model.
package prompt

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/analysis"
)

// DefaultLanguage is the fence tag used when the traceback names no file or
// an unknown extension.
const DefaultLanguage = "python"

var extensionToLanguage = map[string]string{
	".py":    "python",
	".pyw":   "python",
	".pyi":   "python",
	".ipynb": "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".rb":    "ruby",
	".go":    "go",
	".rs":    "rust",
	".java":  "java",
	".sh":    "bash",
}

// Language returns the code fence tag for a traceback file name.
func Language(file string) string {
	if lang, ok := extensionToLanguage[strings.ToLower(filepath.Ext(file))]; ok {
		return lang
	}
	return DefaultLanguage
}

// Build renders the prompt for code and errText. The output depends only on
// its inputs. code and errText are embedded verbatim; res only selects the
// fence language.
func Build(code, errText string, res analysis.Result) string {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(preamble)
	line("")
	line("CODE TO ANALYZE:")
	line("```" + Language(res.File))
	line(code)
	line("```")
	line("")
	line("ERROR MESSAGE:")
	line(errText)
	line("")
	line(formatDirective)
	line("")
	for _, s := range templateSections {
		line(s.heading)
		line(s.instruction)
		line("")
	}
	line("CRITICAL REQUIREMENTS:")
	for i, r := range Requirements {
		line(strconv.Itoa(i+1) + ". " + r)
	}
	line("")
	b.WriteString(closing)

	return b.String()
}
