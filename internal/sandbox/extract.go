package sandbox

import (
	"regexp"
	"strings"
)

// fencePattern matches a fenced code block. Group 1 is the info string,
// group 2 the body.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \t]*\r?\n(.*?)```")

// ExtractCode returns the body of the first python fenced block in text,
// falling back to the first unlabelled block. ok is false when text has no
// usable block.
func ExtractCode(text string) (code string, ok bool) {
	var fallback string
	found := false
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		lang := strings.ToLower(m[1])
		body := strings.TrimRight(m[2], " \t\r\n")
		switch lang {
		case "python", "py", "python3":
			return body, true
		case "":
			if !found {
				fallback, found = body, true
			}
		}
	}
	return fallback, found
}
