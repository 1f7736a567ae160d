package traceback

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxMessageLength caps recovered exception messages.
const maxMessageLength = 2000

// Traceback patterns, tried in order. Only the first pattern that matches
// anywhere in the traceback is applied.
var (
	// framePattern matches a frame line directly followed by the exception line.
	// Example:
	//	File "a.py", line 3
	//	ZeroDivisionError: division by zero
	// Group 1: file path
	// Group 2: line number
	// Group 3: exception type
	// Group 4: exception message
	framePattern = regexp.MustCompile(`File "([^"]+)", line (\d+).*\n.*?\b(\w+): (.+)`)

	// errorSuffixPattern matches any identifier ending in "Error".
	// Example: "requests.exceptions.JSONDecodeError: Expecting value"
	// Group 1: exception type
	// Group 2: exception message
	errorSuffixPattern = regexp.MustCompile(`(\w+Error): (.+)`)

	// genericPattern matches any "word: text" pair.
	// Example: "KeyboardInterrupt: interrupted"
	// Group 1: identifier
	// Group 2: message
	genericPattern = regexp.MustCompile(`(\w+): (.+)`)
)

// matcher is one entry of the ordered pattern table. arity is the number of
// capture groups the pattern yields and selects which fields it fills.
type matcher struct {
	name    string
	pattern *regexp.Regexp
	arity   int
}

var matchers = []matcher{
	{name: "frame", pattern: framePattern, arity: 4},
	{name: "error-suffix", pattern: errorSuffixPattern, arity: 2},
	{name: "generic", pattern: genericPattern, arity: 2},
}

// apply maps the capture groups (without the full match) onto a Details.
func (m matcher) apply(groups []string) Details {
	d := DefaultDetails()
	if len(groups) != m.arity {
		return d
	}

	switch m.arity {
	case 4:
		d.File = groups[0]
		if line, err := strconv.Atoi(groups[1]); err == nil {
			d.Line = line
		}
		d.ErrorType = groups[2]
		d.ErrorMessage = cleanMessage(groups[3])
	case 2:
		d.ErrorType = groups[0]
		d.ErrorMessage = cleanMessage(groups[1])
	}
	return d
}

func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return DefaultErrorMessage
	}
	return TruncateMessage(msg)
}

// TruncateMessage truncates msg to maxMessageLength bytes without splitting
// a multi-byte character.
func TruncateMessage(msg string) string {
	if len(msg) <= maxMessageLength {
		return msg
	}

	truncated := msg[:maxMessageLength]
	for truncated != "" && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
