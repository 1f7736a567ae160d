package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// headerPattern matches statements that must end their header with a colon.
var headerPattern = regexp.MustCompile(`^(?:async\s+)?(?:def|class|if|elif|else|for|while|try|except|finally|with)\b`)

var openerFor = map[rune]rune{')': '(', ']': '[', '}': '{'}

type opener struct {
	r    rune
	line int
}

// syntaxError is a problem Python's parser would reject.
type syntaxError struct {
	msg  string
	line int
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (<unknown>, line %d)", e.msg, e.line)
}

// checkSyntax looks for unbalanced brackets, unterminated string literals
// and compound statement headers without a colon. It is a lexical check:
// code it accepts may still fail to parse.
func checkSyntax(code string) *syntaxError {
	runes := []rune(code)
	line, logicalStart := 1, 1
	var stack []opener
	var logical strings.Builder

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '#':
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}

		case c == '\'' || c == '"':
			start := line
			triple := i+2 < len(runes) && runes[i+1] == c && runes[i+2] == c
			if triple {
				i += 2
			}
			end, lines, closed := scanString(runes, i+1, c, triple)
			if !closed {
				if triple {
					return &syntaxError{msg: "unterminated triple-quoted string literal", line: start}
				}
				return &syntaxError{msg: "unterminated string literal", line: start}
			}
			i = end
			line += lines
			logical.WriteString(`""`)

		case c == '(' || c == '[' || c == '{':
			stack = append(stack, opener{r: c, line: line})
			logical.WriteRune(c)

		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 {
				return &syntaxError{msg: fmt.Sprintf("unmatched '%c'", c), line: line}
			}
			top := stack[len(stack)-1]
			if top.r != openerFor[c] {
				return &syntaxError{
					msg:  fmt.Sprintf("closing parenthesis '%c' does not match opening parenthesis '%c'", c, top.r),
					line: line,
				}
			}
			stack = stack[:len(stack)-1]
			logical.WriteRune(c)

		case c == '\\' && i+1 < len(runes) && runes[i+1] == '\n':
			i++
			line++
			logical.WriteByte(' ')

		case c == '\n':
			if len(stack) == 0 {
				if err := checkHeader(logical.String(), logicalStart); err != nil {
					return err
				}
				logical.Reset()
				logicalStart = line + 1
			} else {
				logical.WriteByte(' ')
			}
			line++

		default:
			logical.WriteRune(c)
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &syntaxError{msg: fmt.Sprintf("'%c' was never closed", top.r), line: top.line}
	}
	return checkHeader(logical.String(), logicalStart)
}

// scanString reads a string body starting at runes[from]. It returns the
// index of the last closing quote and the number of newlines consumed.
func scanString(runes []rune, from int, quote rune, triple bool) (end, lines int, closed bool) {
	for i := from; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				lines++
			}
			i++
		case r == '\n':
			if !triple {
				return i, lines, false
			}
			lines++
		case r == quote:
			if !triple {
				return i, lines, true
			}
			if i+2 < len(runes) && runes[i+1] == quote && runes[i+2] == quote {
				return i + 2, lines, true
			}
		}
	}
	return len(runes), lines, false
}

// checkHeader reports a compound statement header with no colon outside
// brackets. Strings have already been replaced by empty literals.
func checkHeader(logical string, line int) *syntaxError {
	stmt := strings.TrimSpace(logical)
	if !headerPattern.MatchString(stmt) {
		return nil
	}
	depth := 0
	for _, r := range stmt {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return nil
			}
		}
	}
	return &syntaxError{msg: "expected ':'", line: line}
}
