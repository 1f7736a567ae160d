package response

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sectionRule locates one section: content starts after heading and runs to
// the first terminator match, or to the end of the text when terminator is nil.
type sectionRule struct {
	field      Field
	heading    *regexp.Regexp
	terminator *regexp.Regexp
}

// canonicalRules match the headings exactly as the prompt spells them.
var canonicalRules = []sectionRule{
	{
		field:      Explanation,
		heading:    regexp.MustCompile(`(?i)ERROR EXPLANATION:`),
		terminator: regexp.MustCompile(`(?i)SOLUTION [123]`),
	},
	{
		field:      Solution1,
		heading:    regexp.MustCompile(`(?i)SOLUTION 1 \(SIMPLE FIX\):`),
		terminator: regexp.MustCompile(`(?i)SOLUTION [23]`),
	},
	{
		field:      Solution2,
		heading:    regexp.MustCompile(`(?i)SOLUTION 2 \(TRY-EXCEPT HANDLING\):`),
		terminator: regexp.MustCompile(`(?i)SOLUTION 3`),
	},
	{
		field:   Solution3,
		heading: regexp.MustCompile(`(?i)SOLUTION 3 \(ALTERNATIVE APPROACH\):`),
	},
}

// looseRules accept the shorter "SOLUTION N:" spelling.
var looseRules = []sectionRule{
	{
		field:      Explanation,
		heading:    regexp.MustCompile(`(?i)ERROR EXPLANATION:`),
		terminator: regexp.MustCompile(`(?i)SOLUTION 1`),
	},
	{
		field:      Solution1,
		heading:    regexp.MustCompile(`(?i)SOLUTION 1:`),
		terminator: regexp.MustCompile(`(?i)SOLUTION 2`),
	},
	{
		field:      Solution2,
		heading:    regexp.MustCompile(`(?i)SOLUTION 2:`),
		terminator: regexp.MustCompile(`(?i)SOLUTION 3`),
	},
	{
		field:   Solution3,
		heading: regexp.MustCompile(`(?i)SOLUTION 3:`),
	},
}

// strictMinSections is how many sections the heading strategy must fill.
const strictMinSections = 3

// parseStrict applies the canonical headings, then fills any still-empty
// section from the loose spelling. ok is false when fewer than
// strictMinSections sections were found.
func parseStrict(text string) (Sections, bool) {
	var s Sections
	for _, r := range canonicalRules {
		s.Set(r.field, r.extract(text))
	}
	if s.filled() >= strictMinSections {
		return s, true
	}

	for _, r := range looseRules {
		if s.Get(r.field) != "" {
			continue
		}
		s.Set(r.field, r.extract(text))
	}
	return s, s.filled() >= strictMinSections
}

// extract returns the trimmed content under the first occurrence of the
// heading, or "" when the heading is absent.
func (r sectionRule) extract(text string) string {
	loc := r.heading.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[skipHeadingTail(text, loc[1]):]
	end := len(rest)
	if r.terminator != nil {
		if t := r.terminator.FindStringIndex(rest); t != nil {
			end = trimDecorationBefore(rest, t[0])
		}
	}
	return strings.TrimSpace(rest[:end])
}

// skipHeadingTail skips a closing emphasis marker glued to the heading and
// any whitespace after it.
func skipHeadingTail(text string, i int) int {
	if strings.HasPrefix(text[i:], "**") || strings.HasPrefix(text[i:], "__") {
		i += 2
	}
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// trimDecorationBefore walks back from end over decoration that shares a line
// with the next heading, such as "🔧 **" or "### ". It never crosses a newline.
func trimDecorationBefore(text string, end int) int {
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:end])
		if r == '\n' || !isDecoration(r) {
			break
		}
		end -= size
	}
	return end
}

func isDecoration(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '*', '#', '_', '>', '-', '\u200d':
		return true
	}
	return unicode.IsSymbol(r) || unicode.Is(unicode.Mn, r)
}
