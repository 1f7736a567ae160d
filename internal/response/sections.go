// Package response recovers the four labeled sections from a model reply.
package response

import (
	"strings"
	"unicode/utf8"
)

// Placeholders substituted for sections that could not be recovered.
const (
	PlaceholderExplanation = "No explanation provided"
	PlaceholderSolution1   = "No simple fix provided"
	PlaceholderSolution2   = "No try-except solution provided"
	PlaceholderSolution3   = "No alternative approach provided"
)

// Field identifies one of the four sections.
type Field int

const (
	Explanation Field = iota
	Solution1
	Solution2
	Solution3
)

// Fields lists all sections in display order.
var Fields = []Field{Explanation, Solution1, Solution2, Solution3}

func (f Field) String() string {
	switch f {
	case Explanation:
		return "explanation"
	case Solution1:
		return "solution1"
	case Solution2:
		return "solution2"
	case Solution3:
		return "solution3"
	default:
		return "unknown"
	}
}

// Placeholder returns the fixed text used when f is missing.
func (f Field) Placeholder() string {
	switch f {
	case Explanation:
		return PlaceholderExplanation
	case Solution1:
		return PlaceholderSolution1
	case Solution2:
		return PlaceholderSolution2
	case Solution3:
		return PlaceholderSolution3
	default:
		return ""
	}
}

// Sections holds the recovered reply. After Parse every field is non-empty.
type Sections struct {
	Explanation string `json:"explanation"`
	Solution1   string `json:"solution1"`
	Solution2   string `json:"solution2"`
	Solution3   string `json:"solution3"`
}

// Get returns the content of f.
func (s *Sections) Get(f Field) string {
	if p := s.field(f); p != nil {
		return *p
	}
	return ""
}

// Set replaces the content of f.
func (s *Sections) Set(f Field, v string) {
	if p := s.field(f); p != nil {
		*p = v
	}
}

func (s *Sections) field(f Field) *string {
	switch f {
	case Explanation:
		return &s.Explanation
	case Solution1:
		return &s.Solution1
	case Solution2:
		return &s.Solution2
	case Solution3:
		return &s.Solution3
	default:
		return nil
	}
}

// WithPlaceholders returns a copy where every empty or whitespace-only field
// is replaced by its placeholder.
func (s Sections) WithPlaceholders() Sections {
	for _, f := range Fields {
		if strings.TrimSpace(s.Get(f)) == "" {
			s.Set(f, f.Placeholder())
		}
	}
	return s
}

// filled counts fields with non-blank content.
func (s *Sections) filled() int {
	n := 0
	for _, f := range Fields {
		if strings.TrimSpace(s.Get(f)) != "" {
			n++
		}
	}
	return n
}

// substantial counts fields longer than minChars characters.
func (s *Sections) substantial(minChars int) int {
	n := 0
	for _, f := range Fields {
		if utf8.RuneCountInString(s.Get(f)) > minChars {
			n++
		}
	}
	return n
}

// FailureSections builds the record shown when the completion call fails.
// provider is the display name of the backend, such as "Groq".
func FailureSections(err error, provider string) Sections {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if provider == "" {
		provider = "provider"
	}
	return Sections{
		Explanation: "❌ API Error: " + msg,
		Solution1:   "Please check your API key and internet connection",
		Solution2:   "Ensure the " + provider + " API key is valid and has credits",
		Solution3:   "Try again later or use a different model",
	}
}
