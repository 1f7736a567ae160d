package analysis

import "regexp"

// Structure lists the declarations found in Python source and whether the
// source passed a lexical syntax check. Error is nil when SyntaxValid is set.
type Structure struct {
	Functions   []string `json:"functions"`
	Classes     []string `json:"classes"`
	SyntaxValid bool     `json:"syntax_valid"`
	Error       *string  `json:"error"`
}

var (
	// functionPattern matches function and method definitions at any depth.
	// Example: "    async def fetch(url):"
	// Group 1: function name
	functionPattern = regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)[ \t]*\(`)

	// classPattern matches class definitions at any depth.
	// Example: "class Order(Base):"
	// Group 1: class name
	classPattern = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+([A-Za-z_]\w*)[ \t]*[(:]`)
)

// ScanStructure returns function and class names in order of appearance.
// It works line by line and does not require the code to be valid.
func ScanStructure(code string) Structure {
	s := Structure{Functions: []string{}, Classes: []string{}, SyntaxValid: true}
	if err := checkSyntax(code); err != nil {
		msg := err.Error()
		s.SyntaxValid = false
		s.Error = &msg
	}
	for _, m := range functionPattern.FindAllStringSubmatch(code, -1) {
		s.Functions = append(s.Functions, m[1])
	}
	for _, m := range classPattern.FindAllStringSubmatch(code, -1) {
		s.Classes = append(s.Classes, m[1])
	}
	return s
}
