package response

import "strings"

// Strategy names the parsing layer that produced a result.
type Strategy string

const (
	StrategyStrict Strategy = "strict"
	StrategyScan   Strategy = "line-scan"
	StrategyRaw    Strategy = "raw"
)

// Parse recovers the four sections from reply. It never fails: every field of
// the result is non-empty.
func Parse(reply string) Sections {
	s, _ := ParseWithStrategy(reply)
	return s
}

// ParseWithStrategy is Parse that also reports which layer succeeded.
// Layers are tried in order: headings, then line scanning, then the raw reply
// as the explanation.
func ParseWithStrategy(reply string) (Sections, Strategy) {
	text := strings.TrimSpace(reply)

	if s, ok := parseStrict(text); ok {
		return s.WithPlaceholders(), StrategyStrict
	}
	if s, ok := parseScan(text); ok {
		return s.WithPlaceholders(), StrategyScan
	}
	return Sections{Explanation: text}.WithPlaceholders(), StrategyRaw
}
