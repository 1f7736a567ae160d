package response

import "strings"

// scanMarkers maps marker substrings to the section they open. Entries are
// checked in order and the first hit wins.
var scanMarkers = []struct {
	field   Field
	markers []string
}{
	{field: Explanation, markers: []string{"ERROR EXPLANATION"}},
	{field: Solution1, markers: []string{"SOLUTION 1", "SIMPLE FIX"}},
	{field: Solution2, markers: []string{"SOLUTION 2", "TRY-EXCEPT"}},
	{field: Solution3, markers: []string{"SOLUTION 3", "ALTERNATIVE"}},
}

const (
	// scanMinChars is the length a section must exceed to count.
	scanMinChars = 10
	// scanMinSections is how many sections must count for success.
	scanMinSections = 2
)

// scanner is the line-scan state machine. current is the section receiving
// lines; buf holds its pending content.
type scanner struct {
	sections Sections
	current  Field
	buf      []string
}

// markerField reports which section a line opens, if any.
func markerField(line string) (Field, bool) {
	upper := strings.ToUpper(line)
	for _, m := range scanMarkers {
		for _, marker := range m.markers {
			if strings.Contains(upper, marker) {
				return m.field, true
			}
		}
	}
	return 0, false
}

// flush stores the pending buffer into the current section. An empty buffer
// leaves the section untouched.
func (s *scanner) flush() {
	if len(s.buf) == 0 {
		return
	}
	s.sections.Set(s.current, strings.TrimSpace(strings.Join(s.buf, "\n")))
	s.buf = s.buf[:0]
}

func (s *scanner) feed(line string) {
	line = strings.TrimSpace(line)
	if f, ok := markerField(line); ok {
		s.flush()
		s.current = f
		return
	}
	s.buf = append(s.buf, line)
}

// parseScan switches sections on marker lines and drops the marker lines
// themselves. Lines before the first marker belong to the explanation.
func parseScan(text string) (Sections, bool) {
	s := &scanner{current: Explanation}
	for _, line := range strings.Split(text, "\n") {
		s.feed(line)
	}
	s.flush()

	return s.sections, s.sections.substantial(scanMinChars) >= scanMinSections
}
