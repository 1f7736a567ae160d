package output

import (
	"encoding/json"
	"io"
)

// FormatJSON writes report as indented JSON.
// Returns error if JSON marshaling or writing fails.
func FormatJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// FormatJSONList writes several reports as one indented JSON array.
func FormatJSONList(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}
