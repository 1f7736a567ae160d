package traceback

import "encoding/json"

// Default values used when no traceback pattern matches.
const (
	DefaultErrorType    = "UnknownError"
	DefaultErrorMessage = "Unknown error"
)

// Details describes the failure recovered from a traceback.
// A zero Line means the traceback did not carry a usable line number.
// In JSON a missing line or file is null.
type Details struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Line         int    `json:"line_number"`
	File         string `json:"file_name"`
}

// DetailsJSON is the wire form of Details.
type DetailsJSON struct {
	ErrorType    string  `json:"error_type"`
	ErrorMessage string  `json:"error_message"`
	Line         *int    `json:"line_number"`
	File         *string `json:"file_name"`
}

// JSON returns the wire form of d with absent values as nil.
func (d Details) JSON() DetailsJSON {
	out := DetailsJSON{ErrorType: d.ErrorType, ErrorMessage: d.ErrorMessage}
	if d.HasLine() {
		line := d.Line
		out.Line = &line
	}
	if d.HasFile() {
		file := d.File
		out.File = &file
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (d Details) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.JSON())
}

// DefaultDetails returns the record used when nothing matched.
func DefaultDetails() Details {
	return Details{
		ErrorType:    DefaultErrorType,
		ErrorMessage: DefaultErrorMessage,
	}
}

// HasLine reports whether a line number was recovered.
func (d Details) HasLine() bool {
	return d.Line > 0
}

// HasFile reports whether a file name was recovered.
func (d Details) HasFile() bool {
	return d.File != ""
}

// IsDefault reports whether no pattern matched at all.
func (d Details) IsDefault() bool {
	return d == DefaultDetails()
}
