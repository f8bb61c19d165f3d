package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code classifies a soft failure during resolution.
type Code string

const (
	// CodeNoTagData means the parser opened the item but found no tag.
	CodeNoTagData Code = "no_tag_data"
	// CodeNoProperties means the parser found no stream properties.
	CodeNoProperties Code = "no_properties"
	// CodeMalformedContainer means an unpacker failed on the path.
	CodeMalformedContainer Code = "malformed_container"
	// CodeIOFailure means a parser could not open the item.
	CodeIOFailure Code = "io_failure"
)

// IsFailure reports whether the code means something went wrong, as opposed
// to data simply being absent.
func (c Code) IsFailure() bool {
	return c == CodeMalformedContainer || c == CodeIOFailure
}

// Diagnostic is one soft failure tied to a path.
type Diagnostic struct {
	Code   Code
	Path   string
	Plugin string
	Err    error
}

// Error implements error.
func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Code, d.Path)
	if d.Plugin != "" {
		fmt.Fprintf(&b, " (%s)", d.Plugin)
	}
	if d.Err != nil {
		fmt.Fprintf(&b, ": %v", d.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}

// MarshalJSON renders Err as a message string.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	out := struct {
		Code    Code   `json:"code"`
		Path    string `json:"path"`
		Plugin  string `json:"plugin,omitempty"`
		Message string `json:"message,omitempty"`
	}{
		Code:   d.Code,
		Path:   d.Path,
		Plugin: d.Plugin,
	}
	if d.Err != nil {
		out.Message = d.Err.Error()
	}
	return json.Marshal(out)
}

// Diagnostics collects the soft failures of one resolution.
type Diagnostics []Diagnostic

// Count returns how many diagnostics carry code.
func (ds Diagnostics) Count(code Code) int {
	n := 0
	for _, d := range ds {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Failures returns the diagnostics whose code IsFailure.
func (ds Diagnostics) Failures() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Code.IsFailure() {
			out = append(out, d)
		}
	}
	return out
}

// Err joins every diagnostic into one error, or returns nil when empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// String returns one diagnostic per line.
func (ds Diagnostics) String() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
