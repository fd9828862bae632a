package telemetry

import (
	"errors"
	"fmt"
)

var (
	// ErrNoUsableCells is returned when a radio response could not be
	// mapped to at least one cell measurement with usable signal data.
	ErrNoUsableCells = errors.New("no usable cell measurements in response")

	// ErrNoService is returned when the modem reports no serving system
	// (+QCSQ "NOSERVICE" or a servingcell response in SEARCH state with
	// no technology line).
	ErrNoService = errors.New("modem reports no service")
)

// CommandError reports a response that terminated with ERROR (or an
// extended +CME/+CMS error). No data is extracted; the partial text that
// preceded the marker is attached for diagnostics.
type CommandError struct {
	Command string
	Status  string // the final marker line, e.g. "ERROR" or "+CME ERROR: 10"
	Raw     string // response text preceding the marker
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Command, e.Status)
}

// UnknownFormatError reports a response matching no dispatcher rule.
type UnknownFormatError struct {
	Command string
	Raw     string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unrecognized response format for command %q", e.Command)
}

// UnrecognizedRATError reports a RAT discriminator outside the supported
// set (e.g. RAT:GSM).
type UnrecognizedRATError struct {
	Value string
}

func (e *UnrecognizedRATError) Error() string {
	return fmt.Sprintf("unsupported radio access technology %q", e.Value)
}

// MalformedFieldError reports a single field whose text could not be
// parsed per its expected type and is not a recognized placeholder. It is
// non-fatal by default: the field is recorded as unavailable and the
// error joins the record's warning list.
type MalformedFieldError struct {
	Field string
	Raw   string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %s: %q", e.Field, e.Raw)
}

// AntennaMismatchError reports a declared rx diversity branch count that
// does not match the number of antenna values parsed. Non-fatal.
type AntennaMismatchError struct {
	Declared int
	Parsed   int
}

func (e *AntennaMismatchError) Error() string {
	return fmt.Sprintf("antenna branch count mismatch: declared %d, parsed %d", e.Declared, e.Parsed)
}
