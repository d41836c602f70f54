// SPDX-License-Identifier: Apache-2.0

package slc

import "fmt"

// ValidationReason identifies which rule a rejected parameter violated.
type ValidationReason int

const (
	InvalidChannel ValidationReason = iota
	InvalidMode
	InvalidCurrent
	InvalidPolarity
	InvalidStep
	InvalidDuration
	InvalidRepeat
	InvalidCommandText
)

// ValidationError reports a parameter that failed pre-send validation.
// When one is returned, nothing has been written to the wire.
type ValidationError struct {
	Reason ValidationReason
	Field  string
	Value  int
	Limit  int // inclusive upper bound that applied, when meaningful
	msg    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.msg
}

func rangeError(reason ValidationReason, field string, value, lo, hi int) *ValidationError {
	return &ValidationError{
		Reason: reason,
		Field:  field,
		Value:  value,
		Limit:  hi,
		msg:    fmt.Sprintf("%s must be %d-%d, got %d", field, lo, hi, value),
	}
}

// CommandError reports a response the instrument answered with that was
// not the expected positive acknowledgement: a soft error, an invalid
// parameter, an unrecognized command, or a line this layer could not
// classify at all. Op is the command verb, Raw the response line as
// received (terminator stripped).
type CommandError struct {
	Op   string
	Kind ResponseKind
	Raw  string

	// WantMode is meaningful only when ModeMismatch is true: the verb
	// is mode-dependent and the soft error most likely means the
	// channel was not in this mode.
	WantMode     Mode
	ModeMismatch bool
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	switch e.Kind {
	case ResponseSoftError:
		if e.ModeMismatch {
			return fmt.Sprintf("%s rejected by controller (%q): channel likely not in %s mode", e.Op, e.Raw, e.WantMode)
		}
		return fmt.Sprintf("%s rejected by controller: %q", e.Op, e.Raw)
	case ResponseInvalidParam:
		return fmt.Sprintf("%s rejected by controller: invalid parameter: %q", e.Op, e.Raw)
	case ResponseUndefined:
		return fmt.Sprintf("%s not recognized by controller: %q", e.Op, e.Raw)
	default:
		return fmt.Sprintf("unexpected response to %s: %q", e.Op, e.Raw)
	}
}

// ParseError reports a positive response whose payload did not match
// the grammar expected for the command.
type ParseError struct {
	Op  string
	Raw string
	Msg string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s response %q: %s", e.Op, e.Raw, e.Msg)
}
