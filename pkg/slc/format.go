// SPDX-License-Identifier: Apache-2.0

package slc

import "fmt"

// String returns the documentation name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeDisable:
		return "DISABLE"
	case ModeNormal:
		return "NORMAL"
	case ModeStrobe:
		return "STROBE"
	case ModeTrigger:
		return "TRIGGER"
	default:
		return fmt.Sprintf("MODE(%d)", int(m))
	}
}

// String returns the configuration name of the polarity.
func (p TriggerPolarity) String() string {
	switch p {
	case PolarityRising:
		return "rising"
	case PolarityFalling:
		return "falling"
	default:
		return fmt.Sprintf("polarity(%d)", int(p))
	}
}

// String returns the human-readable name of the response kind.
func (k ResponseKind) String() string {
	switch k {
	case ResponseAck:
		return "ACK"
	case ResponseAckData:
		return "DATA"
	case ResponseSoftError:
		return "SOFT_ERROR"
	case ResponseInvalidParam:
		return "INVALID_PARAM"
	case ResponseUndefined:
		return "UNDEFINED"
	case ResponseMalformed:
		return "MALFORMED"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Resolution is the current resolution of the connected module family:
// wire values are whole milliamps on most SLC-SA units and tenths of a
// milliamp on the high-resolution variants. The resolution is a
// property of the unit, supplied by the caller; this layer never
// negotiates it and never scales wire values.
type Resolution int

const (
	ResolutionMilliamp Resolution = iota
	ResolutionTenthMilliamp
)

// FormatCurrent renders a wire current value as a milliamp string under
// the given resolution.
func FormatCurrent(units int, res Resolution) string {
	if res == ResolutionTenthMilliamp {
		return fmt.Sprintf("%d.%d mA", units/10, units%10)
	}
	return fmt.Sprintf("%d mA", units)
}
