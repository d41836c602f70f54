// SPDX-License-Identifier: Apache-2.0

package slc

import "fmt"

// Validation runs locally, before any command is encoded: every
// out-of-range parameter is caught here and never reaches the wire.
// The checks behave identically against real hardware and test doubles
// because they never touch a transport.

// ValidateChannel checks that channel is within the instrument's range.
func ValidateChannel(channel int) error {
	if channel < MinChannel || channel > MaxChannel {
		return rangeError(InvalidChannel, "channel", channel, MinChannel, MaxChannel)
	}
	return nil
}

// ValidateMode checks that mode is one of the four defined modes.
func ValidateMode(mode Mode) error {
	if !mode.Valid() {
		return rangeError(InvalidMode, "mode", int(mode), int(ModeDisable), int(ModeTrigger))
	}
	return nil
}

// ValidatePolarity checks that polarity is a defined trigger edge.
func ValidatePolarity(polarity TriggerPolarity) error {
	if !polarity.Valid() {
		return rangeError(InvalidPolarity, "polarity", int(polarity), int(PolarityRising), int(PolarityFalling))
	}
	return nil
}

// ValidateStep checks a profile step index.
func ValidateStep(step int) error {
	if step < 0 || step > MaxStep {
		return rangeError(InvalidStep, "step", step, 0, MaxStep)
	}
	return nil
}

// ValidateDuration checks a profile step duration in microseconds.
func ValidateDuration(durationUS int) error {
	if durationUS < 0 || durationUS > MaxDurationUS {
		return rangeError(InvalidDuration, "duration", durationUS, 0, MaxDurationUS)
	}
	return nil
}

// ValidateRepeat checks a strobe repeat count (0 means continuous).
func ValidateRepeat(repeat int) error {
	if repeat < 0 {
		return &ValidationError{
			Reason: InvalidRepeat,
			Field:  "repeat",
			Value:  repeat,
			msg:    fmt.Sprintf("repeat must be >= 0, got %d", repeat),
		}
	}
	return nil
}

// ValidateCurrent checks that a current value is within 0..limitMA,
// where limitMA is the ceiling of the mode the value is destined for
// (MaxCurrentNormalMA or MaxCurrentPulsedMA). The field name is used
// in the error message.
func ValidateCurrent(currentMA, limitMA int, field string) error {
	if currentMA < 0 || currentMA > limitMA {
		e := rangeError(InvalidCurrent, field, currentMA, 0, limitMA)
		e.msg = fmt.Sprintf("%s must be 0-%d mA, got %d", field, limitMA, currentMA)
		return e
	}
	return nil
}

// ValidateCurrentPair checks a (max, set) current pair against limitMA:
// both values must be within 0..limitMA and set must not exceed max.
func ValidateCurrentPair(maxMA, setMA, limitMA int) error {
	if err := ValidateCurrent(maxMA, limitMA, "max_current"); err != nil {
		return err
	}
	if err := ValidateCurrent(setMA, limitMA, "set_current"); err != nil {
		return err
	}
	if setMA > maxMA {
		return &ValidationError{
			Reason: InvalidCurrent,
			Field:  "set_current",
			Value:  setMA,
			Limit:  maxMA,
			msg:    fmt.Sprintf("set_current (%d mA) cannot exceed max_current (%d mA)", setMA, maxMA),
		}
	}
	return nil
}
