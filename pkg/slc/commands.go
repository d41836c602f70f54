// SPDX-License-Identifier: Apache-2.0

package slc

import (
	"fmt"
	"strings"
)

// Command is one validated, encoded SLC command ready for transmission.
// The zero value is not valid; use the New*Command constructors, which
// validate their parameters before encoding. Encoding itself is total:
// once parameters pass validation there is no failure mode left.
type Command struct {
	verb string
	line string
}

// Verb returns the command verb, e.g. "MODE" or "?CURRENT". Used to
// annotate errors and log events.
func (c Command) Verb() string { return c.verb }

// Line returns the command line without the terminator, e.g. "MODE 1 2".
func (c Command) Line() string { return c.line }

// Bytes returns the framed wire bytes: the command line followed by the
// two-byte LF CR terminator.
func (c Command) Bytes() []byte {
	return []byte(c.line + CommandTerminator)
}

func (c Command) String() string { return c.line }

// NewEchoOffCommand disables command echo. Recommended as the first
// command of a session; the instrument does not reliably acknowledge it.
func NewEchoOffCommand() Command {
	return Command{verb: "ECHOOFF", line: "ECHOOFF"}
}

// NewEchoOnCommand re-enables command echo (interactive terminal use).
func NewEchoOnCommand() Command {
	return Command{verb: "ECHOON", line: "ECHOON"}
}

// NewDeviceInfoCommand queries the free-text identity line.
func NewDeviceInfoCommand() Command {
	return Command{verb: "DEVICEINFO", line: "DEVICEINFO"}
}

// NewStoreCommand saves the current settings to non-volatile memory.
func NewStoreCommand() Command {
	return Command{verb: "STORE", line: "STORE"}
}

// NewResetCommand performs a soft reset of the instrument.
func NewResetCommand() Command {
	return Command{verb: "RESET", line: "RESET"}
}

// NewRestoreDefaultsCommand restores factory defaults.
func NewRestoreDefaultsCommand() Command {
	return Command{verb: "RESTOREDEF", line: "RESTOREDEF"}
}

// NewModeQuery queries the operating mode of a channel.
func NewModeQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?MODE", line: fmt.Sprintf("?MODE %d", channel)}, nil
}

// NewModeCommand sets the operating mode of a channel.
func NewModeCommand(channel int, mode Mode) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	if err := ValidateMode(mode); err != nil {
		return Command{}, err
	}
	return Command{verb: "MODE", line: fmt.Sprintf("MODE %d %d", channel, int(mode))}, nil
}

// NewNormalCommand sets the NORMAL-mode current pair for a channel.
// Both currents are capped at MaxCurrentNormalMA and setMA must not
// exceed maxMA.
func NewNormalCommand(channel, maxMA, setMA int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	if err := ValidateCurrentPair(maxMA, setMA, MaxCurrentNormalMA); err != nil {
		return Command{}, err
	}
	return Command{verb: "NORMAL", line: fmt.Sprintf("NORMAL %d %d %d", channel, maxMA, setMA)}, nil
}

// NewCurrentCommand quick-sets the working current of a channel already
// in NORMAL mode.
func NewCurrentCommand(channel, setMA int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	if err := ValidateCurrent(setMA, MaxCurrentNormalMA, "current"); err != nil {
		return Command{}, err
	}
	return Command{verb: "CURRENT", line: fmt.Sprintf("CURRENT %d %d", channel, setMA)}, nil
}

// NewCurrentQuery queries the NORMAL-mode current pair of a channel.
func NewCurrentQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?CURRENT", line: fmt.Sprintf("?CURRENT %d", channel)}, nil
}

// NewStrobeCommand sets the STROBE-mode parameters for a channel.
// repeat 0 means the strobe sequence repeats continuously.
func NewStrobeCommand(channel, maxMA, repeat int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	if err := ValidateCurrent(maxMA, MaxCurrentPulsedMA, "max_current"); err != nil {
		return Command{}, err
	}
	if err := ValidateRepeat(repeat); err != nil {
		return Command{}, err
	}
	return Command{verb: "STROBE", line: fmt.Sprintf("STROBE %d %d %d", channel, maxMA, repeat)}, nil
}

// NewStrobeQuery queries the STROBE-mode parameters of a channel.
func NewStrobeQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?STROBE", line: fmt.Sprintf("?STROBE %d", channel)}, nil
}

// NewStrobeStepCommand sets one step of a channel's strobe profile.
// A step with current 0 and duration 0 terminates the profile.
func NewStrobeStepCommand(channel, step, setMA, durationUS int) (Command, error) {
	if err := validateProfileStep(channel, step, setMA, durationUS); err != nil {
		return Command{}, err
	}
	return Command{verb: "STRP", line: fmt.Sprintf("STRP %d %d %d %d", channel, step, setMA, durationUS)}, nil
}

// NewStrobeProfileQuery queries a channel's strobe profile dump.
func NewStrobeProfileQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?STRP", line: fmt.Sprintf("?STRP %d", channel)}, nil
}

// NewTriggerCommand sets the TRIGGER-mode parameters for a channel.
func NewTriggerCommand(channel, maxMA int, polarity TriggerPolarity) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	if err := ValidateCurrent(maxMA, MaxCurrentPulsedMA, "max_current"); err != nil {
		return Command{}, err
	}
	if err := ValidatePolarity(polarity); err != nil {
		return Command{}, err
	}
	return Command{verb: "TRIGGER", line: fmt.Sprintf("TRIGGER %d %d %d", channel, maxMA, int(polarity))}, nil
}

// NewTriggerQuery queries the TRIGGER-mode parameters of a channel.
func NewTriggerQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?TRIGGER", line: fmt.Sprintf("?TRIGGER %d", channel)}, nil
}

// NewTriggerStepCommand sets one step of a channel's trigger profile.
// The terminator convention matches strobe steps; a duration of
// FollowerDurationUS makes the output follow the trigger input level.
func NewTriggerStepCommand(channel, step, setMA, durationUS int) (Command, error) {
	if err := validateProfileStep(channel, step, setMA, durationUS); err != nil {
		return Command{}, err
	}
	return Command{verb: "TRIGP", line: fmt.Sprintf("TRIGP %d %d %d %d", channel, step, setMA, durationUS)}, nil
}

// NewTriggerProfileQuery queries a channel's trigger profile dump.
func NewTriggerProfileQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "?TRIGP", line: fmt.Sprintf("?TRIGP %d", channel)}, nil
}

// NewLoadVoltageQuery queries the LED load voltage of a channel in
// millivolts. Unlike the other queries this verb carries no "?" prefix.
func NewLoadVoltageQuery(channel int) (Command, error) {
	if err := ValidateChannel(channel); err != nil {
		return Command{}, err
	}
	return Command{verb: "LoadVoltage", line: fmt.Sprintf("LoadVoltage %d", channel)}, nil
}

// NewRawCommand wraps an arbitrary command line for transmission, for
// bring-up and debugging. The line must be non-empty and must not
// contain framing bytes of its own.
func NewRawCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, &ValidationError{
			Reason: InvalidCommandText,
			Field:  "command",
			msg:    "command line is empty",
		}
	}
	if strings.ContainsAny(trimmed, "\n\r") {
		return Command{}, &ValidationError{
			Reason: InvalidCommandText,
			Field:  "command",
			msg:    "command line must not contain line terminators",
		}
	}
	verb := trimmed
	if i := strings.IndexByte(trimmed, ' '); i > 0 {
		verb = trimmed[:i]
	}
	return Command{verb: verb, line: trimmed}, nil
}

func validateProfileStep(channel, step, setMA, durationUS int) error {
	if err := ValidateChannel(channel); err != nil {
		return err
	}
	if err := ValidateStep(step); err != nil {
		return err
	}
	if err := ValidateCurrent(setMA, MaxCurrentPulsedMA, "current"); err != nil {
		return err
	}
	return ValidateDuration(durationUS)
}
