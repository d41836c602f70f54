// SPDX-License-Identifier: Apache-2.0

// Package slc implements the line-oriented ASCII protocol spoken by
// Mightex SLC LED drivers (SLC-SA04 and compatible multi-channel
// controllers) over an RS232 link.
//
// The package is pure wire logic: parameter validation against the
// mode-dependent limits, command line construction, response
// classification, and typed payload parsing. It performs no I/O;
// transports and the controller facade live in pkg/mightex.
package slc

// Channel and parameter limits for the SLC-SA04 family.
const (
	MinChannel = 1
	MaxChannel = 4

	MaxStep       = 127
	MaxDurationUS = 99_999_999

	// Current ceilings in mA. NORMAL mode is continuous and capped at
	// 1000 mA; STROBE and TRIGGER modes are pulsed and allow up to 3500 mA.
	MaxCurrentNormalMA = 1000
	MaxCurrentPulsedMA = 3500

	// Tset value with special meaning in a trigger profile step: instead
	// of timing out after a fixed duration, the output follows the
	// external trigger input level.
	FollowerDurationUS = 9999
)

// Wire framing. Outgoing commands end with LF CR (0x0A 0x0D); device
// responses end with CR.
const (
	CommandTerminator  = "\n\r"
	ResponseTerminator = '\r'
)

// Response markers (see Classify).
const (
	markerAck          = "##"
	markerSoftError    = "#!"
	markerInvalidParam = "#?"
	undefinedPhrase    = "is not defined"
)

// Mode represents the operating mode of one LED channel.
type Mode int

// Channel operating modes as transmitted on the wire.
const (
	ModeDisable Mode = 0
	ModeNormal  Mode = 1
	ModeStrobe  Mode = 2
	ModeTrigger Mode = 3
)

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	return m >= ModeDisable && m <= ModeTrigger
}

// TriggerPolarity selects which edge of the external trigger input
// fires a TRIGGER-mode channel.
type TriggerPolarity int

// Trigger edge polarities as transmitted on the wire.
const (
	PolarityRising  TriggerPolarity = 0
	PolarityFalling TriggerPolarity = 1
)

// Valid reports whether p is a defined polarity.
func (p TriggerPolarity) Valid() bool {
	return p == PolarityRising || p == PolarityFalling
}

// modeForVerb associates each mode-dependent parameter verb with the
// operating mode it belongs to. Advisory only: the instrument is the
// authority on whether a command is accepted. The table exists so that
// a soft error on one of these verbs can be reported as a likely mode
// mismatch instead of a generic failure.
var modeForVerb = map[string]Mode{
	"NORMAL":  ModeNormal,
	"CURRENT": ModeNormal,
	"STROBE":  ModeStrobe,
	"STRP":    ModeStrobe,
	"TRIGGER": ModeTrigger,
	"TRIGP":   ModeTrigger,
}

// ModeFor returns the operating mode the parameter verb belongs to,
// and whether the verb is mode-dependent at all.
func ModeFor(verb string) (Mode, bool) {
	m, ok := modeForVerb[verb]
	return m, ok
}
