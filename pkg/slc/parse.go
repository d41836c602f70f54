// SPDX-License-Identifier: Apache-2.0

package slc

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload parsers for the query commands. Each takes the payload of a
// classified data response (the text after the leading "#") and either
// returns the typed result or a *ParseError naming the command whose
// grammar was violated.

// ParseMode parses a "?MODE" payload: a single integer naming one of
// the four modes.
func ParseMode(payload string) (Mode, error) {
	token := strings.TrimSpace(payload)
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, &ParseError{Op: "?MODE", Raw: payload, Msg: "expected a single integer"}
	}
	mode := Mode(n)
	if !mode.Valid() {
		return 0, &ParseError{Op: "?MODE", Raw: payload, Msg: fmt.Sprintf("mode %d out of range", n)}
	}
	return mode, nil
}

// ParseNormalParams parses a "?CURRENT" payload. The instrument reports
// four or more whitespace-separated integers; the first two are
// calibration values and are discarded, the third and fourth are Imax
// and Iset.
func ParseNormalParams(payload string) (NormalParams, error) {
	fields := strings.Fields(payload)
	if len(fields) < 4 {
		return NormalParams{}, &ParseError{
			Op:  "?CURRENT",
			Raw: payload,
			Msg: fmt.Sprintf("expected at least 4 values, got %d", len(fields)),
		}
	}
	maxMA, err := strconv.Atoi(fields[2])
	if err != nil {
		return NormalParams{}, &ParseError{Op: "?CURRENT", Raw: payload, Msg: "max current is not an integer"}
	}
	setMA, err := strconv.Atoi(fields[3])
	if err != nil {
		return NormalParams{}, &ParseError{Op: "?CURRENT", Raw: payload, Msg: "set current is not an integer"}
	}
	return NormalParams{MaxCurrentMA: maxMA, SetCurrentMA: setMA}, nil
}

// ParseStrobeParams parses a "?STROBE" payload: two integers, Imax and
// the repeat count.
func ParseStrobeParams(payload string) (StrobeParams, error) {
	fields := strings.Fields(payload)
	if len(fields) < 2 {
		return StrobeParams{}, &ParseError{
			Op:  "?STROBE",
			Raw: payload,
			Msg: fmt.Sprintf("expected 2 values, got %d", len(fields)),
		}
	}
	maxMA, err := strconv.Atoi(fields[0])
	if err != nil {
		return StrobeParams{}, &ParseError{Op: "?STROBE", Raw: payload, Msg: "max current is not an integer"}
	}
	repeat, err := strconv.Atoi(fields[1])
	if err != nil {
		return StrobeParams{}, &ParseError{Op: "?STROBE", Raw: payload, Msg: "repeat count is not an integer"}
	}
	return StrobeParams{MaxCurrentMA: maxMA, Repeat: repeat}, nil
}

// ParseTriggerParams parses a "?TRIGGER" payload: two integers, Imax
// and the edge polarity.
func ParseTriggerParams(payload string) (TriggerParams, error) {
	fields := strings.Fields(payload)
	if len(fields) < 2 {
		return TriggerParams{}, &ParseError{
			Op:  "?TRIGGER",
			Raw: payload,
			Msg: fmt.Sprintf("expected 2 values, got %d", len(fields)),
		}
	}
	maxMA, err := strconv.Atoi(fields[0])
	if err != nil {
		return TriggerParams{}, &ParseError{Op: "?TRIGGER", Raw: payload, Msg: "max current is not an integer"}
	}
	pol, err := strconv.Atoi(fields[1])
	if err != nil {
		return TriggerParams{}, &ParseError{Op: "?TRIGGER", Raw: payload, Msg: "polarity is not an integer"}
	}
	polarity := TriggerPolarity(pol)
	if !polarity.Valid() {
		return TriggerParams{}, &ParseError{Op: "?TRIGGER", Raw: payload, Msg: fmt.Sprintf("polarity %d out of range", pol)}
	}
	return TriggerParams{MaxCurrentMA: maxMA, Polarity: polarity}, nil
}

// ParseLoadVoltage parses a "LoadVoltage" payload of the shape
// "<channel>:<value>" and returns the value in millivolts. The channel
// part before the colon is not interpreted; firmware revisions vary in
// how they render it.
func ParseLoadVoltage(payload string) (int, error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return 0, &ParseError{Op: "LoadVoltage", Raw: payload, Msg: "expected <channel>:<millivolts>"}
	}
	mv, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || mv < 0 {
		return 0, &ParseError{Op: "LoadVoltage", Raw: payload, Msg: "millivolt value is not an unsigned integer"}
	}
	return mv, nil
}
