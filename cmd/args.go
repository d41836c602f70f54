// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// parseChannelArg parses a channel number argument.
func parseChannelArg(arg string) (int, error) {
	ch, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q: expected a number", arg)
	}
	if ch < slc.MinChannel || ch > slc.MaxChannel {
		return 0, fmt.Errorf("channel %d out of range (%d-%d)", ch, slc.MinChannel, slc.MaxChannel)
	}
	return ch, nil
}

// parseIntArg parses a non-negative integer argument, naming it in the
// error.
func parseIntArg(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a number", name, arg)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %d: must not be negative", name, n)
	}
	return n, nil
}

// parseModeArg parses a mode given by documentation name or numeric
// value (0-3).
func parseModeArg(arg string) (slc.Mode, error) {
	switch strings.ToUpper(arg) {
	case "DISABLE", "OFF":
		return slc.ModeDisable, nil
	case "NORMAL":
		return slc.ModeNormal, nil
	case "STROBE":
		return slc.ModeStrobe, nil
	case "TRIGGER":
		return slc.ModeTrigger, nil
	}
	n, err := strconv.Atoi(arg)
	if err == nil {
		mode := slc.Mode(n)
		if mode.Valid() {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q: expected disable, normal, strobe, trigger or 0-3", arg)
}

// parsePolarityArg parses a trigger polarity name.
func parsePolarityArg(arg string) (slc.TriggerPolarity, error) {
	switch strings.ToLower(arg) {
	case "rising":
		return slc.PolarityRising, nil
	case "falling":
		return slc.PolarityFalling, nil
	}
	return 0, fmt.Errorf("invalid polarity %q: expected rising or falling", arg)
}

// parseStepArg parses one profile step written as "CURRENT:DURATION"
// (milliamps and microseconds).
func parseStepArg(arg string) (slc.ProfileStep, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return slc.ProfileStep{}, fmt.Errorf("invalid step %q: expected CURRENT:DURATION", arg)
	}
	currentMA, err := parseIntArg("step current", parts[0])
	if err != nil {
		return slc.ProfileStep{}, err
	}
	durationUS, err := parseIntArg("step duration", parts[1])
	if err != nil {
		return slc.ProfileStep{}, err
	}
	return slc.ProfileStep{CurrentMA: currentMA, DurationUS: durationUS}, nil
}
