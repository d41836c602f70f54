// SPDX-License-Identifier: Apache-2.0

package triggerprog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// Driver is the subset of the controller the programmer needs.
// *mightex.Controller satisfies it.
type Driver interface {
	SetTriggerFollower(channel, maxMA, setMA int, polarity slc.TriggerPolarity) error
	GetMode(channel int) (slc.Mode, error)
	GetTriggerParams(channel int) (slc.TriggerParams, error)
	GetTriggerProfile(channel int) (string, error)
}

// ChannelResult is the outcome of programming or verifying one channel.
type ChannelResult struct {
	Config  ChannelConfig
	OK      bool
	Message string
}

// Report aggregates per-channel program or verify results.
type Report struct {
	Results []ChannelResult
}

// AllOK reports whether every channel succeeded. An empty report is OK.
func (r Report) AllOK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// Summary renders the report as "k/n channels OK" or
// "k/n channels FAILED".
func (r Report) Summary() string {
	passed := 0
	for _, res := range r.Results {
		if res.OK {
			passed++
		}
	}
	verdict := "OK"
	if !r.AllOK() {
		verdict = "FAILED"
	}
	return fmt.Sprintf("%d/%d channels %s", passed, len(r.Results), verdict)
}

// ProgramChannel puts one channel into trigger-follower mode per its
// configuration. Failures are captured in the result rather than
// returned, so batch runs continue past a bad channel.
func ProgramChannel(d Driver, ch ChannelConfig) ChannelResult {
	err := d.SetTriggerFollower(ch.Channel, ch.MaxCurrentMA, ch.CurrentMA, ch.Polarity)
	if err != nil {
		return ChannelResult{
			Config:  ch,
			Message: fmt.Sprintf("%s FAILED: %v", ch.Label(), err),
		}
	}
	return ChannelResult{
		Config:  ch,
		OK:      true,
		Message: fmt.Sprintf("%s: TRIGGER follower, %d mA", ch.Label(), ch.CurrentMA),
	}
}

// VerifyChannel reads a channel's state back and compares it with the
// expected configuration: the mode must be TRIGGER, the programmed
// limit and polarity must match, and the trigger profile dump must
// contain the working current. Firmware revisions disagree on the
// profile dump layout, so that last check is by containment rather
// than position.
func VerifyChannel(d Driver, ch ChannelConfig) ChannelResult {
	faults := verifyFaults(d, ch)
	if len(faults) > 0 {
		return ChannelResult{
			Config:  ch,
			Message: fmt.Sprintf("%s VERIFY FAILED: %s", ch.Label(), strings.Join(faults, "; ")),
		}
	}
	return ChannelResult{
		Config:  ch,
		OK:      true,
		Message: fmt.Sprintf("%s verified OK", ch.Label()),
	}
}

// verifyFaults collects mismatches between the channel's live state and
// its configuration. A failed query ends the checks; configuration
// mismatches do not.
func verifyFaults(d Driver, ch ChannelConfig) []string {
	var faults []string

	mode, err := d.GetMode(ch.Channel)
	if err != nil {
		return append(faults, fmt.Sprintf("query failed: %v", err))
	}
	if mode != slc.ModeTrigger {
		faults = append(faults, fmt.Sprintf("mode is %s, expected TRIGGER", mode))
	}

	params, err := d.GetTriggerParams(ch.Channel)
	if err != nil {
		return append(faults, fmt.Sprintf("query failed: %v", err))
	}
	if params.MaxCurrentMA != ch.MaxCurrentMA {
		faults = append(faults, fmt.Sprintf("Imax is %d mA, expected %d mA",
			params.MaxCurrentMA, ch.MaxCurrentMA))
	}
	if params.Polarity != ch.Polarity {
		faults = append(faults, fmt.Sprintf("polarity is %s, expected %s",
			params.Polarity, ch.Polarity))
	}

	profile, err := d.GetTriggerProfile(ch.Channel)
	if err != nil {
		return append(faults, fmt.Sprintf("query failed: %v", err))
	}
	if !strings.Contains(profile, strconv.Itoa(ch.CurrentMA)) {
		faults = append(faults, fmt.Sprintf("trigger profile missing expected current (%d mA): %q",
			ch.CurrentMA, profile))
	}
	return faults
}

// ProgramAll programs every configured channel in order.
func ProgramAll(d Driver, cfg Config) Report {
	var report Report
	for _, ch := range cfg.Channels {
		report.Results = append(report.Results, ProgramChannel(d, ch))
	}
	return report
}

// VerifyAll verifies every configured channel in order.
func VerifyAll(d Driver, cfg Config) Report {
	var report Report
	for _, ch := range cfg.Channels {
		report.Results = append(report.Results, VerifyChannel(d, ch))
	}
	return report
}
