// SPDX-License-Identifier: Apache-2.0

package mightex

import (
	"errors"
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// ChannelStatus aggregates one channel's mode, programmed current
// pair, and measured head voltage. HasVoltage is false when the
// firmware refused the voltage query, which it does on channels whose
// mode is not driving the output.
type ChannelStatus struct {
	Channel       int
	Mode          slc.Mode
	Params        slc.NormalParams
	LoadVoltageMV int
	HasVoltage    bool
}

// EnableChannel programs a channel for continuous output at setMA and
// switches it to NORMAL mode, leaving the current limit at the NORMAL
// ceiling. The two commands are not atomic: an error names the
// sub-command that failed, and the channel may be left with new
// current parameters but its old mode.
func (c *Controller) EnableChannel(channel, setMA int) error {
	return c.enable(channel, slc.MaxCurrentNormalMA, setMA)
}

// EnableChannelWithLimit is EnableChannel with an explicit current
// limit.
func (c *Controller) EnableChannelWithLimit(channel, maxMA, setMA int) error {
	return c.enable(channel, maxMA, setMA)
}

func (c *Controller) enable(channel, maxMA, setMA int) error {
	if err := c.SetNormalParams(channel, maxMA, setMA); err != nil {
		return fmt.Errorf("enable channel %d: %w", channel, err)
	}
	if err := c.SetMode(channel, slc.ModeNormal); err != nil {
		return fmt.Errorf("enable channel %d: %w", channel, err)
	}
	return nil
}

// DisableChannel switches a channel off by putting it in DISABLE mode.
func (c *Controller) DisableChannel(channel int) error {
	if err := c.SetMode(channel, slc.ModeDisable); err != nil {
		return fmt.Errorf("disable channel %d: %w", channel, err)
	}
	return nil
}

// SetTriggerFollower programs a channel to follow its external trigger
// input: output at setMA for as long as the trigger edge's pulse is
// asserted. The profile holds step 0 at setMA for the follower
// duration sentinel and terminates in step 1.
//
// Five commands go out in sequence. They are all validated before the
// first one reaches the wire, but the sequence itself is not atomic: a
// mid-sequence error names the command that failed, and the channel
// can be left partially programmed (typically disabled, since the
// sequence starts by disabling it).
func (c *Controller) SetTriggerFollower(channel, maxMA, setMA int, polarity slc.TriggerPolarity) error {
	seq, err := buildFollowerSequence(channel, maxMA, setMA, polarity)
	if err != nil {
		return err
	}
	for _, cmd := range seq {
		if err := c.execAck(cmd); err != nil {
			return fmt.Errorf("trigger follower channel %d: %s: %w", channel, cmd.Line(), err)
		}
	}
	return nil
}

func buildFollowerSequence(channel, maxMA, setMA int, polarity slc.TriggerPolarity) ([]slc.Command, error) {
	if err := slc.ValidateCurrentPair(maxMA, setMA, slc.MaxCurrentPulsedMA); err != nil {
		return nil, err
	}
	disarm, err := slc.NewModeCommand(channel, slc.ModeDisable)
	if err != nil {
		return nil, err
	}
	trigger, err := slc.NewTriggerCommand(channel, maxMA, polarity)
	if err != nil {
		return nil, err
	}
	hold, err := slc.NewTriggerStepCommand(channel, 0, setMA, slc.FollowerDurationUS)
	if err != nil {
		return nil, err
	}
	stop, err := slc.NewTriggerStepCommand(channel, 1, 0, 0)
	if err != nil {
		return nil, err
	}
	arm, err := slc.NewModeCommand(channel, slc.ModeTrigger)
	if err != nil {
		return nil, err
	}
	return []slc.Command{disarm, trigger, hold, stop, arm}, nil
}

// SetStrobeProfile programs a channel's full strobe sequence: the
// STROBE parameters followed by one STRP per step. Steps after the
// first terminator are not transmitted, and if the profile has no
// terminator one is appended, since the controller replays steps until
// it reaches one.
func (c *Controller) SetStrobeProfile(channel, maxMA, repeat int, steps []slc.ProfileStep) error {
	seq, err := buildStrobeSequence(channel, maxMA, repeat, steps)
	if err != nil {
		return err
	}
	for _, cmd := range seq {
		if err := c.execAck(cmd); err != nil {
			return fmt.Errorf("strobe profile channel %d: %s: %w", channel, cmd.Line(), err)
		}
	}
	return nil
}

func buildStrobeSequence(channel, maxMA, repeat int, steps []slc.ProfileStep) ([]slc.Command, error) {
	head, err := slc.NewStrobeCommand(channel, maxMA, repeat)
	if err != nil {
		return nil, err
	}
	seq := []slc.Command{head}
	for i, step := range steps {
		cmd, err := slc.NewStrobeStepCommand(channel, i, step.CurrentMA, step.DurationUS)
		if err != nil {
			return nil, err
		}
		seq = append(seq, cmd)
		if step.IsTerminator() {
			return seq, nil
		}
	}
	tail, err := slc.NewStrobeStepCommand(channel, len(steps), 0, 0)
	if err != nil {
		return nil, err
	}
	return append(seq, tail), nil
}

// Status reads back a channel's mode, current pair, and head voltage
// with three queries. A firmware rejection of the voltage query is
// normal on channels that are not driving the output and leaves
// HasVoltage false; any other failure names the channel and carries
// the query that failed.
func (c *Controller) Status(channel int) (ChannelStatus, error) {
	st := ChannelStatus{Channel: channel}
	mode, err := c.GetMode(channel)
	if err != nil {
		return st, fmt.Errorf("status channel %d: %w", channel, err)
	}
	st.Mode = mode
	params, err := c.GetNormalParams(channel)
	if err != nil {
		return st, fmt.Errorf("status channel %d: %w", channel, err)
	}
	st.Params = params
	mv, err := c.GetLoadVoltage(channel)
	if err != nil {
		var cmdErr *slc.CommandError
		if errors.As(err, &cmdErr) {
			return st, nil
		}
		return st, fmt.Errorf("status channel %d: %w", channel, err)
	}
	st.LoadVoltageMV = mv
	st.HasVoltage = true
	return st, nil
}
