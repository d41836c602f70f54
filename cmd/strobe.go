// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/lkaising/mightex-slc-test/pkg/slc"
	"github.com/spf13/cobra"
)

var (
	strobeMaxMA  int
	strobeRepeat int
	strobeRun    bool
)

var strobeCmd = &cobra.Command{
	Use:   "strobe",
	Short: "Configure and inspect strobe profiles",
	Long: `Configure a channel's strobe profile: the current limit and repeat
count, the per-step (current, duration) pairs, or the whole profile at
once.

A strobe profile is a sequence of steps played in order, each holding
its current for its duration; a (0,0) step ends the sequence. Repeat 0
plays the sequence forever.`,
}

var strobeParamsCmd = &cobra.Command{
	Use:   "params <channel> [max-mA repeat]",
	Short: "Get or set strobe Imax and repeat count",
	Args:  rangeOrPairArgs,
	RunE:  runStrobeParams,
}

var strobeStepCmd = &cobra.Command{
	Use:   "step <channel> <index> <current-mA> <duration-us>",
	Short: "Set one strobe profile step",
	Long: `Write one step of a channel's strobe profile. Step indices run 0-127;
a step with current and duration both zero terminates the profile.`,
	Args: cobra.ExactArgs(4),
	RunE: runStrobeStep,
}

var strobeProfileCmd = &cobra.Command{
	Use:   "profile <channel> [step...]",
	Short: "Dump a strobe profile, or write one from step pairs",
	Long: `With no steps, dump the channel's stored strobe profile as reported by
the instrument.

With steps, write a complete profile in one go: each step is written
CURRENT:DURATION (mA and µs), e.g.

  slcctl strobe profile 1 --max 400 --repeat 10 200:50000 0:50000

The terminating (0,0) step is appended automatically when the given
steps do not already end with one. Switch the channel to strobe mode
afterwards to run the profile:

  slcctl mode 1 strobe

or pass --run to switch immediately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStrobeProfile,
}

func init() {
	strobeProfileCmd.Flags().IntVar(&strobeMaxMA, "max", 0, "Current limit in mA (required when writing)")
	strobeProfileCmd.Flags().IntVar(&strobeRepeat, "repeat", 1, "Repeat count (0 = forever)")
	strobeProfileCmd.Flags().BoolVar(&strobeRun, "run", false, "Switch the channel to strobe mode after writing")
	strobeCmd.AddCommand(strobeParamsCmd)
	strobeCmd.AddCommand(strobeStepCmd)
	strobeCmd.AddCommand(strobeProfileCmd)
	rootCmd.AddCommand(strobeCmd)
}

func runStrobeParams(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withController(func(ctrl *mightex.Controller) error {
			params, err := ctrl.GetStrobeParams(channel)
			if err != nil {
				return err
			}
			fmt.Printf("CH%d strobe Imax=%s repeat=%d\n", channel,
				ctrl.FormatCurrent(params.MaxCurrentMA), params.Repeat)
			return nil
		})
	}

	maxMA, err := parseIntArg("max current", args[1])
	if err != nil {
		return err
	}
	repeat, err := parseIntArg("repeat", args[2])
	if err != nil {
		return err
	}
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetStrobeParams(channel, maxMA, repeat); err != nil {
			return err
		}
		fmt.Printf("CH%d strobe Imax=%s repeat=%d\n", channel, ctrl.FormatCurrent(maxMA), repeat)
		return nil
	})
}

func runStrobeStep(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}
	step, err := parseIntArg("step index", args[1])
	if err != nil {
		return err
	}
	setMA, err := parseIntArg("current", args[2])
	if err != nil {
		return err
	}
	durationUS, err := parseIntArg("duration", args[3])
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetStrobeStep(channel, step, setMA, durationUS); err != nil {
			return err
		}
		fmt.Printf("CH%d strobe step %d: %s for %d us\n", channel, step, ctrl.FormatCurrent(setMA), durationUS)
		return nil
	})
}

func runStrobeProfile(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withController(func(ctrl *mightex.Controller) error {
			profile, err := ctrl.GetStrobeProfile(channel)
			if err != nil {
				return err
			}
			fmt.Printf("CH%d strobe profile: %s\n", channel, profile)
			return nil
		})
	}

	if strobeMaxMA <= 0 {
		return fmt.Errorf("--max is required when writing a profile")
	}
	steps := make([]slc.ProfileStep, 0, len(args)-1)
	for _, arg := range args[1:] {
		step, err := parseStepArg(arg)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}

	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetStrobeProfile(channel, strobeMaxMA, strobeRepeat, steps); err != nil {
			return err
		}
		fmt.Printf("CH%d strobe profile written (%d steps)\n", channel, len(steps))
		if strobeRun {
			if err := ctrl.SetMode(channel, slc.ModeStrobe); err != nil {
				return err
			}
			fmt.Printf("CH%d strobe running\n", channel)
		}
		return nil
	})
}
