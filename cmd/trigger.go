// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var followerPolarity string

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Configure and inspect trigger profiles",
	Long: `Configure a channel's externally-triggered behavior: the current limit
and trigger edge polarity, the per-step timing profile, or the
level-follower shorthand.

In Trigger mode the channel plays its profile once per trigger edge.
Profiles use the same step grammar as strobe: (current, duration)
pairs ended by a (0,0) step.`,
}

var triggerParamsCmd = &cobra.Command{
	Use:   "params <channel> [max-mA polarity]",
	Short: "Get or set trigger Imax and edge polarity",
	Args:  rangeOrPairArgs,
	RunE:  runTriggerParams,
}

var triggerStepCmd = &cobra.Command{
	Use:   "step <channel> <index> <current-mA> <duration-us>",
	Short: "Set one trigger profile step",
	Args:  cobra.ExactArgs(4),
	RunE:  runTriggerStep,
}

var triggerProfileCmd = &cobra.Command{
	Use:   "profile <channel>",
	Short: "Dump a trigger profile as reported by the instrument",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriggerProfile,
}

var triggerFollowerCmd = &cobra.Command{
	Use:   "follower <channel> <max-mA> <set-mA>",
	Short: "Make the output follow the external trigger level",
	Long: `Program a channel so its output tracks the external trigger input:
current flows at the set level while the trigger is asserted and stops
when it is released.

This writes the trigger parameters and the special follower profile,
then arms the channel in Trigger mode. The channel is disabled first so
a partial write cannot leave it running a half-programmed profile.`,
	Args: cobra.ExactArgs(3),
	RunE: runTriggerFollower,
}

func init() {
	triggerFollowerCmd.Flags().StringVar(&followerPolarity, "polarity", "rising", "Trigger edge polarity (rising or falling)")
	triggerCmd.AddCommand(triggerParamsCmd)
	triggerCmd.AddCommand(triggerStepCmd)
	triggerCmd.AddCommand(triggerProfileCmd)
	triggerCmd.AddCommand(triggerFollowerCmd)
	rootCmd.AddCommand(triggerCmd)
}

func runTriggerParams(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withController(func(ctrl *mightex.Controller) error {
			params, err := ctrl.GetTriggerParams(channel)
			if err != nil {
				return err
			}
			fmt.Printf("CH%d trigger Imax=%s polarity=%s\n", channel,
				ctrl.FormatCurrent(params.MaxCurrentMA), params.Polarity)
			return nil
		})
	}

	maxMA, err := parseIntArg("max current", args[1])
	if err != nil {
		return err
	}
	polarity, err := parsePolarityArg(args[2])
	if err != nil {
		return err
	}
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetTriggerParams(channel, maxMA, polarity); err != nil {
			return err
		}
		fmt.Printf("CH%d trigger Imax=%s polarity=%s\n", channel, ctrl.FormatCurrent(maxMA), polarity)
		return nil
	})
}

func runTriggerStep(cmd *cobra.Command, args []string) error {
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
		if err := ctrl.SetTriggerStep(channel, step, setMA, durationUS); err != nil {
			return err
		}
		fmt.Printf("CH%d trigger step %d: %s for %d us\n", channel, step, ctrl.FormatCurrent(setMA), durationUS)
		return nil
	})
}

func runTriggerProfile(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		profile, err := ctrl.GetTriggerProfile(channel)
		if err != nil {
			return err
		}
		fmt.Printf("CH%d trigger profile: %s\n", channel, profile)
		return nil
	})
}

func runTriggerFollower(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}
	maxMA, err := parseIntArg("max current", args[1])
	if err != nil {
		return err
	}
	setMA, err := parseIntArg("set current", args[2])
	if err != nil {
		return err
	}
	polarity, err := parsePolarityArg(followerPolarity)
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetTriggerFollower(channel, maxMA, setMA, polarity); err != nil {
			return err
		}
		fmt.Printf("CH%d armed as trigger follower: %s on %s edge\n",
			channel, ctrl.FormatCurrent(setMA), polarity)
		return nil
	})
}
