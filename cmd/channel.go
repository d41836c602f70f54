// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var enableMaxMA int

var enableCmd = &cobra.Command{
	Use:   "enable <channel> <current-mA>",
	Short: "Turn a channel on at a constant current",
	Long: `Set a channel's Normal-mode working current and switch the channel to
Normal mode.

The current limit defaults to the Normal-mode maximum (1000 mA); pass
--max to cap it lower, e.g. at the LED's datasheet rating. The working
current must not exceed the limit.`,
	Args: cobra.ExactArgs(2),
	RunE: runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable <channel>",
	Short: "Turn a channel off",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisable,
}

var currentCmd = &cobra.Command{
	Use:   "current <channel> <current-mA>",
	Short: "Change the working current without touching the mode",
	Long: `Set a channel's Normal-mode working current, leaving the mode and the
current limit as they are. Useful for ramping an already enabled
channel.`,
	Args: cobra.ExactArgs(2),
	RunE: runCurrent,
}

var normalCmd = &cobra.Command{
	Use:   "normal <channel> [max-mA set-mA]",
	Short: "Get or set Normal-mode parameters (Imax, Iset)",
	Long: `Print a channel's Normal-mode current limit and working current, or set
both when values are given. Setting parameters does not change the
channel's mode.`,
	Args: rangeOrPairArgs,
	RunE: runNormal,
}

func init() {
	enableCmd.Flags().IntVar(&enableMaxMA, "max", 0, "Current limit in mA (default: Normal-mode maximum)")
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(normalCmd)
}

// rangeOrPairArgs accepts either just the channel or the channel plus a
// value pair.
func rangeOrPairArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return fmt.Errorf("accepts 1 or 3 args, received %d", len(args))
	}
	return nil
}

func runEnable(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}
	setMA, err := parseIntArg("current", args[1])
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		if enableMaxMA > 0 {
			err = ctrl.EnableChannelWithLimit(channel, enableMaxMA, setMA)
		} else {
			err = ctrl.EnableChannel(channel, setMA)
		}
		if err != nil {
			return err
		}
		fmt.Printf("CH%d ON - %s\n", channel, ctrl.FormatCurrent(setMA))
		return nil
	})
}

func runDisable(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.DisableChannel(channel); err != nil {
			return err
		}
		fmt.Printf("CH%d OFF\n", channel)
		return nil
	})
}

func runCurrent(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}
	setMA, err := parseIntArg("current", args[1])
	if err != nil {
		return err
	}

	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetCurrent(channel, setMA); err != nil {
			return err
		}
		fmt.Printf("CH%d current set to %s\n", channel, ctrl.FormatCurrent(setMA))
		return nil
	})
}

func runNormal(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withController(func(ctrl *mightex.Controller) error {
			params, err := ctrl.GetNormalParams(channel)
			if err != nil {
				return err
			}
			fmt.Printf("CH%d Imax=%s Iset=%s\n", channel,
				ctrl.FormatCurrent(params.MaxCurrentMA), ctrl.FormatCurrent(params.SetCurrentMA))
			return nil
		})
	}

	maxMA, err := parseIntArg("max current", args[1])
	if err != nil {
		return err
	}
	setMA, err := parseIntArg("set current", args[2])
	if err != nil {
		return err
	}
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetNormalParams(channel, maxMA, setMA); err != nil {
			return err
		}
		fmt.Printf("CH%d Imax=%s Iset=%s\n", channel,
			ctrl.FormatCurrent(maxMA), ctrl.FormatCurrent(setMA))
		return nil
	})
}
