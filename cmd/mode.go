// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode <channel> [mode]",
	Short: "Get or set a channel's operating mode",
	Long: `Print a channel's operating mode, or set it when a mode is given.

Modes may be named (disable, normal, strobe, trigger) or numeric (0-3).
Switching the mode does not touch the channel's stored parameters;
enabling Strobe or Trigger mode runs whatever profile the channel
already holds.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	channel, err := parseChannelArg(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withController(func(ctrl *mightex.Controller) error {
			mode, err := ctrl.GetMode(channel)
			if err != nil {
				return err
			}
			fmt.Printf("CH%d mode: %s\n", channel, mode)
			return nil
		})
	}

	mode, err := parseModeArg(args[1])
	if err != nil {
		return err
	}
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.SetMode(channel, mode); err != nil {
			return err
		}
		fmt.Printf("CH%d mode set to %s\n", channel, mode)
		return nil
	})
}
