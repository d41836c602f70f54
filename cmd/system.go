// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Device-wide operations (store, reset, restore defaults)",
}

var systemStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Store the current settings to non-volatile memory",
	Long: `Store all channel settings to non-volatile memory so the instrument
restores them at power-up. Without a store, settings last only until
the next reset or power cycle.`,
	Args: cobra.NoArgs,
	RunE: runSystemStore,
}

var systemResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reboot the instrument",
	Long: `Reboot the instrument. All channels come back in their stored
power-up state; the device needs a moment before it answers commands
again.`,
	Args: cobra.NoArgs,
	RunE: runSystemReset,
}

var systemRestoreCmd = &cobra.Command{
	Use:   "restore-defaults",
	Short: "Restore factory default settings",
	Long: `Restore the instrument's factory default settings, discarding all
stored channel configuration.`,
	Args: cobra.NoArgs,
	RunE: runSystemRestore,
}

func init() {
	systemCmd.AddCommand(systemStoreCmd)
	systemCmd.AddCommand(systemResetCmd)
	systemCmd.AddCommand(systemRestoreCmd)
	rootCmd.AddCommand(systemCmd)
}

func runSystemStore(cmd *cobra.Command, args []string) error {
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.Store(); err != nil {
			return err
		}
		fmt.Println("Settings stored")
		return nil
	})
}

func runSystemReset(cmd *cobra.Command, args []string) error {
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.Reset(); err != nil {
			return err
		}
		fmt.Println("Device reset")
		return nil
	})
}

func runSystemRestore(cmd *cobra.Command, args []string) error {
	return withController(func(ctrl *mightex.Controller) error {
		if err := ctrl.RestoreDefaults(); err != nil {
			return err
		}
		fmt.Println("Factory defaults restored")
		return nil
	})
}
