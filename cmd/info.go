// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print device identity (model, firmware, serial number)",
	Long: `Query the instrument with DEVICEINFO and print its identity.

The identity line also confirms basic connectivity: if this command
succeeds, the wiring, port settings and protocol framing are all fine.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withController(func(ctrl *mightex.Controller) error {
		dev, err := ctrl.DeviceInfo()
		if err != nil {
			return err
		}

		fmt.Printf("Driver:   %s\n", dev.DriverName)
		fmt.Printf("Model:    %s\n", dev.ModuleNumber)
		fmt.Printf("Firmware: %s\n", dev.FirmwareVersion)
		fmt.Printf("Serial:   %s\n", dev.SerialNumber)
		return nil
	})
}
