// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/lkaising/mightex-slc-test/pkg/triggerprog"
	"github.com/spf13/cobra"
)

var (
	programVerifyOnly bool
	programNoStore    bool
)

var programCmd = &cobra.Command{
	Use:   "program <config.yaml>",
	Short: "Program trigger followers for every channel in a YAML config",
	Long: `Program each channel listed in the config file as a trigger follower,
verify the result by reading the configuration back, and store the
settings to non-volatile memory once everything checks out.

The config names the serial port and the per-channel LED limits:

  port: /dev/ttyUSB0
  store: true
  channels:
    1:
      name: M850L3
      wavelength_nm: 850
      current_ma: 1000
      max_current_ma: 1000
      polarity: rising

The --port flag overrides the config's port when given explicitly.
Settings are stored only when every channel verifies OK and neither
--no-store nor "store: false" is in effect. --verify-only skips the
programming pass and checks the instrument against the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	programCmd.Flags().BoolVar(&programVerifyOnly, "verify-only", false, "Only verify, do not program")
	programCmd.Flags().BoolVar(&programNoStore, "no-store", false, "Skip the STORE step even when verification passes")
	rootCmd.AddCommand(programCmd)
}

func runProgram(cmd *cobra.Command, args []string) error {
	cfg, err := triggerprog.LoadConfig(args[0])
	if err != nil {
		return err
	}

	// The config's port applies unless --port was given explicitly.
	if !cmd.Flags().Changed("port") && wsURL == "" {
		portName = cfg.Port
	}

	return withController(func(ctrl *mightex.Controller) error {
		if !programVerifyOnly {
			fmt.Printf("Programming %d channel(s) from %s\n", len(cfg.Channels), args[0])
			report := triggerprog.ProgramAll(ctrl, cfg)
			printReport(report)
			if !report.AllOK() {
				return fmt.Errorf("programming failed: %s", report.Summary())
			}
		}

		fmt.Println("Verifying...")
		report := triggerprog.VerifyAll(ctrl, cfg)
		printReport(report)
		if !report.AllOK() {
			return fmt.Errorf("verification failed: %s", report.Summary())
		}
		fmt.Printf("Summary: %s\n", report.Summary())

		if programVerifyOnly || programNoStore || !cfg.Store {
			return nil
		}
		if err := ctrl.Store(); err != nil {
			return fmt.Errorf("store settings: %w", err)
		}
		fmt.Println("Settings stored to non-volatile memory")
		return nil
	})
}

func printReport(report triggerprog.Report) {
	for _, result := range report.Results {
		fmt.Printf("  %s\n", result.Message)
	}
}
