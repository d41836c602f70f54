// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"time"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Shared behavior flags
	ioTimeout time.Duration
	verbose   bool
	tenths    bool
)

var rootCmd = &cobra.Command{
	Use:   "slcctl",
	Short: "Mightex SLC LED driver control",
	Long: `slcctl - A CLI tool for controlling Mightex SLC multi-channel LED drivers.

Provides commands for device identification, channel status, mode and
current control, strobe and trigger profiles, batch trigger programming
from a YAML file, and an interactive control console.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

The WebSocket mode talks to a remote serial bridge that forwards raw
bytes to the instrument. For WebSocket authentication, the password is
read from the SLC_PASSWORD environment variable, or prompted
interactively if not set. The --password flag is intentionally not
provided to avoid leaking credentials in shell history.

Modules with 0.1 mA current resolution report and accept wire values in
tenths of a milliamp; pass --tenths so displayed currents are scaled
accordingly.`,
	Version: "0.3.1",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "/dev/ttyUSB0", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", mightex.DefaultBaudRate, "Baud rate (serial only)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().DurationVar(&ioTimeout, "timeout", mightex.DefaultTimeout, "Response timeout per command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every command/response exchange")
	rootCmd.PersistentFlags().BoolVar(&tenths, "tenths", false, "Display currents in 0.1 mA units (high-resolution modules)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
