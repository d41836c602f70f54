// SPDX-License-Identifier: Apache-2.0
//
// slcctl - Mightex SLC LED driver control
//
// A CLI tool for driving Mightex SLC multi-channel LED current drivers
// over their ASCII serial protocol.

package main

import (
	"os"

	"github.com/lkaising/mightex-slc-test/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
