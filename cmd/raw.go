// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"strings"

	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/lkaising/mightex-slc-test/pkg/slc"
	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw <command...>",
	Short: "Send one protocol line and print the classified response",
	Long: `Send an arbitrary command line to the instrument and print the response
with its classification. Useful for bring-up, for commands this tool
does not wrap, and for checking how the firmware reacts to a given
line.

The command is sent exactly as given (terminator added). Firmware
rejections (#!, #?, undefined command) are part of the output, not a
failure of this command; only transport problems make it exit
non-zero.

Examples:
  slcctl raw DEVICEINFO
  slcctl raw '?CURRENT' 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")

	return withController(func(ctrl *mightex.Controller) error {
		fmt.Printf("> %s\n", line)
		resp, err := ctrl.Raw(line)
		if err != nil {
			return err
		}

		fmt.Printf("%-13s %s\n", resp.Kind, renderRawResponse(resp))
		return nil
	})
}

// renderRawResponse picks the most useful text for each response kind:
// the payload for data responses, the raw line otherwise.
func renderRawResponse(resp slc.Response) string {
	switch resp.Kind {
	case slc.ResponseAckData:
		return resp.Payload
	case slc.ResponseAck:
		return "(ok)"
	default:
		return resp.Raw
	}
}
