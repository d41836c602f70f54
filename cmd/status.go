// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/lkaising/mightex-slc-test/pkg/slc"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [channel]",
	Short: "Show mode, currents and load voltage per channel",
	Long: `Query and print the status of one channel, or of all channels when no
channel is given.

Each row shows the channel mode, the Normal-mode current limits
(Imax/Iset) and the measured load voltage. Fields that cannot be read
are shown as N/A; load voltage in particular reads as a soft error on
channels whose mode does not drive the output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	channels := make([]int, 0, slc.MaxChannel)
	if len(args) == 1 {
		ch, err := parseChannelArg(args[0])
		if err != nil {
			return err
		}
		channels = append(channels, ch)
	} else {
		for ch := slc.MinChannel; ch <= slc.MaxChannel; ch++ {
			channels = append(channels, ch)
		}
	}

	return withController(func(ctrl *mightex.Controller) error {
		for _, ch := range channels {
			fmt.Println(statusRow(ctrl, ch))
		}
		return nil
	})
}

var (
	statusOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// statusRow renders one channel's status line. Each field degrades to
// N/A independently so a partially responsive channel still reports
// what it can.
func statusRow(ctrl *mightex.Controller, channel int) string {
	mode, err := ctrl.GetMode(channel)
	if err != nil {
		return fmt.Sprintf("  CH%d  %s", channel, statusErrStyle.Render(fmt.Sprintf("unreadable: %v", err)))
	}

	// Pad before styling so ANSI codes do not skew the columns.
	state := statusOffStyle.Render(fmt.Sprintf("%-11s", "OFF"))
	if mode != slc.ModeDisable {
		state = statusOnStyle.Render(fmt.Sprintf("%-11s", "ON "+mode.String()))
	}

	imax, iset := "N/A", "N/A"
	if params, err := ctrl.GetNormalParams(channel); err == nil {
		imax = ctrl.FormatCurrent(params.MaxCurrentMA)
		iset = ctrl.FormatCurrent(params.SetCurrentMA)
	}

	vload := "N/A"
	if mv, err := ctrl.GetLoadVoltage(channel); err == nil {
		vload = fmt.Sprintf("%d mV", mv)
	}

	return fmt.Sprintf("  CH%d  %s Imax=%-10s Iset=%-10s Vload=%s",
		channel, state, imax, iset, vload)
}
