// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for driving SLC channels",
	Long: `Drive the LED channels via an interactive terminal UI.

This command provides a TUI for monitoring and controlling the four
output channels of a connected SLC driver.

Features:
  - Live per-channel status (mode, currents, load voltage)
  - Enable/disable with a working-current entry
  - All-channels-off safety action
  - Event logging
  - Manual reconnect after a connection loss

Tab switches between the channel list and the control panel. Arrow keys
navigate the channel list.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// controllerSession serializes TUI access to the controller. Bubble Tea
// runs commands on their own goroutines while the instrument handles
// one exchange at a time.
type controllerSession struct {
	mu       sync.Mutex
	ctrl     *mightex.Controller
	connInfo string
}

func (s *controllerSession) do(fn func(*mightex.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ctrl.Connected() {
		return fmt.Errorf("not connected")
	}
	return fn(s.ctrl)
}

func (s *controllerSession) reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Reconnect()
}

func (s *controllerSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Close()
}

func runControl(cmd *cobra.Command, args []string) error {
	ctrl, connInfo, err := openController()
	if err != nil {
		return err
	}

	session := &controllerSession{ctrl: ctrl, connInfo: connInfo}
	defer session.close()

	m := initialControlModel(session, connInfo)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
