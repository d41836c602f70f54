// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lkaising/mightex-slc-test/pkg/mightex"
	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	refreshIntervalSeconds = 2   // Round-robin one channel status refresh per N seconds
	defaultWorkingMA       = 100 // Pre-filled working current for the input field
)

// Focus states
const (
	focusChannelList = iota
	focusCurrentInput
	focusButton
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// channelRow represents one LED output channel in the list
type channelRow struct {
	channel int
	status  *mightex.ChannelStatus // nil until the first successful refresh
	readErr error
	res     slc.Resolution
}

// Implement list.Item interface
func (r channelRow) Title() string { return fmt.Sprintf("CH%d", r.channel) }
func (r channelRow) Description() string {
	if r.readErr != nil {
		return "unreadable"
	}
	if r.status == nil {
		return "..."
	}
	if r.status.Mode == slc.ModeDisable {
		return "OFF"
	}
	return fmt.Sprintf("%s @ %s", r.status.Mode, slc.FormatCurrent(r.status.Params.SetCurrentMA, r.res))
}
func (r channelRow) FilterValue() string { return fmt.Sprintf("%d", r.channel) }

// eventLogEntry is one line of the TUI event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational entries
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	// Session (for exchanges and reconnection)
	session  *controllerSession
	connInfo string

	// Channel tracking
	rows        []channelRow
	channelList list.Model
	res         slc.Resolution

	// Device identity (from DEVICEINFO at startup)
	deviceLine string

	// Control
	currentInput textinput.Model
	focusedField int

	// Event log
	eventLog      []eventLogEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool

	// Refresh state
	refreshCursor int // Next channel in the round-robin status poll
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type deviceInfoMsg struct {
	line string
	err  error
}

type channelStatusMsg struct {
	channel int
	status  mightex.ChannelStatus
	err     error
}

type actionDoneMsg struct {
	channel int // 0 for device-wide actions
	label   string
	err     error
}

type reconnectDoneMsg struct {
	err error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(session *controllerSession, connInfo string) controlModel {
	res := session.ctrl.Resolution()

	// Initialize text input for the working current
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(defaultWorkingMA)
	ti.CharLimit = 4
	ti.Width = 10

	// Initialize channel list with one row per output
	rows := make([]channelRow, 0, slc.MaxChannel)
	for ch := slc.MinChannel; ch <= slc.MaxChannel; ch++ {
		rows = append(rows, channelRow{channel: ch, res: res})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	channelList := list.New(rowItems(rows), delegate, 30, 12)
	channelList.Title = "Channels"
	channelList.SetShowStatusBar(false)
	channelList.SetShowHelp(false)
	channelList.SetFilteringEnabled(false)

	return controlModel{
		session:       session,
		connInfo:      connInfo,
		rows:          rows,
		channelList:   channelList,
		res:           res,
		currentInput:  ti,
		focusedField:  focusChannelList,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		refreshCursor: slc.MinChannel,
	}
}

func rowItems(rows []channelRow) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return items
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(controlTickCmd(), m.fetchDeviceInfoCmd(), m.refreshAllCmd())
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Duration(refreshIntervalSeconds)*time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		// Poll one channel per tick so the bus stays responsive
		var cmd tea.Cmd
		if !m.connectionLost {
			cmd = m.refreshChannelCmd(m.refreshCursor)
			m.refreshCursor++
			if m.refreshCursor > slc.MaxChannel {
				m.refreshCursor = slc.MinChannel
			}
		}
		return m, tea.Batch(controlTickCmd(), cmd)

	case deviceInfoMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Could not read device info: %v", msg.err), true)
		} else {
			m.deviceLine = msg.line
		}

	case channelStatusMsg:
		m.processChannelStatus(msg)

	case actionDoneMsg:
		return m.processActionDone(msg)

	case reconnectDoneMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Reconnect failed: %v", msg.err), true)
		} else {
			m.connectionLost = false
			m.addLogEntry("Reconnected", false)
			return m, tea.Batch(m.fetchDeviceInfoCmd(), m.refreshAllCmd())
		}
	}

	// Update child components
	var cmd tea.Cmd
	if m.focusedField == focusCurrentInput {
		m.currentInput, cmd = m.currentInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focusedField == focusChannelList {
		m.channelList, cmd = m.channelList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		return m.handleEnter()

	case "up", "k":
		if m.focusedField == focusChannelList {
			m.channelList, _ = m.channelList.Update(msg)
		}

	case "down", "j":
		if m.focusedField == focusChannelList {
			m.channelList, _ = m.channelList.Update(msg)
		}

	case "d":
		if m.focusedField != focusCurrentInput {
			return m.disableSelected()
		}

	case "r":
		if m.focusedField != focusCurrentInput {
			return m, m.refreshAllCmd()
		}

	case "R":
		if m.focusedField != focusCurrentInput {
			m.addLogEntry("Reconnecting...", false)
			return m, m.reconnectCmd()
		}

	case "x":
		if m.focusedField != focusCurrentInput {
			m.addLogEntry("Turning all channels off", false)
			return m, m.allOffCmd()
		}
	}

	// Pass through to focused component
	if m.focusedField == focusCurrentInput {
		var cmd tea.Cmd
		m.currentInput, cmd = m.currentInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *controlModel) cycleFocus(delta int) *controlModel {
	maxFocus := focusButton
	m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)

	// Update focus state
	if m.focusedField == focusCurrentInput {
		m.currentInput.Focus()
	} else {
		m.currentInput.Blur()
	}

	return m
}

func (m *controlModel) handleEnter() (tea.Model, tea.Cmd) {
	// Don't allow control commands while connection is lost
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost (press R to reconnect)", true)
		return m, nil
	}

	selected := m.selectedRow()
	if selected == nil {
		return m, nil
	}

	switch m.focusedField {
	case focusCurrentInput:
		// Enter in the input applies the current: enable an off
		// channel, ramp an already running one
		return m.applyCurrent(selected)

	case focusButton:
		if selected.status != nil && selected.status.Mode != slc.ModeDisable {
			return m.disableSelected()
		}
		return m.applyCurrent(selected)
	}

	return m, nil
}

func (m *controlModel) applyCurrent(selected *channelRow) (tea.Model, tea.Cmd) {
	setMA, err := m.workingCurrent()
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	channel := selected.channel
	if selected.status != nil && selected.status.Mode == slc.ModeNormal {
		return m, m.setCurrentCmd(channel, setMA)
	}
	return m, m.enableChannelCmd(channel, setMA)
}

func (m *controlModel) disableSelected() (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost (press R to reconnect)", true)
		return m, nil
	}
	selected := m.selectedRow()
	if selected == nil {
		return m, nil
	}
	return m, m.disableChannelCmd(selected.channel)
}

// workingCurrent parses the input field, falling back to the
// placeholder default when empty.
func (m *controlModel) workingCurrent() (int, error) {
	raw := m.currentInput.Value()
	if raw == "" {
		raw = m.currentInput.Placeholder
	}

	setMA, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid current value: %s", raw)
	}
	if setMA < 0 || setMA > slc.MaxCurrentNormalMA {
		return 0, fmt.Errorf("current must be between 0 and %d mA", slc.MaxCurrentNormalMA)
	}
	return setMA, nil
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	// Header
	helpText := "q=quit Tab=switch d=off r=refresh x=all-off"
	if m.connectionLost {
		helpText = "q=quit R=reconnect"
	}
	s.WriteString(titleStyle.Render("SLC CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("CONNECTION LOST")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %s", connStatus, helpText)))
	s.WriteString("\n")

	// Device identity (below header)
	if m.deviceLine != "" {
		s.WriteString(fmt.Sprintf(" %s %s",
			labelStyle.Render("Device:"),
			valueStyle.Render(m.deviceLine)))
	}
	s.WriteString("\n\n")

	// Layout: left panel (channels) | right panel (control)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusChannelList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	channelPanel := listStyle.Render(m.channelList.View())

	controlContent := m.renderControlPanel(labelStyle, valueStyle, headerStyle, buttonStyle, focusedButtonStyle)
	controlStyle := boxStyle.Width(rightWidth)
	if m.focusedField == focusCurrentInput || m.focusedField == focusButton {
		controlStyle = focusedBoxStyle.Width(rightWidth)
	}
	controlPanel := controlStyle.Render(controlContent)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, channelPanel, " ", controlPanel))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderControlPanel(labelStyle, valueStyle, headerStyle, buttonStyle, focusedButtonStyle lipgloss.Style) string {
	var s strings.Builder

	selected := m.selectedRow()
	if selected == nil {
		s.WriteString(headerStyle.Render("No channel selected"))
		return s.String()
	}

	// Selected channel info
	s.WriteString(fmt.Sprintf("%s CH%d\n", labelStyle.Render("Selected:"), selected.channel))

	switch {
	case selected.readErr != nil:
		s.WriteString(fmt.Sprintf("%s %v\n\n", labelStyle.Render("Error:"), selected.readErr))

	case selected.status == nil:
		s.WriteString(headerStyle.Render("Waiting for first status...") + "\n\n")

	default:
		st := selected.status
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Mode:"), valueStyle.Render(st.Mode.String())))
		s.WriteString(fmt.Sprintf("%s %s / %s limit\n",
			labelStyle.Render("Current:"),
			valueStyle.Render(slc.FormatCurrent(st.Params.SetCurrentMA, m.res)),
			slc.FormatCurrent(st.Params.MaxCurrentMA, m.res)))
		vload := "N/A"
		if st.HasVoltage {
			vload = fmt.Sprintf("%d mV", st.LoadVoltageMV)
		}
		s.WriteString(fmt.Sprintf("%s %s\n\n", labelStyle.Render("Vload:"), valueStyle.Render(vload)))
	}

	// Working current input
	s.WriteString(labelStyle.Render("Current (mA): "))
	if m.focusedField == focusCurrentInput {
		s.WriteString(m.currentInput.View())
	} else {
		// Show as plain text when not focused
		val := m.currentInput.Value()
		if val == "" {
			val = m.currentInput.Placeholder
		}
		s.WriteString(fmt.Sprintf("[%s]", val))
	}
	s.WriteString("\n\n")

	// Toggle button
	btnText := "[ Turn On ]"
	if selected.status != nil && selected.status.Mode != slc.ModeDisable {
		btnText = "[ Turn Off ]"
	}
	if m.focusedField == focusButton {
		s.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		s.WriteString(buttonStyle.Render(btnText))
	}

	return s.String()
}

func (m controlModel) renderEventLog(labelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// Calculate available height for log
	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}

	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *controlModel) processChannelStatus(msg channelStatusMsg) {
	idx := msg.channel - slc.MinChannel
	if idx < 0 || idx >= len(m.rows) {
		return
	}

	if msg.err != nil {
		m.rows[idx].readErr = msg.err
		m.noteConnectionError(msg.err)
		m.channelList.SetItems(rowItems(m.rows))
		return
	}

	prev := m.rows[idx].status
	status := msg.status
	m.rows[idx].status = &status
	m.rows[idx].readErr = nil

	// Log mode transitions picked up by polling
	if prev != nil && prev.Mode != status.Mode {
		m.addLogEntry(fmt.Sprintf("CH%d: %s -> %s", msg.channel, prev.Mode, status.Mode), false)
	}

	m.channelList.SetItems(rowItems(m.rows))
}

func (m *controlModel) processActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.label, msg.err), true)
		m.noteConnectionError(msg.err)
		return m, nil
	}

	m.addLogEntry(msg.label, false)
	if msg.channel == 0 {
		return m, m.refreshAllCmd()
	}
	return m, m.refreshChannelCmd(msg.channel)
}

// noteConnectionError flips the model into the lost state when the
// failure came from the transport rather than the firmware.
func (m *controlModel) noteConnectionError(err error) {
	var transportErr *mightex.TransportError
	if errors.As(err, &transportErr) && !m.connectionLost {
		m.connectionLost = true
		m.addLogEntry("Connection lost - press R to reconnect", true)
	}
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func (m controlModel) fetchDeviceInfoCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		var line string
		err := session.do(func(ctrl *mightex.Controller) error {
			dev, err := ctrl.DeviceInfo()
			if err != nil {
				return err
			}
			line = fmt.Sprintf("%s (FW %s, S/N %s)", dev.ModuleNumber, dev.FirmwareVersion, dev.SerialNumber)
			return nil
		})
		return deviceInfoMsg{line: line, err: err}
	}
}

func (m controlModel) refreshChannelCmd(channel int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		var status mightex.ChannelStatus
		err := session.do(func(ctrl *mightex.Controller) error {
			var err error
			status, err = ctrl.Status(channel)
			return err
		})
		return channelStatusMsg{channel: channel, status: status, err: err}
	}
}

func (m controlModel) refreshAllCmd() tea.Cmd {
	cmds := make([]tea.Cmd, 0, slc.MaxChannel)
	for ch := slc.MinChannel; ch <= slc.MaxChannel; ch++ {
		cmds = append(cmds, m.refreshChannelCmd(ch))
	}
	return tea.Batch(cmds...)
}

func (m controlModel) enableChannelCmd(channel, setMA int) tea.Cmd {
	session := m.session
	label := fmt.Sprintf("CH%d ON - %s", channel, slc.FormatCurrent(setMA, m.res))
	return func() tea.Msg {
		err := session.do(func(ctrl *mightex.Controller) error {
			return ctrl.EnableChannel(channel, setMA)
		})
		return actionDoneMsg{channel: channel, label: label, err: err}
	}
}

func (m controlModel) setCurrentCmd(channel, setMA int) tea.Cmd {
	session := m.session
	label := fmt.Sprintf("CH%d current -> %s", channel, slc.FormatCurrent(setMA, m.res))
	return func() tea.Msg {
		err := session.do(func(ctrl *mightex.Controller) error {
			return ctrl.SetCurrent(channel, setMA)
		})
		return actionDoneMsg{channel: channel, label: label, err: err}
	}
}

func (m controlModel) disableChannelCmd(channel int) tea.Cmd {
	session := m.session
	label := fmt.Sprintf("CH%d OFF", channel)
	return func() tea.Msg {
		err := session.do(func(ctrl *mightex.Controller) error {
			return ctrl.DisableChannel(channel)
		})
		return actionDoneMsg{channel: channel, label: label, err: err}
	}
}

func (m controlModel) allOffCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		err := session.do(func(ctrl *mightex.Controller) error {
			var firstErr error
			for ch := slc.MinChannel; ch <= slc.MaxChannel; ch++ {
				if err := ctrl.DisableChannel(ch); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		})
		return actionDoneMsg{channel: 0, label: "All channels OFF", err: err}
	}
}

func (m controlModel) reconnectCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return reconnectDoneMsg{err: session.reconnect()}
	}
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *controlModel) selectedRow() *channelRow {
	if len(m.rows) == 0 {
		return nil
	}

	idx := m.channelList.Index()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return &m.rows[idx]
}

func (m *controlModel) updateListSize() {
	// Adjust list size based on terminal size
	listHeight := m.height / 3
	if listHeight < 8 {
		listHeight = 8
	}
	m.channelList.SetSize(28, listHeight)
}
