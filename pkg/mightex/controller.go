// SPDX-License-Identifier: Apache-2.0

// Package mightex drives Mightex SLC-series LED controllers over a
// Transport. The Controller pairs each command with one response line,
// classifies the reply, and turns the protocol's marker-based answers
// into typed errors.
//
// Construction follows the functional-option pattern:
//
//	ctrl, err := mightex.Open("/dev/ttyUSB0",
//	    mightex.WithTimeout(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Close()
//
//	if err := ctrl.EnableChannel(1, 50); err != nil {
//	    log.Fatal(err)
//	}
//
// The wire-level building blocks (command builders, response
// classification, payload parsers) live in pkg/slc.
package mightex

import (
	"errors"
	"strings"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// Controller is the high-level interface to one SLC unit. It owns the
// transport and performs strict one-command-one-response exchanges.
//
// Controller is not safe for concurrent use; callers that share one
// across goroutines must serialize access themselves.
type Controller struct {
	transport Transport
	config    Config
	connected bool
}

// New creates a Controller over the given transport. The transport is
// not opened until Connect.
func New(transport Transport, opts ...Option) *Controller {
	if transport == nil {
		panic("transport cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Controller{transport: transport, config: cfg}
}

// Open connects to an SLC unit on a local serial port. It builds a
// SerialTransport with the configured baud rate and timeout, wraps it
// in a Controller, and calls Connect.
func Open(portName string, opts ...Option) (*Controller, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Controller{
		transport: NewSerialTransport(portName, cfg.BaudRate, cfg.Timeout),
		config:    cfg,
	}
	if err := c.Connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens the transport and switches off command echo so that
// replies are not polluted by reflected command text. If the echo
// setup fails the transport is closed again.
func (c *Controller) Connect() error {
	if c.connected {
		return nil
	}
	if err := c.transport.Open(); err != nil {
		c.logError("connect failed", "error", err)
		return err
	}
	c.connected = true
	if err := c.EchoOff(); err != nil {
		c.connected = false
		_ = c.transport.Close()
		c.logError("connect failed", "error", err)
		return err
	}
	c.logInfo("connected")
	return nil
}

// Close disconnects from the controller. Close is idempotent.
func (c *Controller) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	if err := c.transport.Close(); err != nil {
		c.logError("close failed", "error", err)
		return err
	}
	c.logInfo("disconnected")
	return nil
}

// Connected reports whether Connect has succeeded and Close has not
// been called since.
func (c *Controller) Connected() bool { return c.connected }

// Reconnect closes and reopens the link, re-running the echo setup.
func (c *Controller) Reconnect() error {
	if err := c.Close(); err != nil {
		c.logError("reconnect: close failed", "error", err)
	}
	return c.Connect()
}

// Run connects, invokes fn, and disconnects on every path.
//
// Example:
//
//	err := mightex.New(transport).Run(func(c *mightex.Controller) error {
//	    return c.EnableChannel(1, 50)
//	})
func (c *Controller) Run(fn func(*Controller) error) error {
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// exchange sends one command and returns the classified response. An
// empty response line counts as no response at all.
func (c *Controller) exchange(cmd slc.Command) (slc.Response, error) {
	if !c.connected {
		return slc.Response{}, &TransportError{Op: cmd.Verb(), Err: ErrNotOpen}
	}
	c.logDebug("tx", "command", cmd.Line())
	if err := c.transport.WriteLine(cmd.Bytes()); err != nil {
		c.logError("write failed", "command", cmd.Line(), "error", err)
		return slc.Response{}, err
	}
	raw, err := c.transport.ReadLine()
	if err != nil {
		c.logError("read failed", "command", cmd.Line(), "error", err)
		return slc.Response{}, err
	}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		terr := &TransportError{Op: cmd.Verb(), Err: ErrNoResponse, Timeout: true}
		c.logError("read failed", "command", cmd.Line(), "error", terr)
		return slc.Response{}, terr
	}
	resp := slc.Classify(line)
	c.logDebug("rx", "response", line, "kind", resp.Kind.String())
	return resp, nil
}

// commandError turns a non-OK response into a CommandError. A soft
// error in reply to a mode-bound verb usually means the channel is not
// in the mode that verb programs, so the error carries that hint.
func commandError(cmd slc.Command, resp slc.Response) error {
	cerr := &slc.CommandError{
		Op:   cmd.Verb(),
		Kind: resp.Kind,
		Raw:  resp.Raw,
	}
	if resp.Kind == slc.ResponseSoftError {
		if want, ok := slc.ModeFor(strings.TrimPrefix(cmd.Verb(), "?")); ok {
			cerr.ModeMismatch = true
			cerr.WantMode = want
		}
	}
	return cerr
}

// execAck runs a command whose only valid reply is a bare ack.
func (c *Controller) execAck(cmd slc.Command) error {
	resp, err := c.exchange(cmd)
	if err != nil {
		return err
	}
	if resp.Kind != slc.ResponseAck {
		return commandError(cmd, resp)
	}
	return nil
}

// execData runs a query whose valid reply is an ack carrying payload.
func (c *Controller) execData(cmd slc.Command) (string, error) {
	resp, err := c.exchange(cmd)
	if err != nil {
		return "", err
	}
	if resp.Kind != slc.ResponseAckData {
		return "", commandError(cmd, resp)
	}
	return resp.Payload, nil
}

// execRaw runs a command whose reply is free text without the ack
// marker (DEVICEINFO). Only the explicit rejection markers are treated
// as errors; anything else is returned verbatim.
func (c *Controller) execRaw(cmd slc.Command) (string, error) {
	resp, err := c.exchange(cmd)
	if err != nil {
		return "", err
	}
	switch resp.Kind {
	case slc.ResponseSoftError, slc.ResponseInvalidParam, slc.ResponseUndefined:
		return "", commandError(cmd, resp)
	}
	return resp.Raw, nil
}

// sendEcho sends an echo-control command and drains whatever comes
// back. SLC units answer ECHOOFF inconsistently (some ack, some echo
// the command, some stay silent), so the reply is discarded and a read
// timeout is not an error.
func (c *Controller) sendEcho(cmd slc.Command) error {
	if !c.connected {
		return &TransportError{Op: cmd.Verb(), Err: ErrNotOpen}
	}
	c.logDebug("tx", "command", cmd.Line())
	if err := c.transport.WriteLine(cmd.Bytes()); err != nil {
		return err
	}
	if _, err := c.transport.ReadLine(); err != nil {
		var terr *TransportError
		if errors.As(err, &terr) && terr.Timeout {
			return nil
		}
		return err
	}
	return nil
}

// EchoOff disables command echo. Connect calls this automatically.
func (c *Controller) EchoOff() error {
	return c.sendEcho(slc.NewEchoOffCommand())
}

// EchoOn re-enables command echo for interactive terminal use.
func (c *Controller) EchoOn() error {
	return c.sendEcho(slc.NewEchoOnCommand())
}

// DeviceInfo queries the controller's identification block: driver
// name, firmware version, module number, and serial number.
func (c *Controller) DeviceInfo() (slc.DeviceInfo, error) {
	raw, err := c.execRaw(slc.NewDeviceInfoCommand())
	if err != nil {
		return slc.DeviceInfo{}, err
	}
	return slc.ParseDeviceInfo(raw)
}

// GetMode returns the operating mode of a channel.
func (c *Controller) GetMode(channel int) (slc.Mode, error) {
	cmd, err := slc.NewModeQuery(channel)
	if err != nil {
		return 0, err
	}
	payload, err := c.execData(cmd)
	if err != nil {
		return 0, err
	}
	return slc.ParseMode(payload)
}

// SetMode puts a channel into the given operating mode.
func (c *Controller) SetMode(channel int, mode slc.Mode) error {
	cmd, err := slc.NewModeCommand(channel, mode)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// SetNormalParams programs the NORMAL-mode current pair of a channel:
// the limit maxMA and the working current setMA.
func (c *Controller) SetNormalParams(channel, maxMA, setMA int) error {
	cmd, err := slc.NewNormalCommand(channel, maxMA, setMA)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// SetCurrent quick-sets the working current of a channel already in
// NORMAL mode without touching its limit.
func (c *Controller) SetCurrent(channel, setMA int) error {
	cmd, err := slc.NewCurrentCommand(channel, setMA)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// GetNormalParams returns the programmed NORMAL-mode current pair of a
// channel.
func (c *Controller) GetNormalParams(channel int) (slc.NormalParams, error) {
	cmd, err := slc.NewCurrentQuery(channel)
	if err != nil {
		return slc.NormalParams{}, err
	}
	payload, err := c.execData(cmd)
	if err != nil {
		return slc.NormalParams{}, err
	}
	return slc.ParseNormalParams(payload)
}

// GetLoadVoltage returns the measured LED head voltage of a channel in
// millivolts.
func (c *Controller) GetLoadVoltage(channel int) (int, error) {
	cmd, err := slc.NewLoadVoltageQuery(channel)
	if err != nil {
		return 0, err
	}
	payload, err := c.execData(cmd)
	if err != nil {
		return 0, err
	}
	return slc.ParseLoadVoltage(payload)
}

// SetStrobeParams programs the STROBE-mode parameters of a channel.
// repeat 0 runs the strobe sequence continuously.
func (c *Controller) SetStrobeParams(channel, maxMA, repeat int) error {
	cmd, err := slc.NewStrobeCommand(channel, maxMA, repeat)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// GetStrobeParams returns the programmed STROBE-mode parameters of a
// channel.
func (c *Controller) GetStrobeParams(channel int) (slc.StrobeParams, error) {
	cmd, err := slc.NewStrobeQuery(channel)
	if err != nil {
		return slc.StrobeParams{}, err
	}
	payload, err := c.execData(cmd)
	if err != nil {
		return slc.StrobeParams{}, err
	}
	return slc.ParseStrobeParams(payload)
}

// SetStrobeStep programs one step of a channel's strobe profile.
func (c *Controller) SetStrobeStep(channel, step, setMA, durationUS int) error {
	cmd, err := slc.NewStrobeStepCommand(channel, step, setMA, durationUS)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// GetStrobeProfile returns the controller's dump of a channel's strobe
// profile. The dump format varies between firmware revisions, so it is
// returned uninterpreted.
func (c *Controller) GetStrobeProfile(channel int) (string, error) {
	cmd, err := slc.NewStrobeProfileQuery(channel)
	if err != nil {
		return "", err
	}
	return c.execData(cmd)
}

// SetTriggerParams programs the TRIGGER-mode parameters of a channel.
func (c *Controller) SetTriggerParams(channel, maxMA int, polarity slc.TriggerPolarity) error {
	cmd, err := slc.NewTriggerCommand(channel, maxMA, polarity)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// GetTriggerParams returns the programmed TRIGGER-mode parameters of a
// channel.
func (c *Controller) GetTriggerParams(channel int) (slc.TriggerParams, error) {
	cmd, err := slc.NewTriggerQuery(channel)
	if err != nil {
		return slc.TriggerParams{}, err
	}
	payload, err := c.execData(cmd)
	if err != nil {
		return slc.TriggerParams{}, err
	}
	return slc.ParseTriggerParams(payload)
}

// SetTriggerStep programs one step of a channel's trigger profile.
func (c *Controller) SetTriggerStep(channel, step, setMA, durationUS int) error {
	cmd, err := slc.NewTriggerStepCommand(channel, step, setMA, durationUS)
	if err != nil {
		return err
	}
	return c.execAck(cmd)
}

// GetTriggerProfile returns the controller's dump of a channel's
// trigger profile, uninterpreted like GetStrobeProfile.
func (c *Controller) GetTriggerProfile(channel int) (string, error) {
	cmd, err := slc.NewTriggerProfileQuery(channel)
	if err != nil {
		return "", err
	}
	return c.execData(cmd)
}

// Store persists the current configuration to nonvolatile memory so it
// survives a power cycle.
func (c *Controller) Store() error {
	return c.execAck(slc.NewStoreCommand())
}

// Reset reboots the controller. The unit drops off the wire while it
// restarts.
func (c *Controller) Reset() error {
	return c.execAck(slc.NewResetCommand())
}

// RestoreDefaults restores the factory configuration.
func (c *Controller) RestoreDefaults() error {
	return c.execAck(slc.NewRestoreDefaultsCommand())
}

// Raw sends an arbitrary protocol line and returns the classified
// response without interpreting it.
func (c *Controller) Raw(line string) (slc.Response, error) {
	cmd, err := slc.NewRawCommand(line)
	if err != nil {
		return slc.Response{}, err
	}
	return c.exchange(cmd)
}

// Resolution returns the configured display resolution for current
// readings.
func (c *Controller) Resolution() slc.Resolution {
	return c.config.Resolution
}

// FormatCurrent renders a raw current reading using the configured
// resolution.
func (c *Controller) FormatCurrent(units int) string {
	return slc.FormatCurrent(units, c.config.Resolution)
}

// logDebug logs a debug message if a logger is configured.
func (c *Controller) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Controller) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Controller) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
