// SPDX-License-Identifier: Apache-2.0

package mightex

import (
	"errors"
	"strings"
	"testing"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// scriptTransport is a Transport test double. It records every frame
// written and replies with queued response lines, falling back to a
// bare ack when the queue runs out.
type scriptTransport struct {
	frames    [][]byte
	responses [][]byte
	openErr   error
	writeErr  error
	readErr   error
	opens     int
	closes    int
}

func (s *scriptTransport) Open() error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opens++
	return nil
}

func (s *scriptTransport) WriteLine(p []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	s.frames = append(s.frames, frame)
	return nil
}

func (s *scriptTransport) ReadLine() ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if len(s.responses) == 0 {
		return []byte("##"), nil
	}
	line := s.responses[0]
	s.responses = s.responses[1:]
	return line, nil
}

func (s *scriptTransport) Close() error {
	s.closes++
	return nil
}

func (s *scriptTransport) queue(lines ...string) {
	for _, l := range lines {
		s.responses = append(s.responses, []byte(l))
	}
}

// sent returns the recorded frames with the command framing stripped.
func (s *scriptTransport) sent() []string {
	out := make([]string, len(s.frames))
	for i, f := range s.frames {
		out[i] = strings.TrimSuffix(string(f), slc.CommandTerminator)
	}
	return out
}

// newTestController returns a connected Controller over a script
// transport with the echo setup frame already discarded.
func newTestController(t *testing.T) (*Controller, *scriptTransport) {
	t.Helper()
	tr := &scriptTransport{}
	c := New(tr)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	tr.frames = nil
	return c, tr
}

func TestConnectSendsEchoOff(t *testing.T) {
	tr := &scriptTransport{}
	c := New(tr)

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !c.Connected() {
		t.Error("Connected() = false after Connect")
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "ECHOOFF" {
		t.Errorf("frames after Connect = %v, want [ECHOOFF]", got)
	}
	if string(tr.frames[0]) != "ECHOOFF\n\r" {
		t.Errorf("echo frame = %q, want %q", tr.frames[0], "ECHOOFF\n\r")
	}
}

func TestConnectToleratesSilentEchoOff(t *testing.T) {
	tr := &scriptTransport{
		readErr: &TransportError{Op: "read", Err: ErrNoResponse, Timeout: true},
	}
	c := New(tr)

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v, want nil on echo timeout", err)
	}
	if !c.Connected() {
		t.Error("Connected() = false after Connect")
	}
}

func TestConnectOpenFailure(t *testing.T) {
	openErr := &TransportError{Op: "open", Err: errors.New("no such port")}
	tr := &scriptTransport{openErr: openErr}
	c := New(tr)

	if err := c.Connect(); !errors.Is(err, openErr.Err) {
		t.Errorf("Connect() error = %v, want wrapped %v", err, openErr.Err)
	}
	if c.Connected() {
		t.Error("Connected() = true after failed Connect")
	}
}

func TestConnectClosesTransportOnEchoWriteFailure(t *testing.T) {
	tr := &scriptTransport{
		writeErr: &TransportError{Op: "write", Err: errors.New("port vanished")},
	}
	c := New(tr)

	if err := c.Connect(); err == nil {
		t.Fatal("Connect() error = nil, want write failure")
	}
	if c.Connected() {
		t.Error("Connected() = true after failed Connect")
	}
	if tr.closes != 1 {
		t.Errorf("transport closes = %d, want 1", tr.closes)
	}
}

func TestCloseIdempotent(t *testing.T) {
	c, tr := newTestController(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if tr.closes != 1 {
		t.Errorf("transport closes = %d, want 1", tr.closes)
	}
	if c.Connected() {
		t.Error("Connected() = true after Close")
	}
}

func TestRunClosesOnEveryPath(t *testing.T) {
	wantErr := errors.New("inner failure")
	tr := &scriptTransport{}

	err := New(tr).Run(func(c *Controller) error {
		if !c.Connected() {
			t.Error("Connected() = false inside Run")
		}
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
	if tr.closes != 1 {
		t.Errorf("transport closes = %d, want 1", tr.closes)
	}
}

func TestExchangeRequiresConnect(t *testing.T) {
	c := New(&scriptTransport{})

	err := c.SetMode(1, slc.ModeNormal)
	if !errors.Is(err, ErrNotOpen) {
		t.Errorf("SetMode() before Connect error = %v, want ErrNotOpen", err)
	}
}

func TestSetterFrames(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Controller) error
		want string
	}{
		{
			name: "set mode",
			call: func(c *Controller) error { return c.SetMode(2, slc.ModeStrobe) },
			want: "MODE 2 2",
		},
		{
			name: "set normal params",
			call: func(c *Controller) error { return c.SetNormalParams(1, 200, 100) },
			want: "NORMAL 1 200 100",
		},
		{
			name: "set current",
			call: func(c *Controller) error { return c.SetCurrent(3, 250) },
			want: "CURRENT 3 250",
		},
		{
			name: "set strobe params",
			call: func(c *Controller) error { return c.SetStrobeParams(1, 2000, 5) },
			want: "STROBE 1 2000 5",
		},
		{
			name: "set strobe step",
			call: func(c *Controller) error { return c.SetStrobeStep(1, 0, 500, 250000) },
			want: "STRP 1 0 500 250000",
		},
		{
			name: "set trigger params",
			call: func(c *Controller) error { return c.SetTriggerParams(4, 3500, slc.PolarityFalling) },
			want: "TRIGGER 4 3500 1",
		},
		{
			name: "set trigger step",
			call: func(c *Controller) error { return c.SetTriggerStep(2, 1, 0, 0) },
			want: "TRIGP 2 1 0 0",
		},
		{
			name: "store",
			call: func(c *Controller) error { return c.Store() },
			want: "STORE",
		},
		{
			name: "reset",
			call: func(c *Controller) error { return c.Reset() },
			want: "RESET",
		},
		{
			name: "restore defaults",
			call: func(c *Controller) error { return c.RestoreDefaults() },
			want: "RESTOREDEF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tr := newTestController(t)

			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := tr.sent()
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("sent = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestValidationFailureSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Controller) error
	}{
		{
			name: "bad channel",
			call: func(c *Controller) error { return c.SetMode(5, slc.ModeNormal) },
		},
		{
			name: "normal current over ceiling",
			call: func(c *Controller) error { return c.SetNormalParams(1, 1001, 50) },
		},
		{
			name: "set exceeds max",
			call: func(c *Controller) error { return c.SetNormalParams(1, 100, 200) },
		},
		{
			name: "step out of range",
			call: func(c *Controller) error { return c.SetStrobeStep(1, 128, 100, 1000) },
		},
		{
			name: "negative repeat",
			call: func(c *Controller) error { return c.SetStrobeParams(1, 100, -1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tr := newTestController(t)

			err := tt.call(c)
			var verr *slc.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if len(tr.frames) != 0 {
				t.Errorf("frames sent on validation failure: %v", tr.sent())
			}
		})
	}
}

func TestGetMode(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#2")

	mode, err := c.GetMode(1)
	if err != nil {
		t.Fatalf("GetMode() error = %v", err)
	}
	if mode != slc.ModeStrobe {
		t.Errorf("GetMode() = %v, want %v", mode, slc.ModeStrobe)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "?MODE 1" {
		t.Errorf("sent = %v, want [?MODE 1]", got)
	}
}

func TestGetNormalParams(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#50 60 200 100")

	params, err := c.GetNormalParams(2)
	if err != nil {
		t.Fatalf("GetNormalParams() error = %v", err)
	}
	want := slc.NormalParams{MaxCurrentMA: 200, SetCurrentMA: 100}
	if params != want {
		t.Errorf("GetNormalParams() = %+v, want %+v", params, want)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "?CURRENT 2" {
		t.Errorf("sent = %v, want [?CURRENT 2]", got)
	}
}

func TestGetLoadVoltage(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#2:3300")

	mv, err := c.GetLoadVoltage(2)
	if err != nil {
		t.Fatalf("GetLoadVoltage() error = %v", err)
	}
	if mv != 3300 {
		t.Errorf("GetLoadVoltage() = %d, want 3300", mv)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "LoadVoltage 2" {
		t.Errorf("sent = %v, want [LoadVoltage 2]", got)
	}
}

func TestGetStrobeParams(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#2000 5")

	params, err := c.GetStrobeParams(1)
	if err != nil {
		t.Fatalf("GetStrobeParams() error = %v", err)
	}
	want := slc.StrobeParams{MaxCurrentMA: 2000, Repeat: 5}
	if params != want {
		t.Errorf("GetStrobeParams() = %+v, want %+v", params, want)
	}
}

func TestGetTriggerParams(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#3000 1")

	params, err := c.GetTriggerParams(3)
	if err != nil {
		t.Fatalf("GetTriggerParams() error = %v", err)
	}
	want := slc.TriggerParams{MaxCurrentMA: 3000, Polarity: slc.PolarityFalling}
	if params != want {
		t.Errorf("GetTriggerParams() = %+v, want %+v", params, want)
	}
}

func TestGetProfileDumpsReturnedVerbatim(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#0:500,250000 1:0,0")

	dump, err := c.GetTriggerProfile(1)
	if err != nil {
		t.Fatalf("GetTriggerProfile() error = %v", err)
	}
	if dump != "0:500,250000 1:0,0" {
		t.Errorf("GetTriggerProfile() = %q", dump)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "?TRIGP 1" {
		t.Errorf("sent = %v, want [?TRIGP 1]", got)
	}
}

func TestDeviceInfo(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("Mightex LED Driver:3.1.8 Device Module No.:SLC-SA04-U/S Device Serial No.:04-251013-011")

	info, err := c.DeviceInfo()
	if err != nil {
		t.Fatalf("DeviceInfo() error = %v", err)
	}
	if info.DriverName != "Mightex LED Driver" {
		t.Errorf("DriverName = %q", info.DriverName)
	}
	if info.FirmwareVersion != "3.1.8" {
		t.Errorf("FirmwareVersion = %q", info.FirmwareVersion)
	}
	if info.ModuleNumber != "SLC-SA04-U/S" {
		t.Errorf("ModuleNumber = %q", info.ModuleNumber)
	}
	if info.SerialNumber != "04-251013-011" {
		t.Errorf("SerialNumber = %q", info.SerialNumber)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "DEVICEINFO" {
		t.Errorf("sent = %v, want [DEVICEINFO]", got)
	}
}

func TestDeviceInfoRejectionMarker(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#!")

	_, err := c.DeviceInfo()
	var cerr *slc.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if cerr.Kind != slc.ResponseSoftError {
		t.Errorf("Kind = %v, want %v", cerr.Kind, slc.ResponseSoftError)
	}
}

func TestSoftErrorCarriesModeHint(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Controller) error
		wantOp   string
		wantMode slc.Mode
	}{
		{
			name:     "current setter",
			call:     func(c *Controller) error { return c.SetCurrent(1, 50) },
			wantOp:   "CURRENT",
			wantMode: slc.ModeNormal,
		},
		{
			name: "strobe query",
			call: func(c *Controller) error {
				_, err := c.GetStrobeParams(1)
				return err
			},
			wantOp:   "?STROBE",
			wantMode: slc.ModeStrobe,
		},
		{
			name:     "trigger step",
			call:     func(c *Controller) error { return c.SetTriggerStep(1, 0, 100, 1000) },
			wantOp:   "TRIGP",
			wantMode: slc.ModeTrigger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tr := newTestController(t)
			tr.queue("#!")

			err := tt.call(c)
			var cerr *slc.CommandError
			if !errors.As(err, &cerr) {
				t.Fatalf("error = %v, want CommandError", err)
			}
			if cerr.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", cerr.Op, tt.wantOp)
			}
			if !cerr.ModeMismatch {
				t.Error("ModeMismatch = false, want true")
			}
			if cerr.WantMode != tt.wantMode {
				t.Errorf("WantMode = %v, want %v", cerr.WantMode, tt.wantMode)
			}
		})
	}
}

func TestSoftErrorWithoutModeHint(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#!")

	err := c.SetMode(1, slc.ModeNormal)
	var cerr *slc.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if cerr.ModeMismatch {
		t.Error("ModeMismatch = true for MODE, want false")
	}
}

func TestInvalidParameterResponse(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#?")

	err := c.SetNormalParams(1, 1000, 50)
	var cerr *slc.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if cerr.Kind != slc.ResponseInvalidParam {
		t.Errorf("Kind = %v, want %v", cerr.Kind, slc.ResponseInvalidParam)
	}
}

func TestUnexpectedDataResponseToSetter(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("#100 50")

	err := c.SetMode(1, slc.ModeNormal)
	var cerr *slc.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if cerr.Kind != slc.ResponseAckData {
		t.Errorf("Kind = %v, want %v", cerr.Kind, slc.ResponseAckData)
	}
}

func TestBareAckResponseToQuery(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("##")

	_, err := c.GetMode(1)
	var cerr *slc.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CommandError", err)
	}
	if cerr.Kind != slc.ResponseAck {
		t.Errorf("Kind = %v, want %v", cerr.Kind, slc.ResponseAck)
	}
}

func TestEmptyResponseIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty line", line: ""},
		{name: "whitespace only", line: "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tr := newTestController(t)
			tr.queue(tt.line)

			err := c.Store()
			if !errors.Is(err, ErrNoResponse) {
				t.Fatalf("error = %v, want ErrNoResponse", err)
			}
			var terr *TransportError
			if !errors.As(err, &terr) || !terr.Timeout {
				t.Errorf("error = %v, want timeout TransportError", err)
			}
		})
	}
}

func TestRawReturnsClassifiedResponse(t *testing.T) {
	c, tr := newTestController(t)
	tr.queue("GETMUX is not defined")

	resp, err := c.Raw("GETMUX 1")
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	if resp.Kind != slc.ResponseUndefined {
		t.Errorf("Kind = %v, want %v", resp.Kind, slc.ResponseUndefined)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "GETMUX 1" {
		t.Errorf("sent = %v, want [GETMUX 1]", got)
	}
}

func TestRawRejectsEmptyLine(t *testing.T) {
	c, tr := newTestController(t)

	_, err := c.Raw("   ")
	var verr *slc.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(tr.frames) != 0 {
		t.Errorf("frames sent for empty raw line: %v", tr.sent())
	}
}

func TestReconnectRunsEchoSetupAgain(t *testing.T) {
	c, tr := newTestController(t)

	if err := c.Reconnect(); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	if tr.opens != 2 {
		t.Errorf("transport opens = %d, want 2", tr.opens)
	}
	if got := tr.sent(); len(got) != 1 || got[0] != "ECHOOFF" {
		t.Errorf("frames after Reconnect = %v, want [ECHOOFF]", got)
	}
}

func TestFormatCurrentUsesConfiguredResolution(t *testing.T) {
	c := New(&scriptTransport{}, WithResolution(slc.ResolutionTenthMilliamp))

	if got := c.FormatCurrent(75); got != "7.5 mA" {
		t.Errorf("FormatCurrent(75) = %q, want %q", got, "7.5 mA")
	}
	if got := c.Resolution(); got != slc.ResolutionTenthMilliamp {
		t.Errorf("Resolution() = %v", got)
	}
}
