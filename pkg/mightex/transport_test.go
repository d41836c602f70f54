// SPDX-License-Identifier: Apache-2.0

package mightex

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"
)

// fakeStream is an in-memory byte stream: reads consume the in buffer,
// writes land in the out buffer.
type fakeStream struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closes int
}

func (f *fakeStream) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeStream) Write(p []byte) (int, error) { return f.out.Write(p) }

func (f *fakeStream) Close() error {
	f.closes++
	return nil
}

func openStream(t *testing.T, input string) (*StreamTransport, *fakeStream) {
	t.Helper()
	fs := &fakeStream{}
	fs.in.WriteString(input)
	tr := NewStreamTransport(fs, time.Second)
	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return tr, fs
}

func TestStreamReadLineStripsTerminator(t *testing.T) {
	tr, _ := openStream(t, "##\r\n")

	line, err := tr.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if string(line) != "##" {
		t.Errorf("ReadLine() = %q, want %q", line, "##")
	}
}

func TestStreamReadLineLeavesTrailingLFForNextRead(t *testing.T) {
	tr, _ := openStream(t, "##\r\n#42\r\n")

	first, err := tr.ReadLine()
	if err != nil {
		t.Fatalf("first ReadLine() error = %v", err)
	}
	if string(first) != "##" {
		t.Errorf("first ReadLine() = %q, want %q", first, "##")
	}

	second, err := tr.ReadLine()
	if err != nil {
		t.Fatalf("second ReadLine() error = %v", err)
	}
	// The LF from the previous response rides along and is stripped
	// with the rest of the surrounding whitespace by the caller.
	if got := string(bytes.TrimSpace(second)); got != "#42" {
		t.Errorf("second ReadLine() = %q, want %q after trim", second, "#42")
	}
}

func TestStreamReadLinePartialAtEOF(t *testing.T) {
	tr, _ := openStream(t, "#12")

	line, err := tr.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if string(line) != "#12" {
		t.Errorf("ReadLine() = %q, want unterminated fragment", line)
	}
}

func TestStreamReadLineEOFWithNoData(t *testing.T) {
	tr, _ := openStream(t, "")

	_, err := tr.ReadLine()
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if terr.Timeout {
		t.Error("Timeout = true for EOF, want false")
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want wrapped io.EOF", err)
	}
}

func TestStreamWriteLine(t *testing.T) {
	tr, fs := openStream(t, "")

	if err := tr.WriteLine([]byte("MODE 1 1\n\r")); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if got := fs.out.String(); got != "MODE 1 1\n\r" {
		t.Errorf("wrote %q, want %q", got, "MODE 1 1\n\r")
	}
}

func TestStreamRequiresOpen(t *testing.T) {
	tr := NewStreamTransport(&fakeStream{}, time.Second)

	if err := tr.WriteLine([]byte("STORE\n\r")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("WriteLine() error = %v, want ErrNotOpen", err)
	}
	if _, err := tr.ReadLine(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ReadLine() error = %v, want ErrNotOpen", err)
	}
}

func TestStreamCloseIdempotent(t *testing.T) {
	tr, fs := openStream(t, "")

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if fs.closes != 1 {
		t.Errorf("stream closes = %d, want 1", fs.closes)
	}
}

func TestSerialTransportRequiresOpen(t *testing.T) {
	tr := NewSerialTransport("/dev/ttyUSB0", 0, 0)

	if err := tr.WriteLine([]byte("STORE\n\r")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("WriteLine() error = %v, want ErrNotOpen", err)
	}
	if _, err := tr.ReadLine(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ReadLine() error = %v, want ErrNotOpen", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close() before Open error = %v, want nil", err)
	}
}

func TestNewSerialTransportDefaults(t *testing.T) {
	tr := NewSerialTransport("/dev/ttyUSB0", 0, 0)

	if tr.baud != DefaultBaudRate {
		t.Errorf("baud = %d, want %d", tr.baud, DefaultBaudRate)
	}
	if tr.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", tr.timeout, DefaultTimeout)
	}
}

func TestTransportErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{
			name: "timeout",
			err:  &TransportError{Op: "read", Err: ErrNoResponse, Timeout: true},
			want: "read timed out: no response from controller",
		},
		{
			name: "plain failure",
			err:  &TransportError{Op: "open", Err: errors.New("permission denied")},
			want: "open failed: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	err := &TransportError{Op: "read", Err: ErrNoResponse, Timeout: true}

	if !errors.Is(err, ErrNoResponse) {
		t.Error("errors.Is(err, ErrNoResponse) = false")
	}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline exceeded", err: os.ErrDeadlineExceeded, want: true},
		{name: "net timeout", err: timeoutNetError{}, want: true},
		{name: "eof", err: io.EOF, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTimeout(tt.err); got != tt.want {
				t.Errorf("isTimeout(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
