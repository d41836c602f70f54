// SPDX-License-Identifier: Apache-2.0

package mightex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// Sentinel errors wrapped by TransportError.
var (
	// ErrNotOpen reports an exchange attempted on a transport that was
	// never opened or has been closed.
	ErrNotOpen = errors.New("transport not open")

	// ErrNoResponse reports that the controller sent nothing, or
	// nothing but whitespace, before the read deadline.
	ErrNoResponse = errors.New("no response from controller")
)

// TransportError reports a failed link-level operation: a port that
// could not be opened, a write that failed, or a read that produced no
// response in time.
type TransportError struct {
	Op      string // "open", "write", "read", "close", or a command verb
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport moves raw protocol lines between the Controller and an SLC
// device. WriteLine sends one framed command; ReadLine returns the
// bytes of one response line with the trailing terminator removed.
//
// Implementations need not be safe for concurrent use; the Controller
// issues one exchange at a time.
type Transport interface {
	Open() error
	WriteLine(p []byte) error
	ReadLine() ([]byte, error)
	Close() error
}

const (
	// readPoll is how long a single serial read blocks before the
	// transport deadline is rechecked.
	readPoll = 50 * time.Millisecond

	// drainDelay is how long ReadLine waits after the terminator for
	// the controller to finish emitting trailing bytes (the LF that
	// follows the CR) before the input buffer is cleared.
	drainDelay = 20 * time.Millisecond
)

// SerialTransport talks to an SLC controller over a local serial port
// with 8N1 framing.
type SerialTransport struct {
	portName string
	baud     int
	timeout  time.Duration
	port     serial.Port
}

// NewSerialTransport prepares a serial transport for the named port.
// Zero or negative baud and timeout select DefaultBaudRate and
// DefaultTimeout. The port is not touched until Open.
func NewSerialTransport(portName string, baud int, timeout time.Duration) *SerialTransport {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SerialTransport{portName: portName, baud: baud, timeout: timeout}
}

// Open opens the serial port. Opening an already-open transport is a
// no-op.
func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}
	mode := &serial.Mode{
		BaudRate: t.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(t.portName, mode)
	if err != nil {
		return &TransportError{Op: "open", Err: fmt.Errorf("%s: %w", t.portName, err)}
	}
	if err := port.SetReadTimeout(readPoll); err != nil {
		port.Close()
		return &TransportError{Op: "open", Err: err}
	}
	t.port = port
	return nil
}

// WriteLine sends one framed command. Stale bytes left over from a
// previous exchange are flushed first so they cannot be misread as
// this command's response.
func (t *SerialTransport) WriteLine(p []byte) error {
	if t.port == nil {
		return &TransportError{Op: "write", Err: ErrNotOpen}
	}
	if err := t.port.ResetInputBuffer(); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if _, err := t.port.Write(p); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// ReadLine accumulates bytes until the response terminator or the
// transport deadline. A line still unterminated when the deadline
// passes is returned as-is so the caller can classify the fragment;
// a deadline with no bytes at all is a timeout.
func (t *SerialTransport) ReadLine() ([]byte, error) {
	if t.port == nil {
		return nil, &TransportError{Op: "read", Err: ErrNotOpen}
	}
	deadline := time.Now().Add(t.timeout)
	line := make([]byte, 0, 64)
	buf := make([]byte, 64)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return nil, &TransportError{Op: "read", Err: err}
		}
		for i := 0; i < n; i++ {
			if buf[i] == slc.ResponseTerminator {
				line = append(line, buf[:i]...)
				t.drain()
				return line, nil
			}
		}
		line = append(line, buf[:n]...)
		if time.Now().After(deadline) {
			if len(line) > 0 {
				return line, nil
			}
			return nil, &TransportError{Op: "read", Err: ErrNoResponse, Timeout: true}
		}
	}
}

// drain waits briefly for trailing bytes after the terminator and
// discards them so the next exchange starts clean.
func (t *SerialTransport) drain() {
	time.Sleep(drainDelay)
	_ = t.port.ResetInputBuffer()
}

// Close releases the serial port. Closing an unopened transport is a
// no-op.
func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// deadlineSetter is implemented by streams that support read deadlines,
// such as net.Conn and the WebSocket bridge connection.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// StreamTransport adapts any byte stream that carries the SLC wire
// protocol, such as a serial-over-WebSocket bridge. If the stream
// implements SetReadDeadline, reads honor the transport timeout;
// otherwise ReadLine blocks until a terminator arrives.
//
// The LF the controller emits after each terminator stays buffered and
// is stripped with the rest of the surrounding whitespace on the next
// exchange.
type StreamTransport struct {
	stream  io.ReadWriteCloser
	br      *bufio.Reader
	timeout time.Duration
	open    bool
}

// NewStreamTransport wraps an already-connected stream. Zero or
// negative timeout selects DefaultTimeout.
func NewStreamTransport(stream io.ReadWriteCloser, timeout time.Duration) *StreamTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StreamTransport{
		stream:  stream,
		br:      bufio.NewReader(stream),
		timeout: timeout,
	}
}

// Open marks the transport ready. The underlying stream must already
// be connected.
func (t *StreamTransport) Open() error {
	if t.stream == nil {
		return &TransportError{Op: "open", Err: errors.New("nil stream")}
	}
	t.open = true
	return nil
}

// WriteLine sends one framed command over the stream.
func (t *StreamTransport) WriteLine(p []byte) error {
	if !t.open {
		return &TransportError{Op: "write", Err: ErrNotOpen}
	}
	if _, err := t.stream.Write(p); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// ReadLine returns the next response line without its terminator. A
// partial line interrupted by the deadline or EOF is returned as-is;
// a deadline with no bytes at all is a timeout.
func (t *StreamTransport) ReadLine() ([]byte, error) {
	if !t.open {
		return nil, &TransportError{Op: "read", Err: ErrNotOpen}
	}
	if ds, ok := t.stream.(deadlineSetter); ok {
		if err := ds.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
			return nil, &TransportError{Op: "read", Err: err}
		}
	}
	line, err := t.br.ReadBytes(slc.ResponseTerminator)
	if err != nil {
		if len(line) > 0 {
			return line, nil
		}
		if isTimeout(err) {
			return nil, &TransportError{Op: "read", Err: ErrNoResponse, Timeout: true}
		}
		return nil, &TransportError{Op: "read", Err: err}
	}
	return line[:len(line)-1], nil
}

// Close closes the underlying stream. Closing twice is a no-op.
func (t *StreamTransport) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	if err := t.stream.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
