// SPDX-License-Identifier: Apache-2.0

package mightex

import (
	"time"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// Connection defaults for SLC controllers.
const (
	DefaultBaudRate = 9600
	DefaultTimeout  = time.Second
)

// Logger receives structured log events from the Controller. All
// methods take a message and optional key-value pairs.
//
// Implement this interface to route controller traffic into your
// application's logging framework. A nil logger disables logging.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the controller configuration.
type Config struct {
	// BaudRate is the serial line rate used by Open (ignored when the
	// Controller is constructed over an explicit Transport)
	BaudRate int

	// Timeout bounds each response read
	Timeout time.Duration

	// Resolution selects how current readings are rendered by display
	// helpers; it never changes what goes on the wire
	Resolution slc.Resolution

	// Logger receives command/response traffic (optional)
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		BaudRate:   DefaultBaudRate,
		Timeout:    DefaultTimeout,
		Resolution: slc.ResolutionMilliamp,
	}
}

// Option is a functional option for configuring the Controller.
type Option func(*Config)

// WithBaudRate sets the serial line rate used by Open.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		c.BaudRate = baud
	}
}

// WithTimeout sets how long each exchange waits for a response.
//
// Example:
//
//	ctrl, err := mightex.Open("/dev/ttyUSB0",
//	    mightex.WithTimeout(3*time.Second),
//	)
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithResolution sets the current resolution used when rendering
// readings for display. Newer SLC firmware reports tenths of a
// milliamp; older firmware reports whole milliamps.
func WithResolution(res slc.Resolution) Option {
	return func(c *Config) {
		c.Resolution = res
	}
}

// WithLogger sets a logger for controller traffic.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
