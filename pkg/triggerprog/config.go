// SPDX-License-Identifier: Apache-2.0

// Package triggerprog programs SLC channels into trigger-follower mode
// from a YAML configuration file and verifies the result by reading the
// programmed state back.
//
// A config file names the serial port, whether to persist to
// nonvolatile memory afterwards, and one entry per channel:
//
//	port: /dev/ttyUSB0
//	store: true
//	channels:
//	  1:
//	    name: M850L3
//	    wavelength_nm: 850
//	    band: NIR-I
//	    current_ma: 1200
//	    max_current_ma: 1200
//	    polarity: rising
package triggerprog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

// ChannelConfig is the validated configuration for one SLC channel.
type ChannelConfig struct {
	Channel      int
	Name         string
	WavelengthNM int
	Band         string
	CurrentMA    int
	MaxCurrentMA int
	Polarity     slc.TriggerPolarity
}

// Label returns a human-readable channel label, e.g.
// "CH1 M850L3 (850 nm)".
func (c ChannelConfig) Label() string {
	return fmt.Sprintf("CH%d %s (%d nm)", c.Channel, c.Name, c.WavelengthNM)
}

// Config is a validated trigger programming configuration. Channels
// are sorted by channel number.
type Config struct {
	Port     string
	Store    bool
	Channels []ChannelConfig
}

// ConfigError reports an invalid trigger programming configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

type rawConfig struct {
	Port     string             `yaml:"port"`
	Store    *bool              `yaml:"store"`
	Channels map[int]rawChannel `yaml:"channels"`
}

type rawChannel struct {
	Name         *string `yaml:"name"`
	WavelengthNM *int    `yaml:"wavelength_nm"`
	Band         *string `yaml:"band"`
	CurrentMA    *int    `yaml:"current_ma"`
	MaxCurrentMA *int    `yaml:"max_current_ma"`
	Polarity     *string `yaml:"polarity"`
}

var polarities = map[string]slc.TriggerPolarity{
	"rising":  slc.PolarityRising,
	"falling": slc.PolarityFalling,
}

// LoadConfig reads and validates a trigger configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a YAML trigger configuration document.
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, configErrorf("invalid config: %v", err)
	}

	if raw.Port == "" {
		return Config{}, configErrorf("config must specify a non-empty 'port'")
	}
	store := true
	if raw.Store != nil {
		store = *raw.Store
	}
	if len(raw.Channels) == 0 {
		return Config{}, configErrorf("config must contain a non-empty 'channels' mapping")
	}

	channels := make([]ChannelConfig, 0, len(raw.Channels))
	for num, rc := range raw.Channels {
		ch, err := parseChannel(num, rc)
		if err != nil {
			return Config{}, err
		}
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Channel < channels[j].Channel
	})

	return Config{Port: raw.Port, Store: store, Channels: channels}, nil
}

func parseChannel(num int, raw rawChannel) (ChannelConfig, error) {
	if num < slc.MinChannel || num > slc.MaxChannel {
		return ChannelConfig{}, configErrorf("channel must be %d-%d, got %d",
			slc.MinChannel, slc.MaxChannel, num)
	}
	if raw.Name == nil || *raw.Name == "" {
		return ChannelConfig{}, configErrorf("channel %d: 'name' must be a non-empty string", num)
	}
	if raw.WavelengthNM == nil || *raw.WavelengthNM <= 0 {
		return ChannelConfig{}, configErrorf("channel %d: 'wavelength_nm' must be a positive integer", num)
	}
	if raw.CurrentMA == nil || *raw.CurrentMA < 0 {
		return ChannelConfig{}, configErrorf("channel %d: 'current_ma' must be a non-negative integer", num)
	}
	if raw.MaxCurrentMA == nil || *raw.MaxCurrentMA < 0 {
		return ChannelConfig{}, configErrorf("channel %d: 'max_current_ma' must be a non-negative integer", num)
	}
	if *raw.CurrentMA > *raw.MaxCurrentMA {
		return ChannelConfig{}, configErrorf("channel %d: current_ma (%d) exceeds max_current_ma (%d)",
			num, *raw.CurrentMA, *raw.MaxCurrentMA)
	}
	if *raw.MaxCurrentMA > slc.MaxCurrentPulsedMA {
		return ChannelConfig{}, configErrorf("channel %d: max_current_ma (%d) exceeds pulsed-mode limit (%d mA)",
			num, *raw.MaxCurrentMA, slc.MaxCurrentPulsedMA)
	}

	polarity := slc.PolarityRising
	if raw.Polarity != nil {
		p, ok := polarities[*raw.Polarity]
		if !ok {
			return ChannelConfig{}, configErrorf("channel %d: polarity must be \"rising\" or \"falling\", got %q",
				num, *raw.Polarity)
		}
		polarity = p
	}

	band := ""
	if raw.Band != nil {
		band = *raw.Band
	}

	return ChannelConfig{
		Channel:      num,
		Name:         *raw.Name,
		WavelengthNM: *raw.WavelengthNM,
		Band:         band,
		CurrentMA:    *raw.CurrentMA,
		MaxCurrentMA: *raw.MaxCurrentMA,
		Polarity:     polarity,
	}, nil
}
