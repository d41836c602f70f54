// SPDX-License-Identifier: Apache-2.0

package triggerprog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lkaising/mightex-slc-test/pkg/slc"
)

const validConfig = `port: /dev/ttyUSB0
store: true
channels:
  1:
    name: M850L3
    wavelength_nm: 850
    band: NIR-I
    current_ma: 1200
    max_current_ma: 1200
    polarity: rising
  2:
    name: M940L3
    wavelength_nm: 940
    band: NIR-I
    current_ma: 1000
    max_current_ma: 1000
    polarity: rising
  3:
    name: M1050L4
    wavelength_nm: 1050
    band: NIR-II
    current_ma: 600
    max_current_ma: 600
    polarity: rising
`

const minimalConfig = `port: /dev/ttyUSB0
channels:
  1:
    name: TestLED
    wavelength_nm: 850
    band: NIR-I
    current_ma: 100
    max_current_ma: 200
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trigger_config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q, want /dev/ttyUSB0", cfg.Port)
	}
	if !cfg.Store {
		t.Error("Store = false, want true")
	}
	if len(cfg.Channels) != 3 {
		t.Fatalf("len(Channels) = %d, want 3", len(cfg.Channels))
	}

	ch1 := cfg.Channels[0]
	want := ChannelConfig{
		Channel:      1,
		Name:         "M850L3",
		WavelengthNM: 850,
		Band:         "NIR-I",
		CurrentMA:    1200,
		MaxCurrentMA: 1200,
		Polarity:     slc.PolarityRising,
	}
	if ch1 != want {
		t.Errorf("Channels[0] = %+v, want %+v", ch1, want)
	}
}

func TestLoadConfigStoreDefaultsTrue(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Store {
		t.Error("Store = false, want default true")
	}
}

func TestLoadConfigPolarityDefaultsRising(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Channels[0].Polarity != slc.PolarityRising {
		t.Errorf("Polarity = %v, want rising", cfg.Channels[0].Polarity)
	}
}

func TestLoadConfigFallingPolarity(t *testing.T) {
	content := `port: /dev/ttyUSB0
channels:
  1:
    name: LED1
    wavelength_nm: 850
    band: NIR-I
    current_ma: 100
    max_current_ma: 200
    polarity: falling
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Channels[0].Polarity != slc.PolarityFalling {
		t.Errorf("Polarity = %v, want falling", cfg.Channels[0].Polarity)
	}
}

func TestLoadConfigChannelsSortedByNumber(t *testing.T) {
	content := `port: /dev/ttyUSB0
channels:
  3:
    name: LED3
    wavelength_nm: 1050
    band: NIR-II
    current_ma: 600
    max_current_ma: 600
  1:
    name: LED1
    wavelength_nm: 850
    band: NIR-I
    current_ma: 1200
    max_current_ma: 1200
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	var got []int
	for _, ch := range cfg.Channels {
		got = append(got, ch.Channel)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("channel order = %v, want [1 3]", got)
	}
}

func TestChannelLabel(t *testing.T) {
	ch := ChannelConfig{Channel: 1, Name: "M850L3", WavelengthNM: 850}
	if got := ch.Label(); got != "CH1 M850L3 (850 nm)" {
		t.Errorf("Label() = %q", got)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPart string
	}{
		{
			name:     "not a mapping",
			content:  "- just\n- a\n- list\n",
			wantPart: "invalid config",
		},
		{
			name: "missing port",
			content: `channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 200
`,
			wantPart: "port",
		},
		{
			name:     "missing channels",
			content:  "port: /dev/ttyUSB0\n",
			wantPart: "channels",
		},
		{
			name:     "empty channels",
			content:  "port: /dev/ttyUSB0\nchannels: {}\n",
			wantPart: "channels",
		},
		{
			name: "channel number out of range",
			content: `port: /dev/ttyUSB0
channels:
  9:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 200
`,
			wantPart: "1-4",
		},
		{
			name: "missing name",
			content: `port: /dev/ttyUSB0
channels:
  1:
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 200
`,
			wantPart: "name",
		},
		{
			name: "missing current",
			content: `port: /dev/ttyUSB0
channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    max_current_ma: 200
`,
			wantPart: "current_ma",
		},
		{
			name: "current exceeds max",
			content: `port: /dev/ttyUSB0
channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 500
    max_current_ma: 200
`,
			wantPart: "exceeds",
		},
		{
			name: "max exceeds pulsed limit",
			content: `port: /dev/ttyUSB0
channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 4000
`,
			wantPart: "3500",
		},
		{
			name: "unknown polarity",
			content: `port: /dev/ttyUSB0
channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 200
    polarity: both_edges
`,
			wantPart: "polarity",
		},
		{
			name: "store not a bool",
			content: `port: /dev/ttyUSB0
store: "yes"
channels:
  1:
    name: LED
    wavelength_nm: 850
    band: NIR
    current_ma: 100
    max_current_ma: 200
`,
			wantPart: "invalid config",
		},
		{
			name: "zero wavelength",
			content: `port: /dev/ttyUSB0
channels:
  1:
    name: LED
    wavelength_nm: 0
    band: NIR
    current_ma: 100
    max_current_ma: 200
`,
			wantPart: "wavelength_nm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want ConfigError")
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("error = %v (%T), want ConfigError", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("error = %q, want substring %q", err, tt.wantPart)
			}
		})
	}
}

func TestParseWithoutFile(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "TestLED" {
		t.Errorf("Parse() = %+v", cfg)
	}
}
