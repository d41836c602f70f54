// SPDX-License-Identifier: Apache-2.0

package slc

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Mode
		wantErr bool
	}{
		{"disable", "0", ModeDisable, false},
		{"normal", "1", ModeNormal, false},
		{"strobe", "2", ModeStrobe, false},
		{"trigger", "3", ModeTrigger, false},
		{"padded", " 3 ", ModeTrigger, false},
		{"out of range", "7", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.payload)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("got %v, want ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParseNormalParams(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    NormalParams
		wantErr bool
	}{
		{
			name:    "calibration values then imax iset",
			payload: "50 60 200 100",
			want:    NormalParams{MaxCurrentMA: 200, SetCurrentMA: 100},
		},
		{
			name:    "zero calibration",
			payload: "0 0 100 50",
			want:    NormalParams{MaxCurrentMA: 100, SetCurrentMA: 50},
		},
		{
			name:    "extra trailing values ignored",
			payload: "1 2 300 150 9 9",
			want:    NormalParams{MaxCurrentMA: 300, SetCurrentMA: 150},
		},
		{name: "three values", payload: "200 100 50", wantErr: true},
		{name: "two values", payload: "200 100", wantErr: true},
		{name: "empty", payload: "", wantErr: true},
		{name: "non-integer imax", payload: "0 0 high 50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNormalParams(tt.payload)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("got %v, want ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseNormalParams(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParseStrobeParams(t *testing.T) {
	got, err := ParseStrobeParams("3500 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (StrobeParams{MaxCurrentMA: 3500, Repeat: 5}) {
		t.Errorf("got %+v", got)
	}

	if _, err := ParseStrobeParams("3500"); err == nil {
		t.Error("single value should fail")
	}
	if _, err := ParseStrobeParams("a b"); err == nil {
		t.Error("non-integers should fail")
	}
}

func TestParseTriggerParams(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    TriggerParams
		wantErr bool
	}{
		{"rising", "1000 0", TriggerParams{MaxCurrentMA: 1000, Polarity: PolarityRising}, false},
		{"falling", "1200 1", TriggerParams{MaxCurrentMA: 1200, Polarity: PolarityFalling}, false},
		{"bad polarity", "1000 2", TriggerParams{}, true},
		{"single value", "1000", TriggerParams{}, true},
		{"non-integer", "x y", TriggerParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTriggerParams(tt.payload)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("got %v, want ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTriggerParams(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParseLoadVoltage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"plain channel prefix", "1:3200", 3200, false},
		{"labelled channel prefix", "CHL1:3200", 3200, false},
		{"zero", "4:0", 0, false},
		{"no colon", "3200", 0, true},
		{"non-integer value", "1:abc", 0, true},
		{"negative value", "1:-5", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLoadVoltage(tt.payload)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("got %v, want ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLoadVoltage(%q) = %d, want %d", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParseDeviceInfo(t *testing.T) {
	raw := "Mightex LED Driver:3.1.8 Device Module No.:SLC-SA04-U/S Device Serial No.:04-251013-011"

	info, err := ParseDeviceInfo(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DriverName != "Mightex LED Driver" {
		t.Errorf("DriverName = %q, want %q", info.DriverName, "Mightex LED Driver")
	}
	if info.FirmwareVersion != "3.1.8" {
		t.Errorf("FirmwareVersion = %q, want %q", info.FirmwareVersion, "3.1.8")
	}
	if info.ModuleNumber != "SLC-SA04-U/S" {
		t.Errorf("ModuleNumber = %q, want %q", info.ModuleNumber, "SLC-SA04-U/S")
	}
	if info.SerialNumber != "04-251013-011" {
		t.Errorf("SerialNumber = %q, want %q", info.SerialNumber, "04-251013-011")
	}
	if info.Raw != raw {
		t.Errorf("Raw = %q, want the line preserved", info.Raw)
	}
}

func TestParseDeviceInfoMissingLabels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "unexpected garbage"},
		{"empty", ""},
		{"driver only", "Mightex LED Driver:2.0.0"},
		{"missing serial", "Mightex LED Driver:3.1.8 Device Module No.:SLC-SA04-U/S"},
		{"label with no value", "Mightex LED Driver:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeviceInfo(tt.raw)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("got %v, want ParseError", err)
			}
		})
	}
}
