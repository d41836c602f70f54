// SPDX-License-Identifier: Apache-2.0

package slc

import "strings"

// DeviceInfo is the identity snapshot returned by the DEVICEINFO
// command. Raw preserves the line exactly as the instrument sent it.
type DeviceInfo struct {
	DriverName      string
	FirmwareVersion string
	ModuleNumber    string
	SerialNumber    string
	Raw             string
}

// DEVICEINFO field labels. A typical identity line:
//
//	Mightex LED Driver:3.1.8 Device Module No.:SLC-SA04-U/S Device Serial No.:04-251013-011
const (
	labelDriver = "Driver:"
	labelModule = "Module No.:"
	labelSerial = "Serial No.:"
)

// ParseDeviceInfo parses a DEVICEINFO identity line into its four
// fields. The driver name is the text up to and including the word
// "Driver"; firmware, module number and serial number are the single
// tokens following their labels. A line missing any label fails with a
// *ParseError rather than producing a partial struct.
func ParseDeviceInfo(raw string) (DeviceInfo, error) {
	info := DeviceInfo{Raw: raw}

	idx := strings.Index(raw, labelDriver)
	if idx < 0 {
		return DeviceInfo{}, &ParseError{Op: "DEVICEINFO", Raw: raw, Msg: "missing " + labelDriver + " label"}
	}
	info.DriverName = strings.TrimSpace(raw[:idx] + "Driver")

	var err error
	if info.FirmwareVersion, err = tokenAfter(raw, labelDriver); err != nil {
		return DeviceInfo{}, err
	}
	if info.ModuleNumber, err = tokenAfter(raw, labelModule); err != nil {
		return DeviceInfo{}, err
	}
	if info.SerialNumber, err = tokenAfter(raw, labelSerial); err != nil {
		return DeviceInfo{}, err
	}
	return info, nil
}

// tokenAfter returns the first whitespace-delimited token following
// label in raw.
func tokenAfter(raw, label string) (string, error) {
	idx := strings.Index(raw, label)
	if idx < 0 {
		return "", &ParseError{Op: "DEVICEINFO", Raw: raw, Msg: "missing " + label + " label"}
	}
	rest := raw[idx+len(label):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", &ParseError{Op: "DEVICEINFO", Raw: raw, Msg: "no value after " + label + " label"}
	}
	return fields[0], nil
}
