// SPDX-License-Identifier: Apache-2.0

package slc

// NormalParams is the continuous-current configuration of a channel.
type NormalParams struct {
	MaxCurrentMA int
	SetCurrentMA int
}

// StrobeParams is the strobe configuration of a channel. Repeat 0 means
// the strobe sequence runs continuously.
type StrobeParams struct {
	MaxCurrentMA int
	Repeat       int
}

// TriggerParams is the externally-triggered configuration of a channel.
type TriggerParams struct {
	MaxCurrentMA int
	Polarity     TriggerPolarity
}

// ProfileStep is one (current, duration) pair of a strobe or trigger
// timing profile. A step with both values zero terminates the profile;
// steps stored after the terminator are not part of the active profile.
type ProfileStep struct {
	CurrentMA  int
	DurationUS int
}

// IsTerminator reports whether the step is the (0,0) end-of-profile
// marker.
func (s ProfileStep) IsTerminator() bool {
	return s.CurrentMA == 0 && s.DurationUS == 0
}

// TerminatorStep returns the (0,0) step that ends a profile.
func TerminatorStep() ProfileStep {
	return ProfileStep{}
}
