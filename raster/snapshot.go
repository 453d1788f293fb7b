package raster

import "strings"

// Snapshot is the value of every toggle at one point in time.
type Snapshot struct {
	enabled [numCaps]bool
}

// Capture reads the current toggles of dev.
func Capture(dev Device) Snapshot {
	var s Snapshot
	for _, c := range Caps {
		s.enabled[c] = dev.IsEnabled(c)
	}
	return s
}

// Enabled reports whether c was enabled when the snapshot was taken.
func (s Snapshot) Enabled(c Cap) bool {
	return s.enabled[c]
}

// Restore sets every toggle of dev back to its captured value.
// Toggles that already hold that value are left alone.
func (s Snapshot) Restore(dev Device) {
	for _, c := range Caps {
		on := dev.IsEnabled(c)
		switch {
		case s.enabled[c] && !on:
			dev.Enable(c)
		case !s.enabled[c] && on:
			dev.Disable(c)
		}
	}
}

// String lists the enabled toggles, e.g. "{Blend ScissorTest}".
func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, c := range Caps {
		if !s.enabled[c] {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
		first = false
	}
	b.WriteByte('}')
	return b.String()
}
