package fdnotify

import (
	"strings"
)

// Events is a set of readiness kinds, a combination of EventRead,
// EventWrite, and EventError. The zero value is the empty set.
type Events uint8

const (
	// EventRead indicates the file descriptor is ready for reading.
	EventRead Events = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
	// EventError indicates an error condition on the file descriptor.
	EventError

	eventsMask = EventRead | EventWrite | EventError
)

// NoEvents returns the empty set, the starting point for the With* builders.
func NoEvents() Events { return 0 }

// WithRead returns a copy of the set, with EventRead added.
func (x Events) WithRead() Events { return x | EventRead }

// WithWrite returns a copy of the set, with EventWrite added.
func (x Events) WithWrite() Events { return x | EventWrite }

// WithError returns a copy of the set, with EventError added.
func (x Events) WithError() Events { return x | EventError }

// HasRead reports whether EventRead is in the set.
func (x Events) HasRead() bool { return x&EventRead != 0 }

// HasWrite reports whether EventWrite is in the set.
func (x Events) HasWrite() bool { return x&EventWrite != 0 }

// HasError reports whether EventError is in the set.
func (x Events) HasError() bool { return x&EventError != 0 }

// String renders the set as a "|" separated list, e.g. "read|write", or
// "none" for the empty set.
func (x Events) String() string {
	x &= eventsMask
	if x == 0 {
		return `none`
	}
	var b strings.Builder
	for _, v := range [...]struct {
		e    Events
		name string
	}{
		{EventRead, `read`},
		{EventWrite, `write`},
		{EventError, `error`},
	} {
		if x&v.e == 0 {
			continue
		}
		if b.Len() != 0 {
			b.WriteByte('|')
		}
		b.WriteString(v.name)
	}
	return b.String()
}
