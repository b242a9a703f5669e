// Package midiport abstracts polled MIDI input behind a backend-neutral
// contract. Backends are resolved by API name, mirroring how the settings
// layer stores device references.
package midiport

import (
	"fmt"

	"go.uber.org/zap"
)

// Message is one raw MIDI message: the status byte, up to two data bytes,
// and the arrival time on the timebase clock in milliseconds.
type Message struct {
	Status byte
	Data1  byte
	Data2  byte
	TimeMs float64
}

// Input is a polled MIDI source. Poll is non-blocking and is invoked from
// the audio callback, so implementations must not block or take locks on
// that path, and keep per-call work to at most one small bounded read.
// Close is called from the control context only, never concurrently with
// Poll.
type Input interface {
	// Poll returns the next pending message, or ok=false when none is
	// pending.
	Poll() (msg Message, ok bool)
	IsOpen() bool
	Close() error
}

// Supported backend API names.
const (
	APIPortMidi = "portmidi"
	APIRtMidi   = "rtmidi"
)

// Open resolves api by name and opens the input port at the given index.
// An empty api selects portmidi.
func Open(api string, port int, log *zap.Logger) (Input, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch api {
	case APIPortMidi, "":
		return openPortMidi(port, log)
	case APIRtMidi:
		return openRtMidi(port, log)
	default:
		return nil, fmt.Errorf("midiport: unknown api %q", api)
	}
}
