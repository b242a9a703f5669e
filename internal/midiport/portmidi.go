package midiport

import (
	"fmt"

	"github.com/rakyll/portmidi"
	"go.uber.org/zap"

	"github.com/klangwerk/hostcore/internal/timebase"
)

// portmidi's internal event queue depth for the input stream.
const portMidiQueueDepth = 512

// portMidiInput polls a portmidi input stream directly. portmidi stamps
// events in milliseconds on its own clock; the offset captured at open
// rebases them onto the timebase clock.
type portMidiInput struct {
	stream *portmidi.Stream
	offset float64
	log    *zap.Logger
	open   bool
}

func openPortMidi(port int, log *zap.Logger) (Input, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("midiport: portmidi init: %w", err)
	}
	if n := portmidi.CountDevices(); port < 0 || port >= n {
		portmidi.Terminate()
		return nil, fmt.Errorf("midiport: no device at index %d (have %d)", port, n)
	}
	info := portmidi.Info(portmidi.DeviceID(port))
	if info == nil || !info.IsInputAvailable {
		portmidi.Terminate()
		return nil, fmt.Errorf("midiport: device %d is not an input", port)
	}
	stream, err := portmidi.NewInputStream(portmidi.DeviceID(port), portMidiQueueDepth)
	if err != nil {
		portmidi.Terminate()
		return nil, fmt.Errorf("midiport: open input %d: %w", port, err)
	}
	log.Info("MIDI input open",
		zap.String("api", APIPortMidi),
		zap.Int("port", port),
		zap.String("name", info.Name))
	return &portMidiInput{
		stream: stream,
		offset: timebase.NowMs() - float64(portmidi.Time()),
		log:    log,
		open:   true,
	}, nil
}

func (p *portMidiInput) IsOpen() bool {
	return p.open
}

func (p *portMidiInput) Poll() (Message, bool) {
	if !p.open {
		return Message{}, false
	}
	pending, err := p.stream.Poll()
	if err != nil || !pending {
		return Message{}, false
	}
	// Read(1) makes a one-event slice; that is the single bounded read the
	// Input contract allows per call.
	events, err := p.stream.Read(1)
	if err != nil || len(events) == 0 {
		return Message{}, false
	}
	ev := events[0]
	return Message{
		Status: byte(ev.Status),
		Data1:  byte(ev.Data1),
		Data2:  byte(ev.Data2),
		TimeMs: float64(ev.Timestamp) + p.offset,
	}, true
}

func (p *portMidiInput) Close() error {
	if !p.open {
		return nil
	}
	p.open = false
	err := p.stream.Close()
	portmidi.Terminate()
	if err != nil {
		return fmt.Errorf("midiport: close: %w", err)
	}
	return nil
}
