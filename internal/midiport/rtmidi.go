package midiport

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"github.com/klangwerk/hostcore/internal/timebase"
)

const rtMidiQueueDepth = 512

// rtMidiInput adapts the callback-driven rtmidi driver to the polled Input
// contract. The listener goroutine pushes into a bounded fifo; the audio
// thread pops. A full fifo drops the newest message rather than stalling
// the listener.
type rtMidiInput struct {
	drv      *rtmididrv.Driver
	port     drivers.In
	stop     func()
	queue    *fifo
	openedMs float64
	log      *zap.Logger
	open     bool
}

func openRtMidi(port int, log *zap.Logger) (Input, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiport: rtmidi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiport: rtmidi inputs: %w", err)
	}
	if port < 0 || port >= len(ins) {
		drv.Close()
		return nil, fmt.Errorf("midiport: no input port at index %d (have %d)", port, len(ins))
	}
	in := ins[port]
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiport: open port %d: %w", port, err)
	}

	r := &rtMidiInput{
		drv:      drv,
		port:     in,
		queue:    newFifo(rtMidiQueueDepth),
		openedMs: timebase.NowMs(),
		log:      log,
		open:     true,
	}
	stop, err := midi.ListenTo(in, r.enqueue, midi.HandleError(func(listenErr error) {
		log.Warn("MIDI listener error", zap.Error(listenErr))
	}))
	if err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("midiport: listen on port %d: %w", port, err)
	}
	r.stop = stop
	log.Info("MIDI input open",
		zap.String("api", APIRtMidi),
		zap.Int("port", port),
		zap.String("name", in.String()))
	return r, nil
}

// enqueue runs on the driver's listener goroutine. Driver timestamps are
// milliseconds since listening started; a negative value means the driver
// did not stamp the message.
func (r *rtMidiInput) enqueue(msg midi.Message, timestampms int32) {
	raw := msg.Bytes()
	if len(raw) == 0 {
		return
	}
	m := Message{Status: raw[0]}
	if len(raw) > 1 {
		m.Data1 = raw[1]
	}
	if len(raw) > 2 {
		m.Data2 = raw[2]
	}
	if timestampms >= 0 {
		m.TimeMs = r.openedMs + float64(timestampms)
	} else {
		m.TimeMs = timebase.NowMs()
	}
	if !r.queue.push(m) {
		r.log.Warn("MIDI queue full, message dropped")
	}
}

func (r *rtMidiInput) IsOpen() bool {
	return r.open
}

func (r *rtMidiInput) Poll() (Message, bool) {
	if !r.open {
		return Message{}, false
	}
	return r.queue.pop()
}

func (r *rtMidiInput) Close() error {
	if !r.open {
		return nil
	}
	r.open = false
	if r.stop != nil {
		r.stop()
	}
	err := r.port.Close()
	r.drv.Close()
	if err != nil {
		return fmt.Errorf("midiport: close: %w", err)
	}
	return nil
}
