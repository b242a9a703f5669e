package audioio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/klangwerk/hostcore/internal/timebase"
)

// PortAudio is the hardware-backed Backend.
type PortAudio struct{}

// Open initializes portaudio, resolves the device, and opens an interleaved
// float32 stream bound to cb. Input is best-effort: when the device cannot
// capture, the stream is opened output-only and the callback sees an empty
// input buffer. The stream does not run until Start.
func (PortAudio) Open(p StreamParams, cb Callback) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audioio: init: %w", err)
	}

	var (
		inDev, outDev *portaudio.DeviceInfo
		err           error
	)
	if p.DeviceIndex < 0 {
		outDev, err = portaudio.DefaultOutputDevice()
		if err == nil && p.InputChannels > 0 {
			// Missing input device is fine; the stream runs output-only.
			inDev, _ = portaudio.DefaultInputDevice()
		}
	} else {
		var devs []*portaudio.DeviceInfo
		devs, err = portaudio.Devices()
		if err == nil && p.DeviceIndex >= len(devs) {
			err = fmt.Errorf("device index %d out of range (have %d)", p.DeviceIndex, len(devs))
		}
		if err == nil {
			outDev = devs[p.DeviceIndex]
			if p.InputChannels > 0 {
				inDev = outDev
			}
		}
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audioio: open: %w", err)
	}
	if inDev != nil && inDev.MaxInputChannels < p.InputChannels {
		inDev = nil
	}

	s := &paStream{cb: cb, frames: p.BufferFrames}

	params := portaudio.LowLatencyParameters(inDev, outDev)
	if inDev != nil {
		params.Input.Channels = p.InputChannels
	}
	params.Output.Channels = p.OutputChannels
	params.SampleRate = p.SampleRate
	params.FramesPerBuffer = p.BufferFrames

	// The bindings match the callback signature to the stream's channel
	// layout, so an input-less stream needs the output-only form.
	var stream *portaudio.Stream
	if inDev != nil {
		stream, err = portaudio.OpenStream(params, s.processFull)
	} else {
		stream, err = portaudio.OpenStream(params, s.processOutput)
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audioio: open: %w", err)
	}

	s.pa = stream
	s.open = true
	return s, nil
}

type paStream struct {
	cb     Callback
	frames int

	// mu guards pa and open so the halt-path abort goroutine and a
	// concurrent Close never touch the stream after Terminate.
	mu   sync.Mutex
	pa   *portaudio.Stream
	open bool

	haltOnce sync.Once
	aborting sync.WaitGroup
}

// processFull adapts the duplex portaudio callback to the Callback contract.
// portaudio's stream clock is not the MIDI clock, so the block is stamped
// with the timebase clock instead of timeInfo.
func (s *paStream) processFull(in, out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	s.dispatch(in, out, flags)
}

func (s *paStream) processOutput(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	s.dispatch(nil, out, flags)
}

func (s *paStream) dispatch(in, out []float32, flags portaudio.StreamCallbackFlags) {
	frames := s.frames
	if n := len(out) / 2; n < frames {
		frames = n
	}
	underflow := flags&portaudio.OutputUnderflow != 0

	if s.cb(in, out, frames, timebase.NowMs(), underflow) == Halt {
		// The Go bindings cannot stop a stream from inside its own
		// callback; abort once from a separate goroutine. The abort takes
		// the stream lock and is skipped if Close got there first.
		s.haltOnce.Do(func() {
			s.aborting.Add(1)
			go func() {
				defer s.aborting.Done()
				s.mu.Lock()
				defer s.mu.Unlock()
				if s.open {
					_ = s.pa.Abort()
				}
			}()
		})
	}
}

func (s *paStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pa.Start(); err != nil {
		return fmt.Errorf("audioio: start: %w", err)
	}
	return nil
}

func (s *paStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	if err := s.pa.Stop(); err != nil {
		return fmt.Errorf("audioio: stop: %w", err)
	}
	return nil
}

func (s *paStream) Close() error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil
	}
	s.open = false
	err := s.pa.Close()
	portaudio.Terminate()
	s.mu.Unlock()

	// A pending abort either ran before we took the lock or sees open
	// false and does nothing; wait it out so the stream handle is dead
	// before the caller moves on.
	s.aborting.Wait()
	if err != nil {
		return fmt.Errorf("audioio: close: %w", err)
	}
	return nil
}

func (s *paStream) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *paStream) BufferFrames() int {
	return s.frames
}
