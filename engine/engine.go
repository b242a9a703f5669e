// Package engine implements the real-time execution core: it owns the
// hardware audio stream, the MIDI input port, the scratch buffers, and the
// hosted unit's lifecycle.
//
// Two contexts touch an Engine. The control context calls Start, Stop,
// LoadPlugin, UnloadPlugin, and Close; those calls are serialized by an
// internal mutex. The driver's audio thread invokes the callback; that path
// takes no lock and performs no allocation. The shared stream state is a
// single atomic value, and the buffers are wired in before the stream starts
// and released only after it is fully closed.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/klangwerk/hostcore"
	"github.com/klangwerk/hostcore/internal/audioio"
	"github.com/klangwerk/hostcore/internal/midiport"
)

// Engine drives at most one hardware stream at a time.
type Engine struct {
	host     hostcore.PluginHost
	settings hostcore.SettingsProvider

	log  *zap.Logger
	errh hostcore.ErrorHandler

	// control serializes the lifecycle entry points. The audio thread never
	// takes it.
	control sync.Mutex

	state streamState
	bufs  bufferSet

	audioBackend audioio.Backend
	stream       audioio.Stream

	openMIDI midiOpener
	midiIn   midiport.Input

	nframes    int
	sampleRate float64

	steadyTime atomic.Int64
	underflows atomic.Int64

	parentWindow hostcore.WindowHandle

	idleEvery time.Duration
	idleStop  chan struct{}
	idleDone  chan struct{}
	closeOnce sync.Once
}

type midiOpener func(api string, port int, log *zap.Logger) (midiport.Input, error)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithErrorHandler sets the sink for faults raised outside a control call.
func WithErrorHandler(h hostcore.ErrorHandler) Option {
	return func(e *Engine) { e.errh = h }
}

// WithAudioBackend replaces the hardware audio backend.
func WithAudioBackend(b audioio.Backend) Option {
	return func(e *Engine) { e.audioBackend = b }
}

// WithMIDIOpener replaces the MIDI input opener.
func WithMIDIOpener(open func(api string, port int, log *zap.Logger) (midiport.Input, error)) Option {
	return func(e *Engine) { e.openMIDI = open }
}

// WithIdleInterval sets the period of the hosted unit's idle servicing.
func WithIdleInterval(d time.Duration) Option {
	return func(e *Engine) { e.idleEvery = d }
}

// New wires an engine around the hosted unit and starts the idle service
// loop. Call Close to release everything.
func New(host hostcore.PluginHost, settings hostcore.SettingsProvider, opts ...Option) *Engine {
	if host == nil {
		panic("engine: nil PluginHost")
	}
	if settings == nil {
		panic("engine: nil SettingsProvider")
	}
	e := &Engine{
		host:         host,
		settings:     settings,
		log:          zap.NewNop(),
		audioBackend: audioio.PortAudio{},
		openMIDI:     midiport.Open,
		idleEvery:    time.Second / 30,
		idleStop:     make(chan struct{}),
		idleDone:     make(chan struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	if e.errh == nil {
		e.errh = hostcore.LogErrorHandler{Logger: e.log}
	}
	go e.idleLoop()
	return e
}

// idleLoop services the hosted unit's non-real-time housekeeping away from
// the audio thread.
func (e *Engine) idleLoop() {
	defer close(e.idleDone)
	t := time.NewTicker(e.idleEvery)
	defer t.Stop()
	for {
		select {
		case <-e.idleStop:
			return
		case <-t.C:
			e.host.Idle()
		}
	}
}

// Start opens the MIDI input and the hardware stream, wires the scratch
// buffers into the hosted unit, activates it at the negotiated parameters,
// and starts the stream.
//
// A MIDI failure is not fatal: the engine runs without MIDI input. An audio
// failure rolls everything back to a full stop and is returned; the engine
// is then Stopped, as if Start had never been called.
//
// Calling Start in any state other than Stopped is a programming error and
// panics.
func (e *Engine) Start() error {
	e.control.Lock()
	defer e.control.Unlock()

	if st := e.state.load(); st != StateStopped {
		panic("engine: Start while " + st.String())
	}

	ms := e.settings.MIDI()
	in, err := e.openMIDI(ms.API, ms.PortIndex, e.log)
	if err != nil {
		e.log.Warn("MIDI input unavailable, continuing without it",
			zap.String("api", ms.API),
			zap.Int("port", ms.PortIndex),
			zap.Error(err))
		in = nil
	}
	e.midiIn = in

	as := e.settings.Audio()
	e.sampleRate = as.SampleRate

	// The stream may call back as soon as it starts, before we have seen
	// the negotiated block size, so the regions are sized to the reserve.
	e.bufs.allocate(bufferReserveBytes)

	stream, err := e.audioBackend.Open(audioio.StreamParams{
		DeviceIndex:    as.DeviceIndex,
		SampleRate:     as.SampleRate,
		BufferFrames:   as.BufferFrames,
		InputChannels:  2,
		OutputChannels: 2,
	}, e.processBlock)
	if err != nil {
		e.log.Error("audio stream open failed", zap.Error(err))
		e.stopLocked()
		return fmt.Errorf("engine: start: %w", err)
	}
	e.stream = stream
	e.nframes = stream.BufferFrames()

	// The driver has the final word on the block size. The reserve covers
	// anything sane, but if the negotiation came back larger the regions
	// must grow before the unit sees them; callbacks cannot arrive until
	// the stream starts.
	if need := e.nframes * bytesPerSample; need > bufferReserveBytes {
		e.bufs.allocate(need)
	}

	e.host.SetPorts(e.bufs.inputs[:], e.bufs.outputs[:])
	e.host.Activate(e.sampleRate, e.nframes)

	e.state.store(StateRunning)

	if err := stream.Start(); err != nil {
		e.log.Error("audio stream start failed", zap.Error(err))
		e.stopLocked()
		return fmt.Errorf("engine: start: %w", err)
	}

	e.log.Info("engine running",
		zap.Float64("sampleRate", e.sampleRate),
		zap.Int("blockFrames", e.nframes),
		zap.Bool("midi", e.midiIn != nil))
	return nil
}

// Stop deactivates the hosted unit, tears the stream and the MIDI port down,
// releases the buffers, and forces the state to Stopped. Safe to call in any
// state; it is also the rollback path of a failed Start.
func (e *Engine) Stop() {
	e.control.Lock()
	defer e.control.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.host.Deactivate()

	e.state.compareAndSwap(StateRunning, StateStopping)

	if e.stream != nil {
		if e.stream.IsOpen() {
			if err := e.stream.Stop(); err != nil {
				// Already halted by the callback's stop signal.
				e.log.Debug("stream stop", zap.Error(err))
			}
			if err := e.stream.Close(); err != nil {
				e.errh.HandleError(err)
			}
		}
		e.stream = nil
	}

	if e.midiIn != nil {
		if err := e.midiIn.Close(); err != nil {
			e.errh.HandleError(err)
		}
		e.midiIn = nil
	}

	// The stream is fully closed: the driver delivers no further callbacks,
	// so nothing can observe the buffers going away.
	e.bufs.release()
	e.state.store(StateStopped)
	e.log.Info("engine stopped")
}

// LoadPlugin loads the unit at index within the bundle at path and, on
// success, hands it the parent window for any embedded editor. Reports
// whether the load succeeded.
func (e *Engine) LoadPlugin(path string, index int) bool {
	e.control.Lock()
	defer e.control.Unlock()

	if err := e.host.Load(path, index); err != nil {
		e.log.Error("plugin load failed",
			zap.String("path", path),
			zap.Int("index", index),
			zap.Error(err))
		return false
	}
	e.host.SetParentWindow(e.parentWindow)
	return true
}

// UnloadPlugin unloads the hosted unit and releases the scratch regions. A
// live stream is stopped first; the callback must never find the regions
// gone.
func (e *Engine) UnloadPlugin() {
	e.control.Lock()
	defer e.control.Unlock()
	if e.state.load() != StateStopped {
		e.stopLocked()
	}
	e.host.Unload()
	e.bufs.release()
}

// SetParentWindow records the native window the next successful LoadPlugin
// forwards to the hosted unit.
func (e *Engine) SetParentWindow(w hostcore.WindowHandle) {
	e.control.Lock()
	defer e.control.Unlock()
	e.parentWindow = w
}

// State returns the current stream state.
func (e *Engine) State() StreamState {
	return e.state.load()
}

// IsRunning reports whether the stream is live.
func (e *Engine) IsRunning() bool {
	return e.state.load() == StateRunning
}

// SteadyTime is the number of sample frames processed since construction, a
// continuous time base for the hosted unit.
func (e *Engine) SteadyTime() int64 {
	return e.steadyTime.Load()
}

// Underflows counts blocks the driver reported as underruns.
func (e *Engine) Underflows() int64 {
	return e.underflows.Load()
}

// Close stops the idle loop, stops the stream, and unloads the hosted unit.
// The engine must not be used afterwards.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.idleStop)
		<-e.idleDone
	})
	e.Stop()
	e.UnloadPlugin()
}
