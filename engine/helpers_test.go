package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/klangwerk/hostcore"
	"github.com/klangwerk/hostcore/internal/audioio"
	"github.com/klangwerk/hostcore/internal/midiport"
)

// recordingHost captures every bridge call in order.
type recordingHost struct {
	mu        sync.Mutex
	calls     []string
	loadErr   error
	window    hostcore.WindowHandle
	inPorts   [][]float32
	outPorts  [][]float32
	idleCount int
}

func (h *recordingHost) record(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *recordingHost) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *recordingHost) Load(path string, index int) error {
	h.record("load %s %d", path, index)
	return h.loadErr
}

func (h *recordingHost) Unload() { h.record("unload") }

func (h *recordingHost) SetParentWindow(w hostcore.WindowHandle) {
	h.mu.Lock()
	h.window = w
	h.mu.Unlock()
	h.record("setParentWindow %d", w)
}

func (h *recordingHost) SetPorts(in, out [][]float32) {
	h.mu.Lock()
	h.inPorts, h.outPorts = in, out
	h.mu.Unlock()
	h.record("setPorts %d %d", len(in), len(out))
}

func (h *recordingHost) Activate(sampleRate float64, maxBlock int) {
	h.record("activate %v %d", sampleRate, maxBlock)
}

func (h *recordingHost) Deactivate()        { h.record("deactivate") }
func (h *recordingHost) ProcessBegin(n int) { h.record("begin %d", n) }
func (h *recordingHost) Process()           { h.record("process") }

func (h *recordingHost) ProcessNoteOn(off int32, ch, key, vel uint8) {
	h.record("noteOn %d %d %d %d", off, ch, key, vel)
}

func (h *recordingHost) ProcessNoteOff(off int32, ch, key, vel uint8) {
	h.record("noteOff %d %d %d %d", off, ch, key, vel)
}

func (h *recordingHost) ProcessNoteAftertouch(off int32, ch, key, pressure uint8) {
	h.record("noteAT %d %d %d %d", off, ch, key, pressure)
}

func (h *recordingHost) ProcessCC(off int32, ch, cc, val uint8) {
	h.record("cc %d %d %d %d", off, ch, cc, val)
}

func (h *recordingHost) ProcessPitchBend(off int32, ch uint8, v uint16) {
	h.record("bend %d %d %#04x", off, ch, v)
}

func (h *recordingHost) Idle() {
	h.mu.Lock()
	h.idleCount++
	h.mu.Unlock()
}

func (h *recordingHost) Idles() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idleCount
}

// fakeBackend hands out fakeStreams and remembers the last one.
type fakeBackend struct {
	openErr  error
	startErr error
	frames   int // negotiated block size; 0 means "as requested"
	last     *fakeStream
}

func (b *fakeBackend) Open(p audioio.StreamParams, cb audioio.Callback) (audioio.Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	frames := b.frames
	if frames == 0 {
		frames = p.BufferFrames
	}
	s := &fakeStream{cb: cb, frames: frames, startErr: b.startErr, open: true}
	b.last = s
	return s, nil
}

type fakeStream struct {
	cb       audioio.Callback
	frames   int
	startErr error
	open     bool
	started  bool
}

func (s *fakeStream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeStream) Stop() error       { s.started = false; return nil }
func (s *fakeStream) Close() error      { s.open = false; return nil }
func (s *fakeStream) IsOpen() bool      { return s.open }
func (s *fakeStream) BufferFrames() int { return s.frames }

// runBlock drives one callback invocation the way the driver would.
func (s *fakeStream) runBlock(in []float32, nowMs float64) ([]float32, audioio.CallbackResult) {
	out := make([]float32, 2*s.frames)
	res := s.cb(in, out, s.frames, nowMs, false)
	return out, res
}

// fakeMIDI replays a canned message sequence through the polled contract.
type fakeMIDI struct {
	msgs   []midiport.Message
	closed bool
}

func (m *fakeMIDI) Poll() (midiport.Message, bool) {
	if m.closed || len(m.msgs) == 0 {
		return midiport.Message{}, false
	}
	msg := m.msgs[0]
	m.msgs = m.msgs[1:]
	return msg, true
}

func (m *fakeMIDI) IsOpen() bool { return !m.closed }
func (m *fakeMIDI) Close() error { m.closed = true; return nil }

// newTestEngine builds an engine on fakes. A nil midi input makes the opener
// fail, exercising the best-effort MIDI path.
func newTestEngine(t *testing.T, host hostcore.PluginHost, backend audioio.Backend, in midiport.Input) *Engine {
	t.Helper()
	settings := hostcore.Static{
		AudioSettings: hostcore.AudioSettings{
			DeviceIndex:  -1,
			SampleRate:   48000,
			BufferFrames: 256,
		},
		MIDISettings: hostcore.MIDISettings{API: "fake", PortIndex: 0},
	}
	opener := func(string, int, *zap.Logger) (midiport.Input, error) {
		if in == nil {
			return nil, errors.New("no midi input")
		}
		return in, nil
	}
	e := New(host, settings,
		WithAudioBackend(backend),
		WithMIDIOpener(opener),
		WithIdleInterval(time.Hour))
	t.Cleanup(e.Close)
	return e
}
