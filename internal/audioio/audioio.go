// Package audioio abstracts the hardware audio stream behind the callback
// contract the engine drives. The default backend is portaudio; tests drive
// the engine with an in-process fake.
package audioio

// CallbackResult is the callback's continue/halt signal to the driver.
type CallbackResult int

const (
	// Continue keeps the stream running.
	Continue CallbackResult = iota
	// Halt tells the driver to deliver no further callbacks.
	Halt
)

// Callback is the per-block real-time entry point. in and out are
// interleaved stereo; in is empty when the stream has no input channels.
// timeMs is the invocation time on the timebase clock. underflow reports
// that the driver ran out of output data before this block.
//
// The callback runs on the driver's audio thread and must meet the block's
// real-time budget.
type Callback func(in, out []float32, frameCount int, timeMs float64, underflow bool) CallbackResult

// StreamParams are the requested stream parameters. The negotiated block
// size is reported by Stream.BufferFrames after open.
type StreamParams struct {
	DeviceIndex    int // index into the backend's device list; -1 for default
	SampleRate     float64
	BufferFrames   int
	InputChannels  int
	OutputChannels int
}

// Stream is one open hardware stream. Start, Stop, and Close are control
// context calls; after Close returns, the driver delivers no further
// callbacks.
type Stream interface {
	Start() error
	Stop() error
	Close() error
	IsOpen() bool
	// BufferFrames is the negotiated block size in sample frames.
	BufferFrames() int
}

// Backend opens hardware streams.
type Backend interface {
	Open(p StreamParams, cb Callback) (Stream, error)
}
