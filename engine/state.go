package engine

import "sync/atomic"

// StreamState is the lifecycle state of the hardware stream.
type StreamState int32

const (
	// StateStopped is the initial state and the result of every Stop.
	StateStopped StreamState = iota
	// StateRunning means the stream is open and the callback is live.
	StateRunning
	// StateStopping is transient: Stop has been requested and the next
	// callback invocation will perform one final block, then halt.
	StateStopping
)

func (s StreamState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "invalid"
	}
}

// streamState is the single shared state instance. The control context and
// the audio thread both touch it, so every access is a single atomic
// operation; there is no lock to take on the real-time path.
type streamState struct {
	v atomic.Int32
}

func (s *streamState) load() StreamState {
	return StreamState(s.v.Load())
}

func (s *streamState) store(st StreamState) {
	s.v.Store(int32(st))
}

func (s *streamState) compareAndSwap(old, new StreamState) bool {
	return s.v.CompareAndSwap(int32(old), int32(new))
}
