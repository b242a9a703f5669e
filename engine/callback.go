package engine

import (
	"fmt"

	"github.com/klangwerk/hostcore/internal/audioio"
)

// deinterleave splits interleaved stereo into two per-channel regions.
func deinterleave(src, left, right []float32, frames int) {
	for i := 0; i < frames; i++ {
		left[i] = src[2*i]
		right[i] = src[2*i+1]
	}
}

// interleave merges two per-channel regions into interleaved stereo.
func interleave(left, right, dst []float32, frames int) {
	for i := 0; i < frames; i++ {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
}

// processBlock is the real-time entry point, invoked by the driver once per
// block. It must not allocate, block, or take a lock. A missing buffer set
// or a block size other than the negotiated one is a contract breach by the
// driver or the surrounding application, not a recoverable condition.
func (e *Engine) processBlock(in, out []float32, frames int, timeMs float64, underflow bool) audioio.CallbackResult {
	if !e.bufs.allocated() {
		panic("engine: audio callback with unallocated buffers")
	}
	if frames != e.nframes {
		panic(fmt.Sprintf("engine: callback block of %d frames, negotiated %d", frames, e.nframes))
	}

	if underflow {
		e.underflows.Add(1)
	}

	if len(in) > 0 {
		deinterleave(in, e.bufs.inputs[0], e.bufs.inputs[1], frames)
	}

	e.host.ProcessBegin(frames)
	e.drainMIDI(frames, timeMs)
	e.host.Process()

	interleave(e.bufs.outputs[0], e.bufs.outputs[1], out, frames)

	e.steadyTime.Add(int64(frames))

	switch st := e.state.load(); st {
	case StateRunning:
		return audioio.Continue
	case StateStopping:
		// Final block done; the control context is waiting for the driver
		// to go quiet.
		e.state.store(StateStopped)
		return audioio.Halt
	default:
		panic("engine: callback observed state " + st.String())
	}
}
