package engine

// bufferReserveBytes over-provisions each scratch region. The stream may
// invoke the callback as soon as it opens, before the negotiated block size
// is known, so the regions must already exist at a size no block can exceed.
const bufferReserveBytes = 32 * 1024

// 32-bit float samples.
const bytesPerSample = 4

// bufferSet owns the four scratch regions the hosted unit reads and writes:
// two input channels, two output channels. Invariant: either all four are
// allocated or all four are nil.
type bufferSet struct {
	inputs  [2][]float32
	outputs [2][]float32
}

// allocate releases any held regions, then allocates four zeroed regions of
// sizeBytes bytes each.
func (b *bufferSet) allocate(sizeBytes int) {
	b.release()
	n := sizeBytes / bytesPerSample
	b.inputs[0] = make([]float32, n)
	b.inputs[1] = make([]float32, n)
	b.outputs[0] = make([]float32, n)
	b.outputs[1] = make([]float32, n)
}

// release drops all four regions. Idempotent.
func (b *bufferSet) release() {
	b.inputs[0], b.inputs[1] = nil, nil
	b.outputs[0], b.outputs[1] = nil, nil
}

// allocated reports whether the set holds its regions. The all-or-nothing
// invariant makes checking one region sufficient.
func (b *bufferSet) allocated() bool {
	return b.inputs[0] != nil
}
