// Package hostcore defines the contracts between the real-time engine and its
// external collaborators: the hosted processing unit, the settings layer, and
// the application's error sink.
package hostcore

// WindowHandle is an opaque native window reference handed to the hosted unit
// for any embedded editor UI. The core never interprets it.
type WindowHandle uintptr

// PluginHost is the processing bridge: the contract the hosted unit must
// expose so the engine can drive its lifecycle and feed it each block.
//
// The engine guarantees the following ordering for every successful start:
// SetPorts and Activate are called exactly once, before any ProcessBegin.
// Per block, ProcessBegin is called exactly once, then every event-injection
// call for that block, then Process. Deactivate and Unload always precede the
// release of the buffers handed over via SetPorts.
//
// ProcessBegin, the event-injection methods, and Process run on the real-time
// audio thread; implementations must not block or allocate there.
type PluginHost interface {
	// Load instantiates the unit at index within the bundle at path.
	Load(path string, index int) error
	Unload()

	SetParentWindow(w WindowHandle)

	// SetPorts hands the unit the scratch regions it will read and write.
	// Two input and two output channels.
	SetPorts(inputs, outputs [][]float32)
	Activate(sampleRate float64, maxBlockSize int)
	Deactivate()

	ProcessBegin(frameCount int)
	ProcessNoteOn(sampleOffset int32, channel, key, velocity uint8)
	ProcessNoteOff(sampleOffset int32, channel, key, velocity uint8)
	ProcessNoteAftertouch(sampleOffset int32, channel, key, pressure uint8)
	ProcessCC(sampleOffset int32, channel, controller, value uint8)
	// ProcessPitchBend receives the 14-bit bend value; 0x2000 is center.
	ProcessPitchBend(sampleOffset int32, channel uint8, value uint16)
	Process()

	// Idle is called periodically from a non-real-time context for
	// housekeeping such as servicing an editor UI.
	Idle()
}
