package engine

import "go.uber.org/zap"

// MIDI event types: the high nibble of the status byte.
const (
	midiStatusNoteOff        = 0x8
	midiStatusNoteOn         = 0x9
	midiStatusNoteAftertouch = 0xA
	midiStatusControlChange  = 0xB
	midiStatusProgramChange  = 0xC
	midiStatusChannelPress   = 0xD
	midiStatusPitchBend      = 0xE
)

// drainMIDI converts every pending raw message into an event positioned on
// the current block and hands it to the hosted unit, in arrival order, one
// message per non-blocking poll. nowMs is the callback's time on the shared
// clock; a message's age against it decides the event's sample offset.
func (e *Engine) drainMIDI(frames int, nowMs float64) {
	in := e.midiIn
	if in == nil {
		return
	}
	for in.IsOpen() {
		msg, ok := in.Poll()
		if !ok {
			break
		}

		eventType := msg.Status >> 4
		channel := msg.Status & 0x0f

		deltaMs := nowMs - msg.TimeMs
		deltaSamples := deltaMs * e.sampleRate / 1000
		// A message is never treated as older than one block; stale input
		// lands at offset 0 rather than in a block that already played.
		if deltaSamples < 0 {
			deltaSamples = 0
		}
		if deltaSamples > float64(frames) {
			deltaSamples = float64(frames)
		}

		sampleOffset := int32(frames) - int32(deltaSamples)
		if sampleOffset >= int32(frames) {
			sampleOffset = int32(frames) - 1
		}

		switch eventType {
		case midiStatusNoteOn:
			e.host.ProcessNoteOn(sampleOffset, channel, msg.Data1, msg.Data2)
		case midiStatusNoteOff:
			e.host.ProcessNoteOff(sampleOffset, channel, msg.Data1, msg.Data2)
		case midiStatusNoteAftertouch:
			e.host.ProcessNoteAftertouch(sampleOffset, channel, msg.Data1, msg.Data2)
		case midiStatusControlChange:
			e.host.ProcessCC(sampleOffset, channel, msg.Data1, msg.Data2)
		case midiStatusPitchBend:
			e.host.ProcessPitchBend(sampleOffset, channel, uint16(msg.Data2)<<7|uint16(msg.Data1))
		case midiStatusChannelPress:
			// Received but deliberately not forwarded: the bridge contract
			// has no channel pressure entry point.
			e.log.Warn("channel aftertouch ignored",
				zap.Uint8("channel", channel),
				zap.Uint8("pressure", msg.Data1))
		default:
			e.log.Warn("unknown MIDI event type",
				zap.Uint8("type", eventType),
				zap.Uint8("status", msg.Status))
		}
	}
}
