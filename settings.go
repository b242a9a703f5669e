package hostcore

// AudioSettings selects the hardware stream: which backend device to open and
// the stream parameters to request. The driver has the final word on the
// block size; the negotiated value is what the engine activates the hosted
// unit with.
type AudioSettings struct {
	API          string // audio backend name, e.g. "portaudio"
	DeviceIndex  int    // index into the backend's device list; -1 for default
	SampleRate   float64
	BufferFrames int // preferred block size in sample frames
}

// MIDISettings selects the MIDI input port. API names a midiport backend
// ("portmidi" or "rtmidi").
type MIDISettings struct {
	API       string
	PortIndex int
}

// SettingsProvider supplies device and stream preferences. The engine reads
// them once per Start and treats them as immutable snapshots.
type SettingsProvider interface {
	Audio() AudioSettings
	MIDI() MIDISettings
}

// Static is a fixed SettingsProvider for embedding defaults or test values.
type Static struct {
	AudioSettings AudioSettings
	MIDISettings  MIDISettings
}

func (s Static) Audio() AudioSettings { return s.AudioSettings }
func (s Static) MIDI() MIDISettings   { return s.MIDISettings }

// DefaultSettings targets the default output device at 48 kHz with a 512
// frame block and the first portmidi input port.
func DefaultSettings() Static {
	return Static{
		AudioSettings: AudioSettings{
			API:          "portaudio",
			DeviceIndex:  -1,
			SampleRate:   48000,
			BufferFrames: 512,
		},
		MIDISettings: MIDISettings{
			API:       "portmidi",
			PortIndex: 0,
		},
	}
}
