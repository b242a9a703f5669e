package hostcore

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	a := s.Audio()
	if a.DeviceIndex != -1 {
		t.Errorf("default audio device index = %d, want -1", a.DeviceIndex)
	}
	if a.SampleRate != 48000 {
		t.Errorf("default sample rate = %v, want 48000", a.SampleRate)
	}
	if a.BufferFrames != 512 {
		t.Errorf("default buffer frames = %d, want 512", a.BufferFrames)
	}

	m := s.MIDI()
	if m.API != "portmidi" {
		t.Errorf("default MIDI api = %q, want portmidi", m.API)
	}
}

func TestStaticIsASnapshot(t *testing.T) {
	s := Static{
		AudioSettings: AudioSettings{API: "portaudio", DeviceIndex: 3, SampleRate: 44100, BufferFrames: 128},
		MIDISettings:  MIDISettings{API: "rtmidi", PortIndex: 2},
	}
	if s.Audio() != s.AudioSettings {
		t.Error("Audio() should return the stored settings")
	}
	if s.MIDI() != s.MIDISettings {
		t.Error("MIDI() should return the stored settings")
	}
}
