package devices

import (
	"fmt"

	"github.com/rakyll/portmidi"
)

// MIDIDevice describes one MIDI endpoint known to the MIDI backend.
type MIDIDevice struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Interface string `json:"interface"`
	IsInput   bool   `json:"isInput"`
	IsOutput  bool   `json:"isOutput"`
	IsOpen    bool   `json:"isOpen"`
}

// MIDIDevices is a filterable device list.
type MIDIDevices []MIDIDevice

// Inputs returns the endpoints that can deliver MIDI to the engine.
func (ds MIDIDevices) Inputs() MIDIDevices {
	var out MIDIDevices
	for _, d := range ds {
		if d.IsInput {
			out = append(out, d)
		}
	}
	return out
}

// GetMIDI lists the endpoints visible to the MIDI backend. The backend is
// initialized for the duration of the call only.
func GetMIDI() (MIDIDevices, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("devices: midi init: %w", err)
	}
	defer portmidi.Terminate()

	n := portmidi.CountDevices()
	out := make(MIDIDevices, 0, n)
	for i := 0; i < n; i++ {
		info := portmidi.Info(portmidi.DeviceID(i))
		if info == nil {
			continue
		}
		out = append(out, MIDIDevice{
			Index:     i,
			Name:      info.Name,
			Interface: info.Interface,
			IsInput:   info.IsInputAvailable,
			IsOutput:  info.IsOutputAvailable,
			IsOpen:    info.IsOpened,
		})
	}
	return out, nil
}
