// Package devices enumerates the audio devices and MIDI input ports the
// settings layer lets the user choose from. The engine itself only ever sees
// index references; these lists are what those indices point into.
package devices

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// AudioDevice describes one endpoint visible to the audio backend.
type AudioDevice struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	HostAPI           string  `json:"hostApi"`
	MaxInputChannels  int     `json:"maxInputChannels"`
	MaxOutputChannels int     `json:"maxOutputChannels"`
	DefaultSampleRate float64 `json:"defaultSampleRate"`
	IsDefaultInput    bool    `json:"isDefaultInput"`
	IsDefaultOutput   bool    `json:"isDefaultOutput"`
}

func (a AudioDevice) CanInput() bool {
	return a.MaxInputChannels > 0
}

func (a AudioDevice) CanOutput() bool {
	return a.MaxOutputChannels > 0
}

// AudioDevices is a filterable device list.
type AudioDevices []AudioDevice

// Inputs returns the devices that can capture audio.
func (ds AudioDevices) Inputs() AudioDevices {
	var out AudioDevices
	for _, d := range ds {
		if d.CanInput() {
			out = append(out, d)
		}
	}
	return out
}

// Outputs returns the devices that can play audio.
func (ds AudioDevices) Outputs() AudioDevices {
	var out AudioDevices
	for _, d := range ds {
		if d.CanOutput() {
			out = append(out, d)
		}
	}
	return out
}

// GetAudio lists the devices visible to the audio backend. The backend is
// initialized for the duration of the call only.
func GetAudio() (AudioDevices, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("devices: init: %w", err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("devices: list: %w", err)
	}

	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	out := make(AudioDevices, 0, len(infos))
	for i, info := range infos {
		d := AudioDevice{
			Index:             i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			IsDefaultInput:    info == defaultIn,
			IsDefaultOutput:   info == defaultOut,
		}
		if info.HostApi != nil {
			d.HostAPI = info.HostApi.Name
		}
		out = append(out, d)
	}
	return out, nil
}
