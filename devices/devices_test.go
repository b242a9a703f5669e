package devices

import "testing"

func testAudioDevices() AudioDevices {
	return AudioDevices{
		{Index: 0, Name: "Built-in Microphone", MaxInputChannels: 2},
		{Index: 1, Name: "Built-in Output", MaxOutputChannels: 2, IsDefaultOutput: true},
		{Index: 2, Name: "USB Interface", MaxInputChannels: 8, MaxOutputChannels: 8},
	}
}

func TestAudioDeviceCapabilities(t *testing.T) {
	ds := testAudioDevices()

	if !ds[0].CanInput() || ds[0].CanOutput() {
		t.Error("microphone should be input-only")
	}
	if ds[1].CanInput() || !ds[1].CanOutput() {
		t.Error("output should be output-only")
	}
	if !ds[2].CanInput() || !ds[2].CanOutput() {
		t.Error("interface should be both")
	}
}

func TestAudioDeviceFilters(t *testing.T) {
	ds := testAudioDevices()

	inputs := ds.Inputs()
	if len(inputs) != 2 {
		t.Errorf("Inputs() returned %d devices, want 2", len(inputs))
	}
	outputs := ds.Outputs()
	if len(outputs) != 2 {
		t.Errorf("Outputs() returned %d devices, want 2", len(outputs))
	}
	for _, d := range outputs {
		if !d.CanOutput() {
			t.Errorf("non-output device %q in Outputs()", d.Name)
		}
	}
}

func TestMIDIDeviceFilters(t *testing.T) {
	ds := MIDIDevices{
		{Index: 0, Name: "Keyboard", IsInput: true},
		{Index: 1, Name: "Synth Out", IsOutput: true},
		{Index: 2, Name: "Controller", IsInput: true, IsOutput: true},
	}

	inputs := ds.Inputs()
	if len(inputs) != 2 {
		t.Fatalf("Inputs() returned %d devices, want 2", len(inputs))
	}
	for _, d := range inputs {
		if !d.IsInput {
			t.Errorf("non-input device %q in Inputs()", d.Name)
		}
	}
}
