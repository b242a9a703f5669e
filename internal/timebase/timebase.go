// Package timebase provides the process-wide monotonic millisecond clock.
//
// The audio callback and the MIDI backends stamp their times against this one
// clock, so the translator's message-age computation compares like with like.
// Backend-native clocks (portmidi's millisecond counter, portaudio's stream
// time) are rebased onto it at open time.
package timebase

import "time"

var epoch = time.Now()

// NowMs returns the milliseconds elapsed since process start.
func NowMs() float64 {
	return float64(time.Since(epoch)) / float64(time.Millisecond)
}
