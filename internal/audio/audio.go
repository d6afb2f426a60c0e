// Package audio implements the dual-stream Opus-over-RTP receiver and
// 20ms mixer that feeds the creature's audio output device: one
// multicast stream for dialog (channel-selectable) and one fixed
// multicast stream for background music.
package audio

import "time"

const (
	// DialogGroupBase is the multicast group prefix for dialog audio;
	// the per-creature channel (1-16) selects the last octet.
	DialogGroupBase = "239.19.63."
	// BGMGroup is the fixed multicast group background music is always
	// sent to, regardless of creature channel.
	BGMGroup = "239.19.63.17"
	// RTPPort is the UDP port both multicast groups are received on.
	RTPPort = 5004

	SampleRate      = 48000
	FrameDuration   = 20 * time.Millisecond
	SamplesPerFrame = 480
	OutputChannels  = 1

	SinkBufferFrames = 2048
	PrefillFrames    = 3

	BufferHighWatermark = 0.8
	BufferLowWatermark  = 0.1
	StatsInterval       = 5 * time.Second

	ringSlots = 8
)

// Frame is one 20ms block of decoded mono 16-bit PCM at 48kHz.
type Frame struct {
	Samples [SamplesPerFrame]int16
	Ready   bool
}
