package audio

import (
	"github.com/gordonklaus/portaudio"
)

// PortAudioSink is the real output device: a mono 48kHz stream fed from
// a queue of SinkBufferFrames/SamplesPerFrame (4) mixed blocks, giving this previously-orphaned
// dependency a concrete job — the mixer's actual speaker output.
type PortAudioSink struct {
	stream *portaudio.Stream
	buf    chan []int16
}

// NewPortAudioSink opens the default output device at SampleRate/mono.
func NewPortAudioSink() (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	var sink = &PortAudioSink{buf: make(chan []int16, SinkBufferFrames/SamplesPerFrame)}

	var stream, err = portaudio.OpenDefaultStream(0, OutputChannels, float64(SampleRate), SamplesPerFrame, sink.callback)
	if err != nil {
		_ = portaudio.Terminate()

		return nil, err
	}

	sink.stream = stream

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()

		return nil, err
	}

	return sink, nil
}

// callback is invoked by portaudio's audio thread to pull the next
// block; it plays silence if the mixer hasn't produced one in time
// rather than blocking the audio callback.
func (s *PortAudioSink) callback(out []int16) {
	select {
	case frame := <-s.buf:
		copy(out, frame)
	default:
		for i := range out {
			out[i] = 0
		}
	}
}

// Write queues a mixed frame for playback.
func (s *PortAudioSink) Write(samples []int16) error {
	var cp = make([]int16, len(samples))
	copy(cp, samples)

	select {
	case s.buf <- cp:
	default:
		// device buffer full; drop the oldest queued frame rather than
		// block the mixer's drift-free cadence.
		select {
		case <-s.buf:
		default:
		}
		s.buf <- cp
	}

	return nil
}

// Close stops and tears down the underlying stream.
func (s *PortAudioSink) Close() error {
	if s.stream == nil {
		return nil
	}

	var err = s.stream.Close()
	_ = portaudio.Terminate()

	return err
}
