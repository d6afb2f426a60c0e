package audio

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/worker"
)

// Sink is the audio output device the mixer writes finished frames to.
type Sink interface {
	Write(samples []int16) error
}

// Mixer combines the dialog and BGM streams at 20ms cadence, sample-wise
// summing with saturation, and writes every mixed frame to a Sink. After
// PrefillFrames writes it marks playback as started; it does not hold
// frames back until then, and the Sink plays whatever it is given.
type Mixer struct {
	logger  *log.Logger
	dialog  *Stream
	bgm     *Stream
	sink    Sink
	queued  int
	playing bool

	worker *worker.Worker
}

// NewMixer wires a Mixer across dialog and bgm, writing to sink.
func NewMixer(logger *log.Logger, dialog, bgm *Stream, sink Sink) *Mixer {
	return &Mixer{logger: logger, dialog: dialog, bgm: bgm, sink: sink, worker: worker.New("audio-mixer")}
}

// Start launches the mixer's scheduling loop.
func (m *Mixer) Start() {
	m.worker.Start(m.run)
}

// Shutdown stops the mixer loop.
func (m *Mixer) Shutdown(timeout time.Duration) {
	m.worker.Shutdown(timeout)
}

// run drives a drift-free 20ms cadence: each wake time is computed from
// the previous wake time plus FrameDuration, not from "now", so jitter in
// any one tick's processing doesn't accumulate across ticks.
func (m *Mixer) run(stopRequested func() bool) {
	var nextWake = time.Now()

	for !stopRequested() {
		nextWake = nextWake.Add(FrameDuration)

		var delay = time.Until(nextWake)
		if delay > 0 {
			time.Sleep(delay)
		}

		m.tick()
	}
}

// tick consumes at most one ready frame from each stream, mixes them with
// saturation, writes the result to the sink, and counts writes until the
// prefill mark is reached.
func (m *Mixer) tick() {
	var dialogFrame, haveDialog = m.dialog.Ring().PopReady()
	var bgmFrame, haveBGM = m.bgm.Ring().PopReady()

	if !haveDialog && !haveBGM {
		return
	}

	var mixed [SamplesPerFrame]int16
	for i := 0; i < SamplesPerFrame; i++ {
		var sum int32

		if haveDialog {
			sum += int32(dialogFrame.Samples[i])
		}

		if haveBGM {
			sum += int32(bgmFrame.Samples[i])
		}

		mixed[i] = clampSample(sum)
	}

	if err := m.sink.Write(mixed[:]); err != nil {
		m.logger.Error("audio sink write failed", "error", err)

		return
	}

	if !m.playing {
		m.queued++
		if m.queued >= PrefillFrames {
			m.playing = true
			m.logger.Info("audio playback starting after prefill", "frames", m.queued)
		}
	}
}

func clampSample(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
