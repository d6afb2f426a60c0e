package audio

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/worker"
)

// LevelSource reports a ring's fill level as a fraction of its capacity,
// used by the monitor to decide when to warn about buffer pressure.
type LevelSource interface {
	FillLevel() float64
}

// FillLevel reports how full the ring is as a fraction in [0, 1],
// counting slots currently marked ready.
func (r *Ring) FillLevel() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ready int

	for i := range r.slots {
		if r.slots[i].Ready {
			ready++
		}
	}

	return float64(ready) / float64(ringSlots)
}

// Monitor logs a warning at most once every StatsInterval when a
// stream's ring is either dangerously full (risk of overwrite-driven
// loss) or nearly empty. The nearly-empty warning does not check whether
// the stream is receiving packets, so an idle stream also triggers it.
type Monitor struct {
	logger  *log.Logger
	sources map[string]LevelSource
	worker  *worker.Worker
}

// NewMonitor builds a Monitor over the named level sources (typically
// "dialog" and "bgm").
func NewMonitor(logger *log.Logger, sources map[string]LevelSource) *Monitor {
	return &Monitor{logger: logger, sources: sources, worker: worker.New("audio-monitor")}
}

// Start launches the periodic check loop.
func (m *Monitor) Start() {
	m.worker.Start(m.run)
}

// Shutdown stops the check loop.
func (m *Monitor) Shutdown(timeout time.Duration) {
	m.worker.Shutdown(timeout)
}

func (m *Monitor) run(stopRequested func() bool) {
	for !stopRequested() {
		for name, source := range m.sources {
			var level = source.FillLevel()

			switch {
			case level > BufferHighWatermark:
				m.logger.Warn("audio ring buffer nearly full", "stream", name, "level", level)
			case level < BufferLowWatermark:
				m.logger.Warn("audio ring buffer nearly empty", "stream", name, "level", level)
			}
		}

		if sleepInterrupted(StatsInterval, stopRequested) {
			return
		}
	}
}

// sleepInterrupted sleeps in short increments so a stop request is
// noticed well within one StatsInterval instead of only after it.
func sleepInterrupted(d time.Duration, stopRequested func() bool) bool {
	const step = 100 * time.Millisecond

	var elapsed time.Duration
	for elapsed < d {
		if stopRequested() {
			return true
		}

		time.Sleep(step)
		elapsed += step
	}

	return false
}
