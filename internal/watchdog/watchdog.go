// Package watchdog implements the four-envelope safety monitor that
// samples telemetry every 100ms and triggers an emergency stop when a
// hard limit is breached for longer than its dwell period.
package watchdog

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/outbound"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
	"github.com/opsnlops/creature-controller-go/internal/telemetry"
	"github.com/opsnlops/creature-controller-go/internal/worker"
)

const sampleInterval = 100 * time.Millisecond

// Thresholds configures the four envelopes the watchdog enforces.
type Thresholds struct {
	PowerWarnWatts      float64
	PowerLimitWatts     float64
	PowerDwell          time.Duration
	BoardTempWarnF      float64
	BoardTempLimitF     float64
	BoardTempDwell      time.Duration
	DxlTempWarnF        float64
	DxlTempLimitF       float64
	DxlTempDwell        time.Duration
	DxlLoadWarnPercent  float64
	DxlLoadLimitPercent float64
	DxlLoadDwell        time.Duration
}

// Broadcaster is the subset of the router's API the watchdog needs to
// fan an ESTOP out to every registered module.
type Broadcaster interface {
	Broadcast(payload string)
	Ids() []protocol.ModuleId
}

// Watchdog samples a Scalars bus every 100ms against four independent
// envelopes and triggers an emergency stop if any hard limit is breached
// for longer than its dwell period.
type Watchdog struct {
	logger *log.Logger
	bus    *telemetry.Scalars
	router Broadcaster
	sink   *outbound.Sink

	power   Envelope
	boardT  Envelope
	dxlT    Envelope
	dxlLoad Envelope

	worker   *worker.Worker
	estopped atomic.Bool
}

// New constructs a Watchdog with the given thresholds.
func New(logger *log.Logger, bus *telemetry.Scalars, router Broadcaster, sink *outbound.Sink, t Thresholds) *Watchdog {
	return &Watchdog{
		logger: logger,
		bus:    bus,
		router: router,
		sink:   sink,
		power:  Envelope{Name: "power draw", WarnAt: t.PowerWarnWatts, HardLimit: t.PowerLimitWatts, DwellPeriod: t.PowerDwell},
		boardT: Envelope{Name: "board temperature", WarnAt: t.BoardTempWarnF, HardLimit: t.BoardTempLimitF, DwellPeriod: t.BoardTempDwell},
		dxlT:   Envelope{Name: "dynamixel temperature", WarnAt: t.DxlTempWarnF, HardLimit: t.DxlTempLimitF, DwellPeriod: t.DxlTempDwell},
		dxlLoad: Envelope{
			Name: "dynamixel load", WarnAt: t.DxlLoadWarnPercent, HardLimit: t.DxlLoadLimitPercent, DwellPeriod: t.DxlLoadDwell,
		},
		worker: worker.New("watchdog"),
	}
}

// Start launches the sampling loop.
func (w *Watchdog) Start() {
	w.worker.Start(w.run)
}

// Shutdown stops the sampling loop.
func (w *Watchdog) Shutdown(timeout time.Duration) {
	w.worker.Shutdown(timeout)
}

func (w *Watchdog) run(stopRequested func() bool) {
	w.logger.Info("watchdog starting monitoring loop",
		"power_limit_w", w.power.HardLimit, "power_warn_w", w.power.WarnAt,
		"board_temp_limit_f", w.boardT.HardLimit, "dxl_temp_limit_f", w.dxlT.HardLimit,
		"dxl_load_limit_pct", w.dxlLoad.HardLimit)

	for !stopRequested() && !w.estopped.Load() {
		w.sample()
		time.Sleep(sampleInterval)
	}

	w.logger.Info("watchdog stopping")
}

// sample runs all four envelopes once. Any single envelope triggering an
// estop stops the watchdog itself, the same as the original's early
// return from the per-check functions.
func (w *Watchdog) sample() {
	var now = time.Now()

	var triggered bool

	w.power.Check(now, w.bus.PowerW(),
		func(v, thresh float64) { w.warn("power_draw_warning", v, thresh) },
		func(reason string) { triggered = true; w.triggerEstop(reason) })
	if triggered {
		return
	}

	w.boardT.Check(now, w.bus.BoardTempF(),
		func(v, thresh float64) { w.warn("temperature_warning", v, thresh) },
		func(reason string) { triggered = true; w.triggerEstop(reason) })
	if triggered {
		return
	}

	w.dxlT.Check(now, w.bus.DxlTempF(),
		func(v, thresh float64) { w.warn("dynamixel_temperature_warning", v, thresh) },
		func(reason string) { triggered = true; w.triggerEstop(reason) })
	if triggered {
		return
	}

	w.dxlLoad.Check(now, w.bus.DxlLoadPercent(),
		func(v, thresh float64) { w.warn("dynamixel_load_warning", v, thresh) },
		func(reason string) { triggered = true; w.triggerEstop(reason) })
}

func (w *Watchdog) warn(warningType string, value, threshold float64) {
	w.logger.Warn("watchdog warning", "type", warningType, "value", value, "threshold", threshold)

	if w.sink != nil {
		w.sink.Publish(outbound.WatchdogWarning{
			WarningType:  warningType,
			CurrentValue: value,
			Threshold:    threshold,
			Timestamp:    time.Now(),
		})
	}
}

// triggerEstop publishes an EmergencyStop notice upstream, broadcasts
// ESTOP to every registered module (per-module failures are impossible
// here since Broadcast never fails, matching the original's "log and
// keep going" fanout), and stops the watchdog's own loop.
func (w *Watchdog) triggerEstop(reason string) {
	w.logger.Error("EMERGENCY STOP TRIGGERED", "reason", reason)

	if w.sink != nil {
		w.sink.Publish(outbound.EmergencyStop{Reason: reason, Timestamp: time.Now()})
	}

	if w.router != nil {
		var ids = w.router.Ids()
		w.logger.Error("sending ESTOP to all modules", "count", len(ids))
		w.router.Broadcast(protocol.EncodeESTOP())
	}

	w.estopped.Store(true)
}
