package watchdog

import "time"

// Envelope holds one telemetry scalar's limits and the dwell-time/warning
// state tracked between checks. The zero value is ready to use.
type Envelope struct {
	Name        string
	WarnAt      float64
	HardLimit   float64
	DwellPeriod time.Duration

	breachedSince time.Time
	breached      bool
	warned        bool
}

// Check runs one sample through the envelope's dwell-time algorithm:
//
//   - crossing HardLimit starts (or continues) a dwell timer; once the
//     dwell period elapses, triggerEstop is called with reason.
//   - returning below HardLimit resets the breach and warn-once flags.
//   - crossing WarnAt logs/publishes a warning once per excursion
//     (edge-triggered); a drop back below HardLimit re-arms it, so a value
//     that falls from above HardLimit to between WarnAt and HardLimit
//     warns again.
//
// value is already normalized to the envelope's unit by the caller (e.g.
// the telemetry bus divides raw tenths-of-a-percent Dynamixel load by 10
// when it is stored, before the watchdog reads it).
func (e *Envelope) Check(now time.Time, value float64, onWarn func(value, threshold float64), onBreach func(reason string)) {
	if value >= e.HardLimit {
		if !e.breached {
			e.breached = true
			e.breachedSince = now
		} else if now.Sub(e.breachedSince) >= e.DwellPeriod {
			onBreach(e.Name + " limit exceeded for too long")

			return
		}
	} else if e.breached {
		e.breached = false
		e.warned = false
	}

	if value >= e.WarnAt {
		if !e.warned {
			e.warned = true
			onWarn(value, e.WarnAt)
		}
	} else if e.warned {
		e.warned = false
	}
}
