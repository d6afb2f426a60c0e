// Package telemetry holds the lock-free scalar bus the sensor handlers
// write to and the watchdog reads from.
package telemetry

import (
	"math"
	"sync/atomic"
)

// atomicFloat stores a float64 behind an atomic uint64 bit pattern, since
// Go's sync/atomic has no native float64 type.
type atomicFloat struct {
	bits uint64
}

func (a *atomicFloat) store(v float64) {
	atomic.StoreUint64(&a.bits, math.Float64bits(v))
}

func (a *atomicFloat) load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&a.bits))
}

// storeMax retains the running maximum ever stored, via CAS retry rather
// than a lock.
func (a *atomicFloat) storeMax(v float64) {
	for {
		var old = atomic.LoadUint64(&a.bits)
		if v <= math.Float64frombits(old) {
			return
		}

		if atomic.CompareAndSwapUint64(&a.bits, old, math.Float64bits(v)) {
			return
		}
	}
}

// Scalars is the four-value telemetry bus: board temperature (°F), bus
// power draw (W), Dynamixel temperature (°F), and Dynamixel load
// (percent — raw wire values arrive in tenths of a percent and are
// divided by 10 before being stored here).
type Scalars struct {
	boardTempF     atomicFloat
	powerW         atomicFloat
	dxlTempF       atomicFloat
	dxlLoadPercent atomicFloat
}

// SetBoardTempF records the latest board temperature reading.
func (s *Scalars) SetBoardTempF(v float64) { s.boardTempF.store(v) }

// BoardTempF returns the latest board temperature reading.
func (s *Scalars) BoardTempF() float64 { return s.boardTempF.load() }

// SetPowerW records the latest bus power draw reading.
func (s *Scalars) SetPowerW(v float64) { s.powerW.store(v) }

// PowerW returns the latest bus power draw reading.
func (s *Scalars) PowerW() float64 { return s.powerW.load() }

// SetDxlTempF retains the max-seen Dynamixel temperature reading. A
// DSENSE frame carries one token per motor and each token updates the
// max-seen value, so a single hot motor isn't masked by a cooler one
// reported later in the same frame.
func (s *Scalars) SetDxlTempF(v float64) { s.dxlTempF.storeMax(v) }

// DxlTempF returns the max-seen Dynamixel temperature reading.
func (s *Scalars) DxlTempF() float64 { return s.dxlTempF.load() }

// SetDxlLoadTenthsPercent records a raw tenths-of-a-percent load reading,
// retaining the max-seen value (see SetDxlTempF) in percent.
func (s *Scalars) SetDxlLoadTenthsPercent(tenths int) {
	s.dxlLoadPercent.storeMax(float64(tenths) / 10.0)
}

// DxlLoadPercent returns the max-seen Dynamixel load reading, in percent.
func (s *Scalars) DxlLoadPercent() float64 { return s.dxlLoadPercent.load() }
