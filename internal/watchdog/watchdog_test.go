package watchdog

import (
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnlops/creature-controller-go/internal/outbound"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
	"github.com/opsnlops/creature-controller-go/internal/telemetry"
)

type fakeRouter struct {
	broadcasts []string
	ids        []protocol.ModuleId
}

func (f *fakeRouter) Broadcast(payload string) { f.broadcasts = append(f.broadcasts, payload) }
func (f *fakeRouter) Ids() []protocol.ModuleId { return f.ids }

func testLogger() *log.Logger {
	var l = log.New(os.Stderr)
	l.SetLevel(log.FatalLevel + 1)

	return l
}

func TestTriggerEstopBroadcastsAndPublishes(t *testing.T) {
	var bus = &telemetry.Scalars{}
	var router = &fakeRouter{ids: []protocol.ModuleId{protocol.ModuleA, protocol.ModuleB}}
	var sink = outbound.NewSink(testLogger(), "test-creature")
	sink.SetEnabled(true)

	var w = New(testLogger(), bus, router, sink, Thresholds{
		PowerLimitWatts: 100, PowerWarnWatts: 50, PowerDwell: 0,
		BoardTempLimitF: 200, DxlTempLimitF: 200, DxlLoadLimitPercent: 200,
	})

	w.triggerEstop("test reason")

	require.Len(t, router.broadcasts, 1)
	assert.Contains(t, router.broadcasts[0], "ESTOP\t1")

	var payload, ok = sink.Next()
	require.True(t, ok)
	assert.Contains(t, string(payload), "emergency_stop")
	assert.Contains(t, string(payload), "test reason")

	assert.True(t, w.estopped.Load())
}

func TestSamplePowerBreachTriggersAfterDwell(t *testing.T) {
	var bus = &telemetry.Scalars{}
	var router = &fakeRouter{}
	var w = New(testLogger(), bus, router, nil, Thresholds{
		PowerLimitWatts: 50, PowerWarnWatts: 25, PowerDwell: 0,
		BoardTempLimitF: 1000, DxlTempLimitF: 1000, DxlLoadLimitPercent: 1000,
	})

	bus.SetPowerW(100)
	w.sample()
	w.sample()

	assert.True(t, w.estopped.Load())
	assert.Len(t, router.broadcasts, 1)
}

func TestSampleWithinLimitsNeverTriggers(t *testing.T) {
	var bus = &telemetry.Scalars{}
	var router = &fakeRouter{}
	var w = New(testLogger(), bus, router, nil, Thresholds{
		PowerLimitWatts: 500, PowerWarnWatts: 400, PowerDwell: time.Second,
		BoardTempLimitF: 200, DxlTempLimitF: 200, DxlLoadLimitPercent: 100,
	})

	bus.SetPowerW(10)
	bus.SetBoardTempF(70)
	bus.SetDxlTempF(70)
	bus.SetDxlLoadTenthsPercent(100)

	for i := 0; i < 5; i++ {
		w.sample()
	}

	assert.False(t, w.estopped.Load())
	assert.Empty(t, router.broadcasts)
}
