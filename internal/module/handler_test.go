package module

import (
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnlops/creature-controller-go/internal/protocol"
)

func testLogger() *log.Logger {
	var l = log.New(os.Stderr)
	l.SetLevel(log.FatalLevel + 1) // silence

	return l
}

func TestHandlerLifecycle(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{Raw: "cfg"})
	assert.Equal(t, Idle, h.State())

	h.Register()
	assert.Equal(t, AwaitingConfiguration, h.State())

	h.HandleInit("1")
	assert.Equal(t, Configuring, h.State())

	h.HandleReady()
	assert.Equal(t, Ready, h.State())

	h.MarkStopped()
	assert.Equal(t, Stopped, h.State())
}

func TestInitIgnoredOutsideAwaitingConfiguration(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})
	h.HandleInit("1")
	assert.Equal(t, Idle, h.State(), "INIT outside AwaitingConfiguration must be ignored")
}

func TestInitFirmwareVersionMismatchStaysAwaitingConfiguration(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{Raw: "cfg"})
	h.Register()

	h.HandleInit("99")
	assert.Equal(t, AwaitingConfiguration, h.State(), "firmware version mismatch must not transition to Configuring")

	assert.Equal(t, 1, h.Outgoing().Len(), "only the FLUSH from Register, no configuration sent")
}

func TestInitUnparsableFirmwareVersionStaysAwaitingConfiguration(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{Raw: "cfg"})
	h.Register()

	h.HandleInit("not-a-version")
	assert.Equal(t, AwaitingConfiguration, h.State())
}

func TestReadyIgnoredOutsideConfiguring(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})
	h.Register()
	h.HandleReady()
	assert.Equal(t, AwaitingConfiguration, h.State(), "READY outside Configuring must be ignored")
}

func TestSendPositionsGatedOnReady(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})

	var set = protocol.NewPositionSet()
	require.NoError(t, set.Add(protocol.ServoRef{Module: protocol.ModuleA, Pin: 1, Type: protocol.MotorServo}, 100))

	assert.Error(t, h.SendPositions(set), "must reject motion before Ready")

	h.Register()
	h.HandleInit("1")
	h.HandleReady()

	assert.NoError(t, h.SendPositions(set))

	var sent, ok = h.Outgoing().Pop()
	require.True(t, ok)
	assert.Contains(t, sent, "POS\t1 100")
}

func TestPingPongRoundTrip(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})

	var now = time.Unix(1700000000, 0)
	h.SendPing(now)

	var rtt, ok = h.HandlePong(1700000000, now.Add(50*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, rtt)

	// A second PONG with no outstanding PING doesn't match.
	_, ok = h.HandlePong(1700000000, now)
	assert.False(t, ok)
}

func TestEstopAlwaysAccepted(t *testing.T) {
	var h = NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})
	h.SendEstop()

	var sent, ok = h.Outgoing().Pop()
	require.True(t, ok)
	assert.Contains(t, sent, "ESTOP\t1")
}
