package router

import (
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
	"github.com/opsnlops/creature-controller-go/internal/module"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
)

func testLogger() *log.Logger {
	var l = log.New(os.Stderr)
	l.SetLevel(log.FatalLevel + 1)

	return l
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	var r = New(testLogger())
	var h = module.NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})

	require.NoError(t, r.Register(h))
	assert.Error(t, r.Register(h))
}

func TestSendToUnregisteredModuleFails(t *testing.T) {
	var r = New(testLogger())

	var err = r.Send(protocol.ModuleA, "PING\t1")
	require.Error(t, err)

	var e *ctlerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ctlerr.DestinationUnknown, e.Kind)
}

func TestBroadcastReachesEveryModule(t *testing.T) {
	var r = New(testLogger())
	var a = module.NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})
	var b = module.NewHandler(testLogger(), protocol.ModuleB, protocol.ServoModuleConfiguration{})

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	r.Broadcast("ESTOP\t1\tCS 1")

	var fromA, okA = a.Outgoing().Pop()
	require.True(t, okA)
	assert.Equal(t, "ESTOP\t1\tCS 1", fromA)

	var fromB, okB = b.Outgoing().Pop()
	require.True(t, okB)
	assert.Equal(t, "ESTOP\t1\tCS 1", fromB)
}

func TestAllReadyRequiresEveryModule(t *testing.T) {
	var r = New(testLogger())
	var a = module.NewHandler(testLogger(), protocol.ModuleA, protocol.ServoModuleConfiguration{})
	var b = module.NewHandler(testLogger(), protocol.ModuleB, protocol.ServoModuleConfiguration{})
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	assert.False(t, r.AllReady())

	a.Register()
	a.HandleInit("1")
	a.HandleReady()
	b.Register()
	b.HandleInit("1")
	b.HandleReady()

	assert.True(t, r.AllReady())
}
