package module

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
	"github.com/opsnlops/creature-controller-go/internal/mailbox"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
)

// CompiledFirmwareVersion is the firmware version this controller build
// expects every module to report on INIT, mirroring the original's
// compiled-in FIRMWARE_VERSION constant. A module reporting anything
// else fails to initialize and is left in AwaitingConfiguration.
const CompiledFirmwareVersion uint32 = 1

// Handler owns one module's lifecycle state and its outbound command
// queue. It does not own the serial link directly; a Link is wired to
// the same Incoming/Outgoing mailboxes from the outside, the way
// ServoModuleHandler hands its queues to a SerialHandler.
type Handler struct {
	logger *log.Logger
	id     protocol.ModuleId

	state atomic.Int32

	configuration protocol.ServoModuleConfiguration

	incoming *mailbox.Mailbox[string] // frames received from the device
	outgoing *mailbox.Mailbox[string] // frames queued to send to the device

	lastPingSentAt atomic.Int64 // unix seconds, 0 if none outstanding
}

// NewHandler constructs a Handler for id, starting in Idle.
func NewHandler(logger *log.Logger, id protocol.ModuleId, configuration protocol.ServoModuleConfiguration) *Handler {
	var h = &Handler{
		logger:        logger,
		id:            id,
		configuration: configuration,
		incoming:      mailbox.New[string](),
		outgoing:      mailbox.New[string](),
	}
	h.state.Store(int32(Idle))

	return h
}

// ID returns the module id this handler manages.
func (h *Handler) ID() protocol.ModuleId { return h.id }

// Incoming returns the mailbox a serial link should push received frames
// into.
func (h *Handler) Incoming() *mailbox.Mailbox[string] { return h.incoming }

// Outgoing returns the mailbox a serial link should drain to transmit.
func (h *Handler) Outgoing() *mailbox.Mailbox[string] { return h.outgoing }

// State returns the handler's current lifecycle state.
func (h *Handler) State() State {
	return State(h.state.Load())
}

func (h *Handler) setState(s State) {
	h.state.Store(int32(s))
	h.logger.Info("module state changed", "module", h.id, "state", s)
}

// Register moves the handler from Idle to AwaitingConfiguration, the
// point at which it expects to see INIT from the firmware.
func (h *Handler) Register() {
	if h.State() == Idle {
		h.setState(AwaitingConfiguration)
		h.outgoing.Push(protocol.EncodeFLUSH())
	}
}

// HandleInit reacts to an INIT frame: if the reported firmware version
// matches CompiledFirmwareVersion, sends this module's configuration and
// transitions AwaitingConfiguration -> Configuring. A version mismatch is
// a critical error — the module is left in AwaitingConfiguration and no
// configuration is sent, the same way firmwareReadyForInitialization
// refuses to proceed. INIT received in any other state is logged and
// ignored.
func (h *Handler) HandleInit(firmwareVersion string) {
	if h.State() != AwaitingConfiguration {
		h.logger.Warn("INIT received outside AwaitingConfiguration, ignoring",
			"module", h.id, "state", h.State(), "firmware_version", firmwareVersion)

		return
	}

	var reported, err = strconv.ParseUint(firmwareVersion, 10, 32)
	if err != nil {
		h.logger.Error("INIT carried unparsable firmware version",
			"module", h.id, "firmware_version", firmwareVersion)

		return
	}

	if uint32(reported) != CompiledFirmwareVersion {
		h.logger.Error("firmware version mismatch, module cannot initialize",
			"module", h.id, "expected", CompiledFirmwareVersion, "got", reported)

		return
	}

	h.logger.Info("module reported INIT", "module", h.id, "firmware_version", reported)
	h.outgoing.Push(protocol.EncodeConfiguration(h.configuration))
	h.setState(Configuring)
}

// HandleReady reacts to a READY frame: transitions Configuring -> Ready.
// READY received in any other state is logged and ignored.
func (h *Handler) HandleReady() {
	if h.State() != Configuring {
		h.logger.Warn("READY received outside Configuring, ignoring", "module", h.id, "state", h.State())

		return
	}

	h.setState(Ready)
}

// MarkStopped transitions the handler to the terminal Stopped state, the
// way a transport-fatal serial error does.
func (h *Handler) MarkStopped() {
	h.setState(Stopped)
}

// SendPing queues a PING command and records when it was sent, so a
// PONG reply can report a round-trip time.
func (h *Handler) SendPing(now time.Time) {
	h.lastPingSentAt.Store(now.Unix())
	h.outgoing.Push(protocol.EncodePING(now.Unix()))
}

// HandlePong computes the round trip for a PONG reply, returning the
// elapsed duration since the matching PING, or false if none is
// outstanding or the echoed epoch doesn't match.
func (h *Handler) HandlePong(echoedEpoch int64, now time.Time) (time.Duration, bool) {
	var sent = h.lastPingSentAt.Load()
	if sent == 0 || sent != echoedEpoch {
		return 0, false
	}

	h.lastPingSentAt.Store(0)

	return now.Sub(time.Unix(sent, 0)), true
}

// SendPositions gates a POS command on the handler being Ready; any other
// state rejects the command as UnprocessableMessage rather than sending
// motion to a module that isn't listening yet.
func (h *Handler) SendPositions(set *protocol.PositionSet) error {
	if !canAcceptMotion(h.State()) {
		return ctlerr.New(ctlerr.UnprocessableMessage, "module "+h.id.String()+" is not Ready, rejecting motion command")
	}

	var encoded = protocol.EncodePOS(set)
	if encoded == "" {
		return nil
	}

	h.outgoing.Push(encoded)

	return nil
}

// SendEstop queues an ESTOP command regardless of state — an emergency
// stop must reach every module, ready or not.
func (h *Handler) SendEstop() {
	h.outgoing.Push(protocol.EncodeESTOP())
}
