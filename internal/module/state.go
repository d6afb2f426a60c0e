// Package module implements the per-module handler state machine and the
// message processor that dispatches inbound frames to tag handlers.
package module

// State is the lifecycle a module handler moves through from creation to
// shutdown.
type State int

const (
	Idle State = iota
	AwaitingConfiguration
	Configuring
	Ready
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfiguration:
		return "awaiting_configuration"
	case Configuring:
		return "configuring"
	case Ready:
		return "ready"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// canAcceptMotion reports whether the handler may be sent motion commands
// in the given state. Only Ready accepts motion commands.
func canAcceptMotion(s State) bool {
	return s == Ready
}
