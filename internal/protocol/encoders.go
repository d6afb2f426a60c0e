package protocol

import (
	"fmt"
	"strings"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
)

// withChecksum appends the trailing "\tCS <checksum>" every command but
// FLUSH carries.
func withChecksum(payload string) string {
	return fmt.Sprintf("%s\tCS %d", payload, Checksum(payload))
}

// PositionSet accumulates ServoPositions for a single POS command,
// rejecting duplicate refs the way the original command builder does.
type PositionSet struct {
	order []ServoRef
	by    map[ServoRef]uint32
}

// NewPositionSet returns an empty PositionSet.
func NewPositionSet() *PositionSet {
	return &PositionSet{by: make(map[ServoRef]uint32)}
}

// Add records a position for ref. Adding the same ref twice is rejected.
func (p *PositionSet) Add(ref ServoRef, ticks uint32) error {
	if _, exists := p.by[ref]; exists {
		return ctlerr.New(ctlerr.UnprocessableMessage, "duplicate servo position for ref in same command")
	}

	p.order = append(p.order, ref)
	p.by[ref] = ticks

	return nil
}

// Len reports how many positions have been added.
func (p *PositionSet) Len() int { return len(p.order) }

// EncodePOS renders the accumulated positions as a POS command line. An
// empty set renders as the empty string (the caller should not send it).
func EncodePOS(p *PositionSet) string {
	if p.Len() == 0 {
		return ""
	}

	var parts = make([]string, 0, len(p.order))
	for _, ref := range p.order {
		var ticks = p.by[ref]
		if ref.Type == MotorDynamixel {
			parts = append(parts, fmt.Sprintf("D%d %d", ref.Pin, ticks))
		} else {
			parts = append(parts, fmt.Sprintf("%d %d", ref.Pin, ticks))
		}
	}

	return withChecksum("POS\t" + strings.Join(parts, "\t"))
}

// EncodeESTOP renders the emergency-stop command.
func EncodeESTOP() string {
	return withChecksum("ESTOP\t1")
}

// EncodePING renders a ping command carrying the given epoch-seconds
// timestamp, used to measure round-trip time via the PONG reply.
func EncodePING(epochSeconds int64) string {
	return withChecksum(fmt.Sprintf("PING\t%d", epochSeconds))
}

// EncodeFLUSH renders the flush command, a single bell byte that carries
// no checksum — the firmware treats it as "discard whatever you have
// buffered and resynchronize".
func EncodeFLUSH() string {
	return "\a"
}

// ServoModuleConfiguration is the configuration string sent to a module
// once it reports INIT; its exact shape is owned by the controller side,
// this type just carries it down to the encoder layer.
type ServoModuleConfiguration struct {
	Raw string
}

// EncodeConfiguration renders a module configuration command.
func EncodeConfiguration(cfg ServoModuleConfiguration) string {
	return withChecksum("CONFIG\t" + cfg.Raw)
}
