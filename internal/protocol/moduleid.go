// Package protocol defines the wire-level data model shared between the
// controller and the motor modules: module identity, motor references,
// servo positions, frames, and the command encoders that turn them into
// the TAB-delimited line protocol the modules speak.
package protocol

import "strings"

// ModuleId names one of the six addressable motor modules, or Invalid
// when no module matched.
type ModuleId int

const (
	ModuleInvalid ModuleId = iota
	ModuleA
	ModuleB
	ModuleC
	ModuleD
	ModuleE
	ModuleF
)

// String renders the module id the way frames and logs spell it.
func (m ModuleId) String() string {
	switch m {
	case ModuleA:
		return "A"
	case ModuleB:
		return "B"
	case ModuleC:
		return "C"
	case ModuleD:
		return "D"
	case ModuleE:
		return "E"
	case ModuleF:
		return "F"
	default:
		return "invalid"
	}
}

// ParseModuleId converts a single-letter module name into a ModuleId,
// returning ModuleInvalid for anything else.
func ParseModuleId(s string) ModuleId {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return ModuleA
	case "B":
		return ModuleB
	case "C":
		return ModuleC
	case "D":
		return ModuleD
	case "E":
		return ModuleE
	case "F":
		return ModuleF
	default:
		return ModuleInvalid
	}
}

// AllModuleIds returns the six real module ids in order, excluding
// ModuleInvalid.
func AllModuleIds() []ModuleId {
	return []ModuleId{ModuleA, ModuleB, ModuleC, ModuleD, ModuleE, ModuleF}
}
