package protocol

// MotorType names the kind of actuator a ServoRef addresses.
type MotorType int

const (
	MotorInvalid MotorType = iota
	MotorServo
	MotorDynamixel
	MotorStepper
)

func (t MotorType) String() string {
	switch t {
	case MotorServo:
		return "servo"
	case MotorDynamixel:
		return "dynamixel"
	case MotorStepper:
		return "stepper"
	default:
		return "invalid"
	}
}

// ServoRef identifies one actuator: which module it's wired to, which pin
// or bus id on that module, and what kind of motor it is.
type ServoRef struct {
	Module ModuleId
	Pin    uint16
	Type   MotorType
}

// ServoPosition pairs a ServoRef with a target tick value. Ticks is a u32
// since Dynamixel extended/multi-turn positions exceed a 16-bit range.
type ServoPosition struct {
	Ref   ServoRef
	Ticks uint32
}

// Frame is one line of the wire protocol addressed to or received from a
// module: the module it concerns, and the raw payload (without the
// trailing newline the serial link strips/appends).
type Frame struct {
	Module  ModuleId
	Payload string
}
