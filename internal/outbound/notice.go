// Package outbound defines the notices the controller publishes upstream
// (to a show-control server or similar) and the envelope they travel in.
package outbound

import (
	"encoding/json"
	"time"
)

// Notice is implemented by every concrete notice type so a Sink can
// accept them uniformly.
type Notice interface {
	command() string
}

// Envelope is the wire shape every outbound notice is wrapped in:
// {creature_id, command, payload}.
type Envelope struct {
	CreatureID string          `json:"creature_id"`
	Command    string          `json:"command"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps n in an Envelope addressed to creatureID and marshals it.
func Encode(creatureID string, n Notice) ([]byte, error) {
	var payload, err = json.Marshal(n)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		CreatureID: creatureID,
		Command:    n.command(),
		Payload:    payload,
	})
}

// PowerRail is one named rail's reading from a BSENSE frame (VBUS, the
// motor power input, 3V3, or 5V).
type PowerRail struct {
	Name    string  `json:"name"`
	Voltage float64 `json:"voltage"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

// BoardSensorReport mirrors the board-level power/temperature telemetry a
// module reports via BSENSE: one board temperature plus a reading for
// each power rail.
type BoardSensorReport struct {
	Module            string      `json:"module"`
	BoardTemperatureF float64     `json:"board_temperature"`
	PowerRails        []PowerRail `json:"power_reports"`
}

func (BoardSensorReport) command() string { return "board_sensor_report" }

// MotorReport is one entry in a MotorSensorReport's motors list.
type MotorReport struct {
	Number   int     `json:"number"`
	Position float64 `json:"position"`
	Voltage  float64 `json:"voltage"`
	Current  float64 `json:"current"`
	Power    float64 `json:"power"`
}

// MotorSensorReport mirrors the MSENSE electrical telemetry for up to
// eight motors on a module.
type MotorSensorReport struct {
	Module string        `json:"module"`
	Motors []MotorReport `json:"motors"`
}

func (MotorSensorReport) command() string { return "motor_sensor_report" }

// DynamixelMotorReport is one entry in a DynamixelSensorReport.
type DynamixelMotorReport struct {
	ID          int     `json:"id"`
	TemperatureF float64 `json:"temperature"`
	Voltage     float64 `json:"voltage"`
	LoadPercent float64 `json:"load_percent"`
}

// DynamixelSensorReport mirrors the DSENSE telemetry for a module's
// Dynamixel chain.
type DynamixelSensorReport struct {
	Module          string                 `json:"module"`
	DynamixelMotors []DynamixelMotorReport `json:"dynamixel_motors"`
}

func (DynamixelSensorReport) command() string { return "dynamixel_sensor_report" }

// WatchdogWarning is published the first time a telemetry scalar crosses
// its warn threshold, edge-triggered (not re-sent every tick).
type WatchdogWarning struct {
	WarningType  string    `json:"warning_type"`
	CurrentValue float64   `json:"current_value"`
	Threshold    float64   `json:"threshold"`
	Timestamp    time.Time `json:"timestamp"`
}

func (WatchdogWarning) command() string { return "watchdog_warning" }

// EmergencyStop is published when the watchdog triggers an ESTOP.
type EmergencyStop struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func (EmergencyStop) command() string { return "emergency_stop" }
