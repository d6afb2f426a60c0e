package module

import (
	"strconv"
	"strings"
	"time"

	"github.com/opsnlops/creature-controller-go/internal/outbound"
)

// handleLog forwards a LOG frame straight to the controller's own logger;
// the firmware's message text is everything after the tag. Every LOG line
// is logged at debug level; the firmware's own severity field is not
// mapped to a log level.
func (p *Processor) handleLog(tokens []string) {
	if len(tokens) < 2 {
		return
	}

	p.logger.Debug("firmware log", "module", p.handler.ID(), "message", strings.Join(tokens[1:], "\t"))
}

// handleStats is a breadcrumb: the firmware's periodic stats line is
// logged and nothing else happens with it.
func (p *Processor) handleStats(tokens []string) {
	p.logger.Debug("firmware stats", "module", p.handler.ID(), "fields", tokens[1:])
}

// handlePong completes a PING round trip and logs the elapsed time.
func (p *Processor) handlePong(tokens []string) {
	if len(tokens) < 2 {
		p.logger.Warn("PONG missing echoed timestamp", "module", p.handler.ID())

		return
	}

	var echoed, err = strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		p.logger.Warn("PONG carried unparsable timestamp", "module", p.handler.ID(), "value", tokens[1])

		return
	}

	var rtt, matched = p.handler.HandlePong(echoed, time.Now())
	if !matched {
		p.logger.Warn("PONG with no outstanding PING", "module", p.handler.ID())

		return
	}

	p.logger.Info("pong from firmware", "module", p.handler.ID(), "rtt", rtt)
}

// handleInit drives the AwaitingConfiguration -> Configuring transition,
// which sends this module's configuration when the firmware version
// matches; INIT in any other state is ignored by the handler.
func (p *Processor) handleInit(tokens []string) {
	var firmwareVersion = ""
	if len(tokens) >= 2 {
		firmwareVersion = tokens[1]
	}

	p.handler.HandleInit(firmwareVersion)
}

// handleReady drives the Configuring -> Ready transition.
func (p *Processor) handleReady(_ []string) {
	p.handler.HandleReady()
}

// handleBoardSensor parses BSENSE frames: a "TEMP <f>" token followed by
// four power-rail tokens (VBUS, MP_IN, 3V3, 5V), each "<name> <voltage>
// <current> <power>". VBUS is the watchdog's power reading — the wire
// carries no combined/total figure across rails.
func (p *Processor) handleBoardSensor(tokens []string) {
	const wantTokens = 6 // BSENSE, TEMP, VBUS, MP_IN, 3V3, 5V
	if len(tokens) < wantTokens {
		p.logger.Warn("BSENSE frame missing fields", "module", p.handler.ID(), "tokens", tokens)

		return
	}

	var tempFields = strings.Fields(tokens[1])
	if len(tempFields) != 2 || tempFields[0] != "TEMP" {
		p.logger.Warn("BSENSE frame had malformed TEMP field", "module", p.handler.ID(), "tokens", tokens)

		return
	}

	var boardTemp, tErr = strconv.ParseFloat(tempFields[1], 64)
	if tErr != nil {
		p.logger.Warn("BSENSE frame had unparsable temperature", "module", p.handler.ID(), "tokens", tokens)

		return
	}

	var rails []outbound.PowerRail
	var vbusPower float64
	var sawVbus bool

	for _, token := range tokens[2:] {
		var fields = strings.Fields(token)
		if len(fields) != 4 {
			p.logger.Warn("BSENSE rail token malformed", "module", p.handler.ID(), "token", token)

			continue
		}

		var voltage, vErr = strconv.ParseFloat(fields[1], 64)
		var current, cErr = strconv.ParseFloat(fields[2], 64)
		var power, pErr = strconv.ParseFloat(fields[3], 64)

		if vErr != nil || cErr != nil || pErr != nil {
			p.logger.Warn("BSENSE rail token had unparsable field", "module", p.handler.ID(), "token", token)

			continue
		}

		rails = append(rails, outbound.PowerRail{
			Name:    fields[0],
			Voltage: voltage,
			Current: current,
			Power:   power,
		})

		if fields[0] == "VBUS" {
			vbusPower = power
			sawVbus = true
		}
	}

	p.bus.SetBoardTempF(boardTemp)
	if sawVbus {
		p.bus.SetPowerW(vbusPower)
	}

	if p.sink != nil {
		p.sink.Publish(outbound.BoardSensorReport{
			Module:            p.handler.ID().String(),
			BoardTemperatureF: boardTemp,
			PowerRails:        rails,
		})
	}
}

// handleMotorSensor parses MSENSE frames: eight fixed tokens, M0 through
// M7, each "M<n> <position> <voltage> <current> <power>". The reported
// motor number is the token's position in the frame rather than parsed
// out of its label, matching MotorSensorHandler's use of the loop index.
func (p *Processor) handleMotorSensor(tokens []string) {
	const wantMotors = 8
	if len(tokens) < wantMotors+1 {
		p.logger.Warn("MSENSE frame missing fields", "module", p.handler.ID(), "tokens", tokens)

		return
	}

	var report outbound.MotorSensorReport
	report.Module = p.handler.ID().String()

	for i, token := range tokens[1 : wantMotors+1] {
		var fields = strings.Fields(token)
		if len(fields) != 5 {
			p.logger.Warn("MSENSE token malformed", "module", p.handler.ID(), "token", token)

			continue
		}

		var position, posErr = strconv.ParseFloat(fields[1], 64)
		var voltage, vErr = strconv.ParseFloat(fields[2], 64)
		var current, cErr = strconv.ParseFloat(fields[3], 64)
		var power, pErr = strconv.ParseFloat(fields[4], 64)

		if posErr != nil || vErr != nil || cErr != nil || pErr != nil {
			p.logger.Warn("MSENSE token had unparsable field", "module", p.handler.ID(), "token", token)

			continue
		}

		report.Motors = append(report.Motors, outbound.MotorReport{
			Number:   i,
			Position: position,
			Voltage:  voltage,
			Current:  current,
			Power:    power,
		})
	}

	if p.sink != nil && len(report.Motors) > 0 {
		p.sink.Publish(report)
	}
}

// handleDynamixelSensor parses DSENSE frames: a variable number of
// tokens, one per motor, each "D<id> <temperatureF> <load>
// <voltageMillivolts>". load is signed (it carries a bidirectional
// CW/CCW load) and arrives in tenths of a percent; the report and the
// telemetry bus both hold it in percent. Voltage arrives in millivolts
// and is converted to volts. Every token
// updates the max-seen temperature and load on the telemetry bus, so a
// hotter or more-loaded motor earlier in the frame isn't masked by a
// cooler one reported later in the same frame.
func (p *Processor) handleDynamixelSensor(tokens []string) {
	var report outbound.DynamixelSensorReport
	report.Module = p.handler.ID().String()

	for _, token := range tokens[1:] {
		var fields = strings.Fields(token)
		if len(fields) != 4 || !strings.HasPrefix(fields[0], "D") {
			p.logger.Warn("DSENSE token malformed", "module", p.handler.ID(), "token", token)

			continue
		}

		var id, idErr = strconv.Atoi(strings.TrimPrefix(fields[0], "D"))
		var tempF, tErr = strconv.ParseFloat(fields[1], 64)
		var loadTenths, lErr = strconv.Atoi(fields[2])
		var voltageMV, mvErr = strconv.ParseUint(fields[3], 10, 32)

		if idErr != nil || tErr != nil || lErr != nil || mvErr != nil {
			p.logger.Warn("DSENSE token had unparsable field", "module", p.handler.ID(), "token", token)

			continue
		}

		var voltage = float64(voltageMV) / 1000.0
		var loadPercent = float64(loadTenths) / 10.0

		p.bus.SetDxlTempF(tempF)
		p.bus.SetDxlLoadTenthsPercent(loadTenths)

		report.DynamixelMotors = append(report.DynamixelMotors, outbound.DynamixelMotorReport{
			ID:           id,
			TemperatureF: tempF,
			Voltage:      voltage,
			LoadPercent:  loadPercent,
		})
	}

	if p.sink != nil && len(report.DynamixelMotors) > 0 {
		p.sink.Publish(report)
	}
}
