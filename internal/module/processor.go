package module

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/outbound"
	"github.com/opsnlops/creature-controller-go/internal/telemetry"
	"github.com/opsnlops/creature-controller-go/internal/worker"
)

// dispatchFunc handles one frame's tokens (tokens[0] is the tag itself).
type dispatchFunc func(tokens []string)

// Processor drains a Handler's incoming mailbox, tokenizes each frame on
// TAB, and dispatches to the registered tag handler. An empty payload is
// skipped silently; an unknown tag or a malformed frame is logged and the
// loop continues — per-frame problems never stop the processor.
type Processor struct {
	logger  *log.Logger
	handler *Handler
	bus     *telemetry.Scalars
	sink    *outbound.Sink

	dispatch map[string]dispatchFunc

	worker *worker.Worker
}

// NewProcessor wires a Processor for handler, publishing sensor notices
// to sink and telemetry to bus.
func NewProcessor(logger *log.Logger, handler *Handler, bus *telemetry.Scalars, sink *outbound.Sink) *Processor {
	var p = &Processor{
		logger:  logger,
		handler: handler,
		bus:     bus,
		sink:    sink,
		worker:  worker.New("message-processor:" + handler.ID().String()),
	}

	p.dispatch = map[string]dispatchFunc{
		"LOG":    p.handleLog,
		"STATS":  p.handleStats,
		"PONG":   p.handlePong,
		"INIT":   p.handleInit,
		"READY":  p.handleReady,
		"BSENSE": p.handleBoardSensor,
		"MSENSE": p.handleMotorSensor,
		"DSENSE": p.handleDynamixelSensor,
	}

	return p
}

// Start launches the processor's drain loop.
func (p *Processor) Start() {
	p.worker.Start(p.run)
}

// Shutdown stops the drain loop.
func (p *Processor) Shutdown(timeout time.Duration) {
	p.worker.Shutdown(timeout)
}

func (p *Processor) run(stopRequested func() bool) {
	for !stopRequested() {
		var frame, ok = p.handler.Incoming().PopTimeout(100 * time.Millisecond)
		if !ok {
			continue
		}

		p.process(frame)
	}
}

// process tokenizes and dispatches a single frame. It never returns an
// error to the caller — every failure mode is logged and the processor
// keeps running, matching the original's "don't stop the thread" policy.
func (p *Processor) process(payload string) {
	if payload == "" {
		return
	}

	var tokens = strings.Split(payload, "\t")
	if len(tokens) == 0 || tokens[0] == "" {
		p.logger.Warn("message has no tokens", "module", p.handler.ID())

		return
	}

	var fn, known = p.dispatch[tokens[0]]
	if !known {
		p.logger.Error("unknown message type", "module", p.handler.ID(), "tag", tokens[0])

		return
	}

	fn(tokens)
}
