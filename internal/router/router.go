// Package router maintains the module-id -> mailbox registry and routes
// commands to, and aggregates frames from, the registered modules.
package router

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
	"github.com/opsnlops/creature-controller-go/internal/mailbox"
	"github.com/opsnlops/creature-controller-go/internal/module"
	"github.com/opsnlops/creature-controller-go/internal/protocol"
	"github.com/opsnlops/creature-controller-go/internal/worker"
)

// Router owns the registry of module handlers and the single aggregate
// inbound stream that ReceivedFrom pushes onto. Handler traffic is not
// copied onto it automatically.
type Router struct {
	logger *log.Logger

	mu       sync.RWMutex
	handlers map[protocol.ModuleId]*module.Handler

	aggregate *mailbox.Mailbox[string]
	worker    *worker.Worker
}

// New constructs an empty Router.
func New(logger *log.Logger) *Router {
	return &Router{
		logger:    logger,
		handlers:  make(map[protocol.ModuleId]*module.Handler),
		aggregate: mailbox.New[string](),
		worker:    worker.New("router"),
	}
}

// Register adds h to the registry. Registering the same module id twice
// is rejected.
func (r *Router) Register(h *module.Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.ID()]; exists {
		return ctlerr.New(ctlerr.ConfigurationInvalid, "module "+h.ID().String()+" already registered")
	}

	r.handlers[h.ID()] = h

	return nil
}

// Ids returns every registered module id.
func (r *Router) Ids() []protocol.ModuleId {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids = make([]protocol.ModuleId, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}

	return ids
}

// Send queues payload on the named module's outgoing mailbox. Sending to
// an unregistered module is a DestinationUnknown error and does not
// affect any other module.
func (r *Router) Send(id protocol.ModuleId, payload string) error {
	r.mu.RLock()
	var h, exists = r.handlers[id]
	r.mu.RUnlock()

	if !exists {
		return ctlerr.New(ctlerr.DestinationUnknown, "no module registered for "+id.String())
	}

	h.Outgoing().Push(payload)

	return nil
}

// Broadcast queues payload on every registered module's outgoing mailbox.
// Queuing onto a mailbox cannot fail, so every registered module gets the
// payload — this is the path trigger_estop relies on.
func (r *Router) Broadcast(payload string) {
	r.mu.RLock()
	var handlers = make([]*module.Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h.Outgoing().Push(payload)
	}
}

// ReceivedFrom pushes a frame's payload onto the aggregate inbound
// stream, for a module that has something to say to the controller as a
// whole rather than just to its own handler. Only the payload text is
// queued; the module id is not kept. This always succeeds.
func (r *Router) ReceivedFrom(id protocol.ModuleId, payload string) {
	r.aggregate.Push(protocol.Frame{Module: id, Payload: payload}.Payload)
}

// AllReady reports whether every registered module is in the Ready state.
func (r *Router) AllReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		if h.State() != module.Ready {
			return false
		}
	}

	return true
}

// Start launches the aggregate-stream drain worker.
func (r *Router) Start() {
	r.worker.Start(r.run)
}

// Shutdown stops the drain worker. It signals the aggregate mailbox
// first so a blocked Pop wakes immediately, then waits for the worker to
// exit.
func (r *Router) Shutdown(timeout time.Duration) {
	r.aggregate.RequestShutdown()
	r.worker.Shutdown(timeout)
}

// run drains the aggregate stream. Today this is log-only: no component
// downstream of the controller consumes cross-module traffic yet, so
// logging is the complete, deliberate behavior rather than a stub.
func (r *Router) run(stopRequested func() bool) {
	for !stopRequested() {
		var frame, ok = r.aggregate.PopTimeout(100 * time.Millisecond)
		if !ok {
			continue
		}

		r.logger.Debug("aggregate inbound frame", "payload", frame)
	}
}
