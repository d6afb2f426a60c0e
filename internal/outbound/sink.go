package outbound

import (
	"github.com/charmbracelet/log"

	"github.com/opsnlops/creature-controller-go/internal/mailbox"
)

// Sink publishes notices upstream. When disabled it quietly discards
// everything pushed to it ("no connection, drop it").
type Sink struct {
	logger     *log.Logger
	creatureID string
	enabled    bool
	queue      *mailbox.Mailbox[[]byte]
}

// NewSink constructs a Sink. It starts disabled; call SetEnabled(true)
// once a real upstream connection exists.
func NewSink(logger *log.Logger, creatureID string) *Sink {
	return &Sink{
		logger:     logger,
		creatureID: creatureID,
		queue:      mailbox.New[[]byte](),
	}
}

// SetEnabled toggles whether Publish actually queues notices.
func (s *Sink) SetEnabled(enabled bool) { s.enabled = enabled }

// Publish encodes n and queues it for delivery. If the sink is disabled,
// the notice is silently dropped.
func (s *Sink) Publish(n Notice) {
	if !s.enabled {
		return
	}

	var encoded, err = Encode(s.creatureID, n)
	if err != nil {
		s.logger.Error("failed to encode outbound notice", "error", err)

		return
	}

	s.queue.Push(encoded)
}

// Next blocks for the next encoded notice, for a transport worker to
// drain and send upstream.
func (s *Sink) Next() ([]byte, bool) {
	return s.queue.Pop()
}

// Shutdown unblocks any waiting Next call.
func (s *Sink) Shutdown() {
	s.queue.RequestShutdown()
}
