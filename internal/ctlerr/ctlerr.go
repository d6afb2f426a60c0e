// Package ctlerr defines the error kinds shared across the controller.
package ctlerr

import "errors"

// Kind classifies an error the way the controller's components report
// and react to failures.
type Kind int

const (
	// ConfigurationInvalid means the supplied configuration cannot be
	// used; the caller should treat this as fatal at startup.
	ConfigurationInvalid Kind = iota
	// DestinationUnknown means a message was addressed to a module id
	// that is not registered with the router. Non-fatal.
	DestinationUnknown
	// UnprocessableMessage means a frame could not be tokenized or
	// dispatched. Logged and dropped, never fatal.
	UnprocessableMessage
	// TransportFatal means the underlying serial link failed; the owning
	// module becomes Stopped but the rest of the controller continues.
	TransportFatal
	// ShuttingDown is returned by blocking primitives once shutdown has
	// been requested.
	ShuttingDown
)

func (k Kind) String() string {
	switch k {
	case ConfigurationInvalid:
		return "configuration invalid"
	case DestinationUnknown:
		return "destination unknown"
	case UnprocessableMessage:
		return "unprocessable message"
	case TransportFatal:
		return "transport fatal"
	case ShuttingDown:
		return "shutting down"
	default:
		return "unknown error kind"
	}
}

// Error pairs a Kind with a human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}

	return e.Kind.String() + ": " + e.Detail
}

// New builds an *Error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Is reports whether err carries the given Kind, so callers can use
// errors.Is(err, ctlerr.DestinationUnknown) style checks via the sentinel
// helpers below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}

	return false
}

// Sentinel returns a bare *Error usable as an errors.Is comparison target
// for a given Kind, e.g. errors.Is(err, ctlerr.Sentinel(ctlerr.DestinationUnknown)).
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}
