package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers. Handlers map these
// to HTTP statuses; services wrap them with context via fmt.Errorf("%w").
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden: booking belongs to another user")

	ErrNotFound        = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSignatureMismatch is security-relevant and non-retryable. The
	// expected signature is never included in the error.
	ErrSignatureMismatch = errors.New("payment signature verification failed")

	ErrCancellationClosed = errors.New("cancellation window has closed")
	ErrNotCancellable     = errors.New("booking is not in a cancellable state")

	// ErrBookingCancelled means a payment completed for a booking that
	// was cancelled first (user cancel or pending expiry). The confirm
	// is refused; the money trail lives in the payment audit.
	ErrBookingCancelled = errors.New("booking was cancelled before payment completed")
)

// GatewayError wraps an upstream payment provider rejection. The upstream
// message is preserved to aid debugging but the request is never retried
// automatically.
type GatewayError struct {
	Gateway string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Gateway, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError marks a failed store write. During order creation it is
// fatal to the attempt: gateway credentials must not reach a client whose
// booking row was never tracked.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
