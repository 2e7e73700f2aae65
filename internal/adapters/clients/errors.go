// Package clients provides HTTP client adapters for downstream services.
package clients

import "errors"

// Transport-level failures. Callers (the quote client, the publisher)
// translate these into domain errors; they never reach handlers as-is.
var (
	// ErrCircuitOpen is returned while the circuit breaker is open and
	// requests to the downstream service are being short-circuited.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned once every retry attempt has been
	// used up. The last underlying error is wrapped alongside it.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
