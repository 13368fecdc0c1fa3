// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error taxonomy shared across stages. Callers classify failures with
// errors.Is; the HTTP layer maps each class to a status code.
var (
	// ErrInvalidQuery marks malformed input (empty query, bad identifier).
	// Raised before any I/O is attempted.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUpstreamUnavailable marks a network failure or non-2xx response
	// from an external catalog. Retryable by the caller; not retried
	// beyond the transport-level backoff.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound marks an identifier that does not resolve to an item,
	// or resolves to an item with no playable files.
	ErrNotFound = errors.New("not found")

	// ErrAllSourcesFailed marks an aggregated search where every upstream
	// source failed. A search that succeeds on at least one source does
	// not carry this error even if the result set is empty.
	ErrAllSourcesFailed = errors.New("all search sources failed")
)
