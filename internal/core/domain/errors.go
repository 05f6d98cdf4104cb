package domain

import "errors"

var (
	// ErrNotFound is returned when a ride or zone does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBoundaryNotFound means the geocoder has no polygon for the query,
	// for example because it resolved to a point.
	ErrBoundaryNotFound = errors.New("boundary not found")

	// ErrInvalidShape is returned when a ride or zone has too few coordinates.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrStaleResult is returned for a boundary lookup that was superseded
	// by a newer one before it completed.
	ErrStaleResult = errors.New("stale result")

	// ErrUpstream wraps a failed call to the external geocoder.
	ErrUpstream = errors.New("upstream geocoder error")

	// ErrUpstreamUnavailable is returned while calls to the geocoder are
	// short-circuited after repeated failures.
	ErrUpstreamUnavailable = errors.New("upstream geocoder unavailable")
)
