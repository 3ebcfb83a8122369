package dao

import "errors"

// Sentinel errors shared by every store implementation; callers branch with
// errors.Is instead of matching message text.
var (
	// ErrNotFound is returned when the requested policy or instance record
	// does not exist in the store.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty or otherwise unusable key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// record.
	ErrNilEntity = errors.New("dao: nil entity")
)
