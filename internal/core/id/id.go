// Package id generates the UUIDv7 identifiers used by every row in the
// system: stores, tanks, movements, rate windows, closing periods and the
// batch ids that group them. UUIDv7 carries the creation timestamp in its
// high bits, so ids sort chronologically and closing batches cluster in the
// B-tree in the order they were written.
package id

import (
	"github.com/google/uuid"
)

// ID aliases uuid.UUID so repositories can pass ids straight to pgx.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7 per RFC 9562.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to V4
		// rather than surface an error nobody can handle.
		return uuid.New()
	}
	return id
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to an ID, panicking on error. For fixtures
// and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero-value ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
