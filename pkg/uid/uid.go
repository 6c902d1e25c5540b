// Package uid generates the random identifiers used as cache keys.
package uid

import "github.com/google/uuid"

// New returns a random version 4 UUID string.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether id is a well-formed UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
