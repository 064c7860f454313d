package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is the canonical identifier type used across the engine.
type ID string

func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID generates a new ID and panics on failure.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

func ParseID(s string) (ID, error) {
	if _, err := ksuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(s), nil
}

func (i ID) String() string {
	return string(i)
}

func (i ID) IsZero() bool {
	return i == ""
}
