package transform

import (
	"fmt"

	"github.com/testbridge/testbridge/engine/core"
)

// Error wraps a per-entity transformation failure with the entity it was
// translating, so callers can mark that single record failed and continue.
type Error struct {
	EntityType core.EntityType
	SourceID   string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transform %s %q: %v", e.EntityType, e.SourceID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(entity core.EntityType, sourceID string, err error) *Error {
	return &Error{EntityType: entity, SourceID: sourceID, Err: err}
}
