package adapter

import (
	"errors"
	"fmt"

	"github.com/testbridge/testbridge/engine/core"
)

// Sentinel connection failures. Handlers and the workflow engine branch on
// these with errors.Is.
var (
	ErrAuth     = errors.New("authentication failed")
	ErrNetwork  = errors.New("network error")
	ErrConfig   = errors.New("invalid adapter configuration")
	ErrTimeout  = errors.New("request timed out")
	ErrNotFound = errors.New("adapter not registered")
)

// ConnectError wraps a connection failure with the system it targeted.
type ConnectError struct {
	System core.SystemName
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.System, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
