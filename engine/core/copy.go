package core

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// DeepCopy returns a deep copy of v.
//
// Canonical records are values owned by the invocation that produced them;
// anything handed across a step boundary goes through here so later steps
// can never observe shared mutable state.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	copied, ok := deepcopy.Copy(v).(T)
	if !ok {
		return zero, fmt.Errorf("failed to deep copy value of type %T", v)
	}
	return copied, nil
}

// DeepCopyMap deep-copies a map[string]any, the shape raw system records use.
func DeepCopyMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	copied, ok := deepcopy.Copy(m).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to deep copy map")
	}
	return copied, nil
}
