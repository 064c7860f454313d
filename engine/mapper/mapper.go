// Package mapper defines the bidirectional mapping contract between one
// external test-management dialect and the canonical model, plus the
// process-wide registry mappers are resolved from.
package mapper

import (
	"github.com/testbridge/testbridge/engine/core"
)

// Mapper converts between a single external system dialect and the canonical
// model for one entity type. Implementations must be pure: no I/O, and
// deterministic for identical inputs.
type Mapper interface {
	// ToCanonical normalizes a raw system record into a canonical entity
	// (*canonical.TestCase, *canonical.TestExecution, ...).
	ToCanonical(data map[string]any, ctx *Context) (any, error)
	// FromCanonical re-emits a canonical entity in the system's dialect.
	FromCanonical(entity any, ctx *Context) (map[string]any, error)
	// ValidateMapping reports discrepancies between a source record and the
	// record produced for the target (missing ids, step-count mismatches,
	// lossy conversions). An empty result means the mapping is lossless.
	ValidateMapping(source, target map[string]any) []string
}

// Context carries per-job overrides into mapper calls. Field renames and
// value substitutions apply after the mapper's default mapping, on the
// emission leg.
type Context struct {
	SourceSystem  core.SystemName           `json:"source_system"`
	TargetSystem  core.SystemName           `json:"target_system"`
	MigrationID   string                    `json:"migration_id,omitempty"`
	FieldMappings map[string]string         `json:"field_mappings,omitempty"`
	ValueMappings map[string]map[string]any `json:"value_mappings,omitempty"`
}

func NewContext(source, target core.SystemName) *Context {
	return &Context{
		SourceSystem:  source,
		TargetSystem:  target,
		FieldMappings: map[string]string{},
		ValueMappings: map[string]map[string]any{},
	}
}

// FieldName returns the override name for a canonical field, or the field
// itself when no mapping applies.
func (c *Context) FieldName(name string) string {
	if c == nil {
		return name
	}
	if mapped, ok := c.FieldMappings[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Value returns the override for a field's value, or the value itself when
// no substitution applies. Lookup keys are the value's string form.
func (c *Context) Value(field string, v any) any {
	if c == nil {
		return v
	}
	subs, ok := c.ValueMappings[field]
	if !ok {
		return v
	}
	if s := core.AsString(v); s != "" {
		if mapped, ok := subs[s]; ok {
			return mapped
		}
	}
	return v
}
