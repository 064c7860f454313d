package transform

import (
	"fmt"
	"time"

	"github.com/testbridge/testbridge/engine/core"
)

// Status classifies the outcome of a single entity translation.
type Status string

const (
	// StatusSuccess means the mapping produced no validation messages.
	StatusSuccess Status = "success"
	// StatusPartial means the mapping succeeded but was lossy; the messages
	// describe what was lost or defaulted.
	StatusPartial Status = "partial"
	// StatusError means the mapping failed for this entity.
	StatusError Status = "error"
)

// Translation is the audit record written for every entity conversion.
// Exactly one entry exists per (source, target, entity type, source id)
// tuple per job; re-runs overwrite in place.
type Translation struct {
	SourceSystem core.SystemName `json:"source_system"`
	TargetSystem core.SystemName `json:"target_system"`
	EntityType   core.EntityType `json:"entity_type"`
	SourceID     string          `json:"source_id"`
	TargetID     string          `json:"target_id"`
	Status       Status          `json:"status"`
	Timestamp    time.Time       `json:"timestamp"`
	SourceData   map[string]any  `json:"source_data,omitempty"`
	TargetData   map[string]any  `json:"target_data,omitempty"`
	Messages     []string        `json:"messages,omitempty"`
	MigrationID  string          `json:"migration_id,omitempty"`
}

// Key identifies the audit slot this translation occupies.
func (t *Translation) Key() string {
	return TranslationKey(t.SourceSystem, t.TargetSystem, t.EntityType, t.SourceID)
}

func TranslationKey(source, target core.SystemName, entity core.EntityType, sourceID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", source, target, entity, sourceID)
}
