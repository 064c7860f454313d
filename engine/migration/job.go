// Package migration owns the migration job model and the transformation
// service façade that applies job-level overrides to entity conversions.
package migration

import (
	"time"

	"github.com/google/uuid"

	"github.com/testbridge/testbridge/engine/core"
)

// Progress tracks per-job record counters, updated as the workflow runs.
type Progress struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

// Job is a configured request to move a set of entity types from one system
// to another, carrying the field- and value-mapping overrides applied during
// transformation.
type Job struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SourceSystem core.SystemName `json:"source_system"`
	SourceConfig map[string]any  `json:"source_config,omitempty"`
	TargetSystem core.SystemName `json:"target_system"`
	TargetConfig map[string]any  `json:"target_config,omitempty"`
	EntityTypes  []core.EntityType `json:"entity_types"`
	Filters      map[string]any  `json:"filters,omitempty"`

	// FieldMappings renames canonical field names per entity type before
	// emission; ValueMappings substitutes values per entity type and field.
	FieldMappings map[core.EntityType]map[string]string         `json:"field_mappings,omitempty"`
	ValueMappings map[core.EntityType]map[string]map[string]any `json:"value_mappings,omitempty"`

	Progress    Progress        `json:"progress"`
	Status      core.StatusType `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   time.Time       `json:"started_at,omitempty"`
	CompletedAt time.Time       `json:"completed_at,omitempty"`
}

// Config is the caller-supplied description of a migration job.
type Config struct {
	Name         string         `json:"name"`
	SourceSystem string         `json:"source_system"  validate:"required"`
	SourceConfig map[string]any `json:"source_config"`
	TargetSystem string         `json:"target_system"  validate:"required,nefield=SourceSystem"`
	TargetConfig map[string]any `json:"target_config"`
	ProjectKey   string         `json:"project_key"    validate:"required"`
	EntityTypes  []string       `json:"entity_types"`
	Filters      map[string]any `json:"filters"`

	FieldMappings map[string]map[string]string         `json:"field_mappings"`
	ValueMappings map[string]map[string]map[string]any `json:"value_mappings"`
}

func newJob(cfg *Config) *Job {
	job := &Job{
		ID:           uuid.NewString(),
		Name:         cfg.Name,
		SourceSystem: core.SystemName(cfg.SourceSystem),
		SourceConfig: cfg.SourceConfig,
		TargetSystem: core.SystemName(cfg.TargetSystem),
		TargetConfig: cfg.TargetConfig,
		Filters:      cfg.Filters,
		Status:       core.StatusCreated,
		CreatedAt:    time.Now().UTC(),
	}
	if len(cfg.EntityTypes) == 0 {
		job.EntityTypes = []core.EntityType{core.EntityTestCase}
	} else {
		for _, et := range cfg.EntityTypes {
			job.EntityTypes = append(job.EntityTypes, core.EntityType(et))
		}
	}
	if len(cfg.FieldMappings) > 0 {
		job.FieldMappings = make(map[core.EntityType]map[string]string, len(cfg.FieldMappings))
		for et, m := range cfg.FieldMappings {
			job.FieldMappings[core.EntityType(et)] = m
		}
	}
	if len(cfg.ValueMappings) > 0 {
		job.ValueMappings = make(map[core.EntityType]map[string]map[string]any, len(cfg.ValueMappings))
		for et, m := range cfg.ValueMappings {
			job.ValueMappings[core.EntityType(et)] = m
		}
	}
	return job
}
