package migration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
	"github.com/testbridge/testbridge/engine/transform"
	"github.com/testbridge/testbridge/pkg/logger"
)

// EntityAll is the wildcard key for mappings that apply to every entity type.
const EntityAll core.EntityType = "*"

// Service is the stateful façade over the transformer: it owns the job
// table, assembles per-job transformation contexts, and exposes the
// translation audit log.
type Service struct {
	transformer *transform.Transformer
	validate    *validator.Validate

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewService(transformer *transform.Transformer) *Service {
	return &Service{
		transformer: transformer,
		validate:    validator.New(),
		jobs:        make(map[string]*Job),
	}
}

// CreateJob validates the config, registers the job, and returns it.
func (s *Service) CreateJob(cfg *Config) (*Job, error) {
	if cfg == nil {
		return nil, fmt.Errorf("job config is required")
	}
	if err := s.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid job config: %w", err)
	}
	if !core.IsRecognizedSystem(cfg.SourceSystem) {
		return nil, fmt.Errorf("unrecognized source system %q", cfg.SourceSystem)
	}
	if !core.IsRecognizedSystem(cfg.TargetSystem) {
		return nil, fmt.Errorf("unrecognized target system %q", cfg.TargetSystem)
	}
	job := newJob(cfg)
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job, nil
}

func (s *Service) GetJob(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// UpdateJobStatus moves a job through its lifecycle, stamping timing.
func (s *Service) UpdateJobStatus(id string, status core.StatusType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("unknown migration job %q", id)
	}
	job.Status = status
	now := time.Now().UTC()
	switch status {
	case core.StatusRunning:
		if job.StartedAt.IsZero() {
			job.StartedAt = now
		}
	case core.StatusCompleted, core.StatusFailed:
		job.CompletedAt = now
	}
	return nil
}

// AddProgress accumulates record counters on a job.
func (s *Service) AddProgress(id string, migrated, failed, warnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Progress.Migrated += migrated
		job.Progress.Failed += failed
		job.Progress.Warnings += warnings
		job.Progress.Total = job.Progress.Migrated + job.Progress.Failed
	}
}

// ContextFor assembles the transformation context for one entity type,
// merging wildcard mappings under entity-specific ones.
func (s *Service) ContextFor(job *Job, entity core.EntityType) (*mapper.Context, error) {
	tctx := mapper.NewContext(job.SourceSystem, job.TargetSystem)
	tctx.MigrationID = job.ID

	for _, key := range []core.EntityType{entity, EntityAll} {
		if fm, ok := job.FieldMappings[key]; ok {
			if err := mergo.Merge(&tctx.FieldMappings, fm); err != nil {
				return nil, fmt.Errorf("merge field mappings for %s: %w", key, err)
			}
		}
		if vm, ok := job.ValueMappings[key]; ok {
			if err := mergo.Merge(&tctx.ValueMappings, vm); err != nil {
				return nil, fmt.Errorf("merge value mappings for %s: %w", key, err)
			}
		}
	}
	return tctx, nil
}

// TransformEntity runs one raw record through the transformer using the
// job's overrides. Per-record errors are returned, not fatal: the caller
// decides whether the batch survives.
func (s *Service) TransformEntity(
	ctx context.Context,
	job *Job,
	entity core.EntityType,
	record map[string]any,
) (map[string]any, error) {
	tctx, err := s.ContextFor(job, entity)
	if err != nil {
		return nil, err
	}
	out, err := s.transformer.Transform(ctx, job.SourceSystem, job.TargetSystem, entity, record, tctx)
	if err != nil {
		logger.FromContext(ctx).Warn("record transformation failed",
			"job_id", job.ID, "entity", entity, "error", err)
		return nil, err
	}
	return out, nil
}

// Translations returns the audit entries recorded for a job.
func (s *Service) Translations(jobID string) []transform.Translation {
	return s.transformer.TranslationsForMigration(jobID)
}

// AllTranslations returns the full audit log snapshot.
func (s *Service) AllTranslations() []transform.Translation {
	return s.transformer.Translations()
}

// ClearTranslations resets the audit log.
func (s *Service) ClearTranslations() {
	s.transformer.ClearTranslations()
}

// Transformer exposes the underlying transformer for callers that need the
// canonical form directly.
func (s *Service) Transformer() *transform.Transformer {
	return s.transformer
}
