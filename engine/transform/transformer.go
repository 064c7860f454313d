// Package transform orchestrates source → canonical → target conversions
// through the mapper registry and records a translation audit entry for
// every call.
package transform

import (
	"context"
	"sync"
	"time"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
	"github.com/testbridge/testbridge/pkg/logger"
)

// Transformer drives the two mapping legs and owns the translation log.
// Transform is deterministic for fixed inputs and registry; it never
// introduces ids or timestamps into the records it produces.
type Transformer struct {
	registry *mapper.Registry

	mu      sync.Mutex
	order   []string
	entries map[string]*Translation
}

func New(registry *mapper.Registry) *Transformer {
	return &Transformer{
		registry: registry,
		entries:  make(map[string]*Translation),
	}
}

// Transform converts one raw source record into the target dialect. Both
// legs are validated; validation messages make the translation partial,
// thrown errors make it an error entry and return a *transform.Error.
func (t *Transformer) Transform(
	ctx context.Context,
	source, target core.SystemName,
	entity core.EntityType,
	sourceData map[string]any,
	tctx *mapper.Context,
) (map[string]any, error) {
	log := logger.FromContext(ctx)
	sourceID := core.AsString(sourceData["id"])
	if tctx == nil {
		tctx = mapper.NewContext(source, target)
	}

	sourceMapper, err := t.registry.Get(source, entity)
	if err != nil {
		return nil, t.fail(source, target, entity, sourceID, tctx.MigrationID, err)
	}
	targetMapper, err := t.registry.Get(target, entity)
	if err != nil {
		return nil, t.fail(source, target, entity, sourceID, tctx.MigrationID, err)
	}

	canonicalEntity, err := sourceMapper.ToCanonical(sourceData, tctx)
	if err != nil {
		return nil, t.fail(source, target, entity, sourceID, tctx.MigrationID, err)
	}
	targetData, err := targetMapper.FromCanonical(canonicalEntity, tctx)
	if err != nil {
		return nil, t.fail(source, target, entity, sourceID, tctx.MigrationID, err)
	}

	messages := sourceMapper.ValidateMapping(sourceData, targetData)
	messages = append(messages, targetMapper.ValidateMapping(sourceData, targetData)...)

	status := StatusSuccess
	if len(messages) > 0 {
		status = StatusPartial
		log.Debug("lossy translation",
			"entity", entity, "source_id", sourceID, "messages", len(messages))
	}
	t.record(&Translation{
		SourceSystem: source,
		TargetSystem: target,
		EntityType:   entity,
		SourceID:     sourceID,
		TargetID:     core.AsString(targetData["id"]),
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Messages:     messages,
		MigrationID:  tctx.MigrationID,
	})
	return targetData, nil
}

// GetCanonicalForm exposes the first half of the pipeline.
func (t *Transformer) GetCanonicalForm(system core.SystemName, entity core.EntityType, data map[string]any) (any, error) {
	m, err := t.registry.Get(system, entity)
	if err != nil {
		return nil, err
	}
	return m.ToCanonical(data, nil)
}

// FromCanonicalForm exposes the second half of the pipeline.
func (t *Transformer) FromCanonicalForm(system core.SystemName, entity core.EntityType, entityValue any) (map[string]any, error) {
	m, err := t.registry.Get(system, entity)
	if err != nil {
		return nil, err
	}
	return m.FromCanonical(entityValue, nil)
}

// fail records an error translation entry and wraps the cause.
func (t *Transformer) fail(
	source, target core.SystemName,
	entity core.EntityType,
	sourceID, migrationID string,
	cause error,
) error {
	t.record(&Translation{
		SourceSystem: source,
		TargetSystem: target,
		EntityType:   entity,
		SourceID:     sourceID,
		TargetID:     "failed",
		Status:       StatusError,
		Timestamp:    time.Now().UTC(),
		Messages:     []string{cause.Error()},
		MigrationID:  migrationID,
	})
	return newError(entity, sourceID, cause)
}

// record writes an audit entry, overwriting in place when the key already
// exists so the log keeps first-seen ordering.
func (t *Transformer) record(entry *Translation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := entry.Key()
	if _, exists := t.entries[key]; !exists {
		t.order = append(t.order, key)
	}
	t.entries[key] = entry
}

// Translations returns a snapshot of the audit log in first-seen order.
func (t *Transformer) Translations() []Translation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Translation, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.entries[key])
	}
	return out
}

// TranslationsForMigration filters the snapshot by migration id.
func (t *Transformer) TranslationsForMigration(migrationID string) []Translation {
	all := t.Translations()
	out := make([]Translation, 0, len(all))
	for _, entry := range all {
		if entry.MigrationID == migrationID {
			out = append(out, entry)
		}
	}
	return out
}

// ClearTranslations resets the audit log.
func (t *Transformer) ClearTranslations() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = nil
	t.entries = make(map[string]*Translation)
}
