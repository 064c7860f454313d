package workflow

import (
	"context"
	"fmt"

	"github.com/testbridge/testbridge/engine/adapter"
	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/migration"
	"github.com/testbridge/testbridge/pkg/logger"
)

// extractedRecords is the shape carried in the extract step result and
// consumed by transform.
type extractedRecords map[core.EntityType][]map[string]any

// validateInput is step 1: the job config is checked and the migration job
// created. A failure here is fatal and requires a corrected input.
func (e *Engine) validateInput(wf *Workflow) (map[string]any, error) {
	job, err := e.service.CreateJob(wf.Input)
	if err != nil {
		return nil, err
	}
	wf.jobID = job.ID
	if err := e.service.UpdateJobStatus(job.ID, core.StatusRunning); err != nil {
		return nil, err
	}
	return map[string]any{
		"job_id":      job.ID,
		"project_key": wf.Input.ProjectKey,
	}, nil
}

// connectSource is step 2: opens the source session; no data is fetched.
func (e *Engine) connectSource(ctx context.Context, wf *Workflow) (map[string]any, error) {
	sess, err := e.connect(ctx, core.SystemName(wf.Input.SourceSystem), wf.Input.SourceConfig)
	if err != nil {
		return nil, err
	}
	wf.sessions.source = sess
	return map[string]any{"system": wf.Input.SourceSystem, "connected": true}, nil
}

// connectTarget is step 3.
func (e *Engine) connectTarget(ctx context.Context, wf *Workflow) (map[string]any, error) {
	sess, err := e.connect(ctx, core.SystemName(wf.Input.TargetSystem), wf.Input.TargetConfig)
	if err != nil {
		return nil, err
	}
	wf.sessions.target = sess
	return map[string]any{"system": wf.Input.TargetSystem, "connected": true}, nil
}

func (e *Engine) connect(ctx context.Context, system core.SystemName, settings map[string]any) (adapter.Session, error) {
	a, err := e.adapters.Get(system)
	if err != nil {
		return nil, err
	}
	return a.Connect(ctx, adapter.NewConfig(settings))
}

// ensureSource reopens the source session on a resumed run where the connect
// step completed in an earlier run. Step status is untouched.
func (e *Engine) ensureSource(ctx context.Context, wf *Workflow) (adapter.Session, error) {
	if wf.sessions.source != nil {
		return wf.sessions.source, nil
	}
	sess, err := e.connect(ctx, core.SystemName(wf.Input.SourceSystem), wf.Input.SourceConfig)
	if err != nil {
		return nil, err
	}
	wf.sessions.source = sess
	return sess, nil
}

func (e *Engine) ensureTarget(ctx context.Context, wf *Workflow) (adapter.Session, error) {
	if wf.sessions.target != nil {
		return wf.sessions.target, nil
	}
	sess, err := e.connect(ctx, core.SystemName(wf.Input.TargetSystem), wf.Input.TargetConfig)
	if err != nil {
		return nil, err
	}
	wf.sessions.target = sess
	return sess, nil
}

func (e *Engine) job(wf *Workflow) (*migration.Job, error) {
	job, ok := e.service.GetJob(wf.jobID)
	if !ok {
		return nil, fmt.Errorf("migration job missing for workflow %s", wf.ID)
	}
	return job, nil
}

// extract is step 4: pulls raw records from the source, per entity type, in
// adapter order.
func (e *Engine) extract(ctx context.Context, wf *Workflow) (map[string]any, error) {
	sess, err := e.ensureSource(ctx, wf)
	if err != nil {
		return nil, err
	}
	job, err := e.job(wf)
	if err != nil {
		return nil, err
	}
	records := make(extractedRecords)
	total := 0
	for _, entity := range job.EntityTypes {
		var batch []map[string]any
		switch entity {
		case core.EntityTestCase:
			batch, err = sess.ListTestCases(ctx, wf.Input.ProjectKey)
		case core.EntityTestExecution:
			batch, err = sess.ListExecutions(ctx, wf.Input.ProjectKey)
		default:
			return nil, fmt.Errorf("unsupported entity type %q", entity)
		}
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", entity, err)
		}
		records[entity] = batch
		total += len(batch)
	}
	return map[string]any{"count": total, "records": records}, nil
}

// transform is step 5: feeds each extracted record through the
// transformation service. Per-record failures do not fail the step; the
// step fails only when every record fails.
func (e *Engine) transform(ctx context.Context, wf *Workflow) (map[string]any, error) {
	prev := wf.stepResult(stepExtract)
	extracted, _ := prev["records"].(extractedRecords)
	job, err := e.job(wf)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	transformed := make(extractedRecords)
	succeeded, failed := 0, 0
	for _, entity := range job.EntityTypes {
		for _, record := range extracted[entity] {
			out, err := e.service.TransformEntity(ctx, job, entity, record)
			if err != nil {
				failed++
				log.Warn("record failed transformation",
					"workflow_id", wf.ID, "entity", entity, "error", err)
				continue
			}
			transformed[entity] = append(transformed[entity], out)
			succeeded++
		}
	}
	if succeeded == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d records failed transformation", failed)
	}
	return map[string]any{
		"records":   transformed,
		"succeeded": succeeded,
		"failed":    failed,
	}, nil
}

// load is step 6: pushes every transformed record to the target. An adapter
// write error is fatal for the run.
func (e *Engine) load(ctx context.Context, wf *Workflow) (map[string]any, error) {
	sess, err := e.ensureTarget(ctx, wf)
	if err != nil {
		return nil, err
	}
	job, err := e.job(wf)
	if err != nil {
		return nil, err
	}
	prev := wf.stepResult(stepTransform)
	transformed, _ := prev["records"].(extractedRecords)
	var summary []map[string]any
	loaded, uploaded := 0, 0
	for _, entity := range job.EntityTypes {
		for _, record := range transformed[entity] {
			sourceID := core.AsString(record["id"])
			var targetID string
			switch entity {
			case core.EntityTestCase:
				targetID, err = sess.CreateTestCase(ctx, wf.Input.ProjectKey, record)
			case core.EntityTestExecution:
				targetID, err = sess.CreateExecution(ctx, wf.Input.ProjectKey, record)
			default:
				err = fmt.Errorf("unsupported entity type %q", entity)
			}
			if err != nil {
				return nil, fmt.Errorf("load %s %s: %w", entity, sourceID, err)
			}
			n, err := e.uploadAttachments(ctx, sess, targetID, record)
			if err != nil {
				return nil, fmt.Errorf("load %s %s: %w", entity, sourceID, err)
			}
			uploaded += n
			entry := map[string]any{
				"source_id": sourceID,
				"target_id": targetID,
				"status":    "loaded",
			}
			if n > 0 {
				entry["attachments"] = n
			}
			summary = append(summary, entry)
			loaded++
		}
	}
	return map[string]any{"loaded": loaded, "attachments": uploaded, "records": summary}, nil
}

// uploadAttachments pushes a loaded record's attachment metadata to the
// target and stamps the returned storage location onto each entry. Both
// dialects' key sets are accepted since records arrive in target form.
func (e *Engine) uploadAttachments(ctx context.Context, sess adapter.Session, targetID string, record map[string]any) (int, error) {
	raw, ok := record["attachments"].([]any)
	if !ok {
		return 0, nil
	}
	uploaded := 0
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		att := &canonical.Attachment{
			FileName: firstString(entry, "name", "filename"),
			FileType: firstString(entry, "content_type", "contentType"),
		}
		if size, ok := core.ParseAnyInt(firstValue(entry, "size", "fileSize")); ok {
			att.Size = size
		}
		location, err := sess.UploadAttachment(ctx, targetID, att)
		if err != nil {
			return uploaded, fmt.Errorf("upload attachment %q: %w", att.FileName, err)
		}
		entry["storage_location"] = location
		uploaded++
	}
	return uploaded, nil
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	return core.AsString(firstValue(m, keys...))
}

// verify is step 7: cross-checks counts. A mismatch produces warnings; the
// step fails only when nothing loaded while records were expected.
func (e *Engine) verify(wf *Workflow) (map[string]any, error) {
	extractCount := intFromResult(wf.stepResult(stepExtract), "count")
	transformFailed := intFromResult(wf.stepResult(stepTransform), "failed")
	loaded := intFromResult(wf.stepResult(stepLoad), "loaded")

	if extractCount > 0 && loaded == 0 {
		return nil, fmt.Errorf("verification failed: 0 of %d records reached the target", extractCount)
	}
	var warnings []string
	if loaded != extractCount {
		warnings = append(warnings, fmt.Sprintf(
			"count mismatch: extracted %d, loaded %d", extractCount, loaded))
	}
	if wf.jobID != "" {
		e.service.AddProgress(wf.jobID, loaded, transformFailed, len(warnings))
	}
	return map[string]any{
		"success":       true,
		"migratedCount": loaded,
		"failedCount":   transformFailed,
		"warnings":      warnings,
	}, nil
}

// projectResult assembles the workflow result from the verify summary and
// the load step's per-record outcomes.
func (e *Engine) projectResult(wf *Workflow) map[string]any {
	result := copyResult(wf.stepResult(stepVerify))
	if result == nil {
		result = map[string]any{}
	}
	if loadResult := wf.stepResult(stepLoad); loadResult != nil {
		result["records"] = loadResult["records"]
	}
	return result
}

func intFromResult(result map[string]any, key string) int {
	if result == nil {
		return 0
	}
	n, _ := core.ParseAnyInt(result[key])
	return int(n)
}
