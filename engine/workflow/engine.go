package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/testbridge/testbridge/engine/adapter"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/migration"
	"github.com/testbridge/testbridge/pkg/logger"
)

// ErrCancelled is the terminal workflow error for a run stopped at a step
// boundary.
var ErrCancelled = errors.New("cancelled")

type runSessions struct {
	source adapter.Session
	target adapter.Session
}

// Engine executes migration workflows. Each workflow runs its step sequence
// in a single executor; workflows share only the adapter registry, the
// migration service, and the workflow registry.
type Engine struct {
	adapters *adapter.Registry
	service  *migration.Service
	registry *Registry
	store    Store
}

type EngineOption func(*Engine)

// WithStore installs a durable persistence collaborator. The default keeps
// everything in memory.
func WithStore(s Store) EngineOption {
	return func(e *Engine) { e.store = s }
}

func NewEngine(adapters *adapter.Registry, service *migration.Service, opts ...EngineOption) *Engine {
	e := &Engine{
		adapters: adapters,
		service:  service,
		registry: NewRegistry(),
		store:    NopStore{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the workflow registry for the HTTP layer.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Service exposes the migration service, including its translation log.
func (e *Engine) Service() *migration.Service {
	return e.service
}

// CreateMigrationWorkflow registers a new workflow with all steps PENDING.
// The input is stored unvalidated; step 1 validates it when the workflow
// starts.
func (e *Engine) CreateMigrationWorkflow(input *migration.Config) (*Workflow, error) {
	if input == nil {
		return nil, fmt.Errorf("workflow input is required")
	}
	wf := New(input)
	if err := e.registry.Add(wf); err != nil {
		return nil, err
	}
	if err := e.store.SaveWorkflow(wf.Snapshot()); err != nil {
		return nil, fmt.Errorf("persist workflow %s: %w", wf.ID, err)
	}
	return wf, nil
}

// Start runs the workflow's step sequence. A workflow whose state is FAILED
// resumes: COMPLETED steps are skipped and only PENDING or FAILED steps
// execute, feeding on the preserved results of earlier steps.
func (e *Engine) Start(ctx context.Context, workflowID string) error {
	wf, ok := e.registry.Get(workflowID)
	if !ok {
		return fmt.Errorf("unknown workflow %q", workflowID)
	}
	if err := wf.setState(core.StatusRunning); err != nil {
		return err
	}
	log := logger.FromContext(ctx).With("workflow_id", wf.ID)
	defer e.releaseSessions(wf)
	defer e.persist(ctx, wf)

	for i, step := range wf.Steps {
		if step.Status != core.StatusPending && step.Status != core.StatusFailed {
			continue
		}
		// Cancellation is observed at step boundaries only; a running step
		// always finishes.
		if ctx.Err() != nil {
			return e.failWorkflow(wf, step, ErrCancelled, log)
		}
		if err := wf.startStep(step); err != nil {
			return err
		}
		log.Info("step started", "step", step.ID, "name", step.Name)
		result, err := e.runStep(ctx, wf, i)
		if err != nil {
			return e.failWorkflow(wf, step, err, log)
		}
		wf.completeStep(step, result)
		log.Info("step completed", "step", step.ID)
	}

	wf.setResult(e.projectResult(wf))
	if err := wf.setState(core.StatusCompleted); err != nil {
		return err
	}
	if wf.jobID != "" {
		if err := e.service.UpdateJobStatus(wf.jobID, core.StatusCompleted); err != nil {
			log.Warn("job status update failed", "error", err)
		}
	}
	log.Info("workflow completed")
	return nil
}

// RetryStep resets one FAILED step to PENDING and clears the workflow error.
// The next Start call follows resume semantics.
func (e *Engine) RetryStep(workflowID, stepID string) error {
	wf, ok := e.registry.Get(workflowID)
	if !ok {
		return fmt.Errorf("unknown workflow %q", workflowID)
	}
	return wf.resetStep(stepID)
}

func (e *Engine) failWorkflow(wf *Workflow, step *Step, cause error, log logger.Logger) error {
	if step.Status == core.StatusRunning {
		wf.failStep(step, cause)
	}
	wf.setError(cause.Error())
	if err := wf.setState(core.StatusFailed); err != nil {
		return err
	}
	if wf.jobID != "" {
		if err := e.service.UpdateJobStatus(wf.jobID, core.StatusFailed); err != nil {
			log.Warn("job status update failed", "error", err)
		}
	}
	log.Error("workflow failed", "step", step.ID, "error", cause)
	return fmt.Errorf("workflow %s failed at %s: %w", wf.ID, step.ID, cause)
}

func (e *Engine) runStep(ctx context.Context, wf *Workflow, index int) (map[string]any, error) {
	switch index {
	case stepValidate:
		return e.validateInput(wf)
	case stepConnectSource:
		return e.connectSource(ctx, wf)
	case stepConnectTarget:
		return e.connectTarget(ctx, wf)
	case stepExtract:
		return e.extract(ctx, wf)
	case stepTransform:
		return e.transform(ctx, wf)
	case stepLoad:
		return e.load(ctx, wf)
	case stepVerify:
		return e.verify(wf)
	default:
		return nil, fmt.Errorf("no handler for step index %d", index)
	}
}

func (e *Engine) persist(ctx context.Context, wf *Workflow) {
	log := logger.FromContext(ctx)
	if err := e.store.SaveWorkflow(wf.Snapshot()); err != nil {
		log.Warn("workflow persistence failed", "workflow_id", wf.ID, "error", err)
	}
	if wf.jobID != "" {
		if err := e.store.SaveTranslations(wf.ID, e.service.Translations(wf.jobID)); err != nil {
			log.Warn("translation persistence failed", "workflow_id", wf.ID, "error", err)
		}
	}
}

func (e *Engine) releaseSessions(wf *Workflow) {
	if wf.sessions.source != nil {
		_ = wf.sessions.source.Close()
		wf.sessions.source = nil
	}
	if wf.sessions.target != nil {
		_ = wf.sessions.target.Close()
		wf.sessions.target = nil
	}
}
