// Package workflow implements the staged, resumable state machine that
// drives a migration job: validate, connect source, connect target, extract,
// transform, load, verify.
package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/migration"
)

const TypeTestMigration = "test_migration"

// Canonical step identity. The pipeline shape is fixed: ids step-1 through
// step-7, in this order.
var stepNames = []string{
	"Validate Input",
	"Connect Source",
	"Connect Target",
	"Extract",
	"Transform",
	"Load",
	"Verify",
}

const (
	stepValidate = iota
	stepConnectSource
	stepConnectTarget
	stepExtract
	stepTransform
	stepLoad
	stepVerify
)

// Step is one unit of execution inside a workflow.
type Step struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Order     int             `json:"order"`
	Status    core.StatusType `json:"status"`
	StartTime time.Time       `json:"start_time,omitempty"`
	EndTime   time.Time       `json:"end_time,omitempty"`
	Result    map[string]any  `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Workflow is a running migration instance. All mutation goes through the
// engine; readers take a Snapshot.
type Workflow struct {
	mu sync.RWMutex

	ID          string            `json:"id"`
	Type        string            `json:"type"`
	State       core.StatusType   `json:"state"`
	Input       *migration.Config `json:"input"`
	Steps       []*Step           `json:"steps"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   time.Time         `json:"started_at,omitempty"`
	CompletedAt time.Time         `json:"completed_at,omitempty"`
	Result      map[string]any    `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`

	// Run-scoped state, never serialized. jobID binds the workflow to its
	// migration job once validation has passed; the sessions live only for
	// the duration of a run.
	jobID    string
	sessions runSessions
}

// New creates a workflow in CREATED with all seven steps PENDING. The input
// is accepted as-is; validation is the first step's job.
func New(input *migration.Config) *Workflow {
	wf := &Workflow{
		ID:        core.MustNewID().String(),
		Type:      TypeTestMigration,
		State:     core.StatusCreated,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
	for i, name := range stepNames {
		wf.Steps = append(wf.Steps, &Step{
			ID:     fmt.Sprintf("step-%d", i+1),
			Name:   name,
			Order:  i + 1,
			Status: core.StatusPending,
		})
	}
	return wf
}

// canTransitionWorkflow encodes the legal workflow state changes. FAILED to
// RUNNING is the resume path.
func canTransitionWorkflow(from, to core.StatusType) bool {
	switch from {
	case core.StatusCreated:
		return to == core.StatusRunning
	case core.StatusRunning:
		return to == core.StatusCompleted || to == core.StatusFailed
	case core.StatusFailed:
		return to == core.StatusRunning
	default:
		return false
	}
}

// canTransitionStep encodes the legal step state changes. FAILED to PENDING
// is the explicit retry reset.
func canTransitionStep(from, to core.StatusType) bool {
	switch from {
	case core.StatusPending:
		return to == core.StatusRunning
	case core.StatusRunning:
		return to == core.StatusCompleted || to == core.StatusFailed
	case core.StatusFailed:
		return to == core.StatusPending || to == core.StatusRunning
	default:
		return false
	}
}

func (w *Workflow) setState(to core.StatusType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !canTransitionWorkflow(w.State, to) {
		return fmt.Errorf("illegal workflow transition %s -> %s", w.State, to)
	}
	now := time.Now().UTC()
	switch to {
	case core.StatusRunning:
		if w.StartedAt.IsZero() {
			w.StartedAt = now
		}
		w.Error = ""
	case core.StatusCompleted, core.StatusFailed:
		w.CompletedAt = now
	}
	w.State = to
	return nil
}

func (w *Workflow) setError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Error = msg
}

func (w *Workflow) setResult(result map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Result = result
}

// CurrentState reads the workflow state.
func (w *Workflow) CurrentState() core.StatusType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.State
}

// Snapshot returns a deep copy safe to read while the workflow runs.
func (w *Workflow) Snapshot() *Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := &Workflow{
		ID:          w.ID,
		Type:        w.Type,
		State:       w.State,
		Input:       w.Input,
		CreatedAt:   w.CreatedAt,
		StartedAt:   w.StartedAt,
		CompletedAt: w.CompletedAt,
		Error:       w.Error,
	}
	if w.Result != nil {
		out.Result = copyResult(w.Result)
	}
	for _, s := range w.Steps {
		copied := *s
		if s.Result != nil {
			copied.Result = copyResult(s.Result)
		}
		out.Steps = append(out.Steps, &copied)
	}
	return out
}

// copyResult deep-copies a step or workflow result map. Results only hold
// JSON-shaped values, so a copy failure cannot happen in practice; the
// original is returned as a last resort.
func copyResult(m map[string]any) map[string]any {
	copied, err := core.DeepCopyMap(m)
	if err != nil {
		return m
	}
	return copied
}

// StepByID finds a step by its canonical id.
func (w *Workflow) StepByID(id string) (*Step, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (w *Workflow) startStep(s *Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s.Status == core.StatusFailed {
		// Rerun of a failed step; clear the previous attempt first.
		s.Error = ""
		s.Result = nil
	}
	if !canTransitionStep(s.Status, core.StatusRunning) {
		return fmt.Errorf("illegal step transition %s -> %s for %s", s.Status, core.StatusRunning, s.ID)
	}
	s.Status = core.StatusRunning
	s.StartTime = time.Now().UTC()
	s.EndTime = time.Time{}
	return nil
}

func (w *Workflow) completeStep(s *Step, result map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s.Status = core.StatusCompleted
	s.EndTime = time.Now().UTC()
	s.Result = result
}

func (w *Workflow) failStep(s *Step, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s.Status = core.StatusFailed
	s.EndTime = time.Now().UTC()
	s.Error = err.Error()
}

// resetStep moves one FAILED step back to PENDING and clears the workflow
// error so a subsequent start can resume.
func (w *Workflow) resetStep(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.Steps {
		if s.ID != id {
			continue
		}
		if !canTransitionStep(s.Status, core.StatusPending) {
			return fmt.Errorf("step %s cannot be retried from %s", id, s.Status)
		}
		s.Status = core.StatusPending
		s.Error = ""
		s.Result = nil
		w.Error = ""
		return nil
	}
	return fmt.Errorf("unknown step %q", id)
}

func (w *Workflow) stepResult(index int) map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if index < 0 || index >= len(w.Steps) {
		return nil
	}
	return w.Steps[index].Result
}
