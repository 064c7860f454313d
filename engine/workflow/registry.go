package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the process-wide map of workflow id to workflow. After
// creation each entry has a single writer (the workflow's executor);
// readers take snapshots.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

func NewRegistry() *Registry {
	return &Registry{workflows: make(map[string]*Workflow)}
}

func (r *Registry) Add(wf *Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workflows[wf.ID]; exists {
		return fmt.Errorf("workflow %s already registered", wf.ID)
	}
	r.workflows[wf.ID] = wf
	return nil
}

func (r *Registry) Get(id string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[id]
	return wf, ok
}

// List returns snapshots of every workflow, oldest first.
func (r *Registry) List() []*Workflow {
	r.mu.RLock()
	items := make([]*Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		items = append(items, wf)
	}
	r.mu.RUnlock()

	out := make([]*Workflow, 0, len(items))
	for _, wf := range items {
		out = append(out, wf.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}
