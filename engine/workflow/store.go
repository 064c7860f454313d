package workflow

import (
	"github.com/testbridge/testbridge/engine/transform"
)

// Store is the optional durable-persistence collaborator. The engine calls
// it with snapshots; implementations own serialization and storage. The
// core itself keeps all state in memory.
type Store interface {
	SaveWorkflow(wf *Workflow) error
	LoadWorkflow(id string) (*Workflow, bool, error)
	SaveTranslations(workflowID string, entries []transform.Translation) error
	LoadTranslations(workflowID string) ([]transform.Translation, error)
}

// NopStore discards everything. It is the default.
type NopStore struct{}

func (NopStore) SaveWorkflow(*Workflow) error { return nil }

func (NopStore) LoadWorkflow(string) (*Workflow, bool, error) { return nil, false, nil }

func (NopStore) SaveTranslations(string, []transform.Translation) error { return nil }

func (NopStore) LoadTranslations(string) ([]transform.Translation, error) { return nil, nil }
