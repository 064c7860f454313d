// Package adapter defines the connector contract for external
// test-management systems and a process-wide registry of installed
// connectors. Adapters speak each system's native record dialect; the
// transformation layer owns conversion.
package adapter

import (
	"context"
	"time"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
)

// Config carries connection settings for one system endpoint.
type Config struct {
	BaseURL    string         `json:"base_url"    validate:"required"`
	APIToken   string         `json:"api_token"`
	ProjectKey string         `json:"project_key"`
	Timeout    time.Duration  `json:"timeout"`
	MaxRetries int            `json:"max_retries"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewConfig builds a Config from a raw settings map, the form job configs
// carry it in.
func NewConfig(settings map[string]any) *Config {
	cfg := &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
	if settings == nil {
		return cfg
	}
	if v, ok := settings["base_url"]; ok {
		cfg.BaseURL = core.AsString(v)
	}
	if v, ok := settings["api_token"]; ok {
		cfg.APIToken = core.AsString(v)
	}
	if v, ok := settings["project_key"]; ok {
		cfg.ProjectKey = core.AsString(v)
	}
	if v, ok := settings["max_retries"]; ok {
		if n, okInt := core.ParseAnyInt(v); okInt {
			cfg.MaxRetries = int(n)
		}
	}
	if v, ok := settings["timeout_seconds"]; ok {
		if n, okInt := core.ParseAnyInt(v); okInt && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	cfg.Extra = settings
	return cfg
}

// Adapter is an installed connector for one external system. Connect is the
// only entry point; all data access happens through the returned session.
type Adapter interface {
	System() core.SystemName
	Connect(ctx context.Context, cfg *Config) (Session, error)
}

// Session is an authenticated connection to one system. Records cross this
// boundary in the system's native dialect (raw maps), never canonical form.
type Session interface {
	// ListTestCases returns every test case in the project.
	ListTestCases(ctx context.Context, project string) ([]map[string]any, error)
	// CreateTestCase writes one test case and returns the system-assigned id.
	CreateTestCase(ctx context.Context, project string, record map[string]any) (string, error)
	// ListExecutions returns every test execution in the project.
	ListExecutions(ctx context.Context, project string) ([]map[string]any, error)
	// CreateExecution writes one execution and returns the system-assigned id.
	CreateExecution(ctx context.Context, project string, record map[string]any) (string, error)
	// UploadAttachment stores attachment content against an entity and
	// returns the storage location.
	UploadAttachment(ctx context.Context, entityID string, att *canonical.Attachment) (string, error)
	// Close releases the session.
	Close() error
}
