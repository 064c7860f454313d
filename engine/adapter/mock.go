package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/pkg/logger"
)

// MockAdapter is an in-memory connector used for dry runs and tests. It
// serves records from a JSON fixture document shaped as
// {"projects": {"KEY": {"test_cases": [...], "executions": [...]}}} and
// accepts writes into per-session memory.
type MockAdapter struct {
	system          core.SystemName
	fixture         []byte
	connectFailures int

	mu       sync.Mutex
	attempts int
}

type MockOption func(*MockAdapter)

// WithFixture seeds the adapter with a JSON fixture document.
func WithFixture(doc []byte) MockOption {
	return func(m *MockAdapter) { m.fixture = doc }
}

// WithConnectFailures makes the first n connection attempts fail with a
// transient network error, for exercising retry behavior.
func WithConnectFailures(n int) MockOption {
	return func(m *MockAdapter) { m.connectFailures = n }
}

func NewMock(system core.SystemName, opts ...MockOption) *MockAdapter {
	m := &MockAdapter{system: system}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockAdapter) System() core.SystemName {
	return m.system
}

// Connect validates the config and retries transient failures with
// exponential backoff before giving up.
func (m *MockAdapter) Connect(ctx context.Context, cfg *Config) (Session, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, &ConnectError{System: m.system, Err: fmt.Errorf("%w: base_url is required", ErrConfig)}
	}
	if cfg.APIToken == "" {
		return nil, &ConnectError{System: m.system, Err: fmt.Errorf("%w: api_token is required", ErrAuth)}
	}
	backoff := retry.WithMaxRetries(uint64(cfg.MaxRetries), retry.NewExponential(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.attempts++
		if m.attempts <= m.connectFailures {
			logger.FromContext(ctx).Debug("transient connect failure",
				"system", m.system, "attempt", m.attempts)
			return retry.RetryableError(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		return nil, &ConnectError{System: m.system, Err: err}
	}
	return &mockSession{system: m.system, fixture: m.fixture}, nil
}

// Attempts reports how many connection attempts were made.
func (m *MockAdapter) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

type mockSession struct {
	system  core.SystemName
	fixture []byte

	mu          sync.Mutex
	closed      bool
	created     map[string][]map[string]any // project -> written test cases
	executions  map[string][]map[string]any // project -> written executions
	attachments map[string]string           // attachment id -> location
	seq         int
}

func (s *mockSession) ListTestCases(_ context.Context, project string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	out := s.fixtureRecords(project, "test_cases")
	out = append(out, s.created[project]...)
	return out, nil
}

func (s *mockSession) CreateTestCase(_ context.Context, project string, record map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", fmt.Errorf("session closed")
	}
	s.seq++
	id := fmt.Sprintf("%s-tc-%d", s.system, s.seq)
	stored := core.CloneMap(record)
	stored["id"] = id
	if s.created == nil {
		s.created = make(map[string][]map[string]any)
	}
	s.created[project] = append(s.created[project], stored)
	return id, nil
}

func (s *mockSession) ListExecutions(_ context.Context, project string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	out := s.fixtureRecords(project, "executions")
	out = append(out, s.executions[project]...)
	return out, nil
}

func (s *mockSession) CreateExecution(_ context.Context, project string, record map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", fmt.Errorf("session closed")
	}
	s.seq++
	id := fmt.Sprintf("%s-exec-%d", s.system, s.seq)
	stored := core.CloneMap(record)
	stored["id"] = id
	if s.executions == nil {
		s.executions = make(map[string][]map[string]any)
	}
	s.executions[project] = append(s.executions[project], stored)
	return id, nil
}

func (s *mockSession) UploadAttachment(_ context.Context, entityID string, att *canonical.Attachment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", fmt.Errorf("session closed")
	}
	s.seq++
	location := fmt.Sprintf("mock://%s/%s/%s", s.system, entityID, att.FileName)
	if s.attachments == nil {
		s.attachments = make(map[string]string)
	}
	s.attachments[fmt.Sprintf("att-%d", s.seq)] = location
	return location, nil
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fixtureRecords extracts one record collection from the fixture document.
func (s *mockSession) fixtureRecords(project, collection string) []map[string]any {
	if len(s.fixture) == 0 {
		return nil
	}
	path := fmt.Sprintf("projects.%s.%s", project, collection)
	result := gjson.GetBytes(s.fixture, path)
	if !result.Exists() || !result.IsArray() {
		return nil
	}
	var out []map[string]any
	for _, item := range result.Array() {
		if rec, ok := item.Value().(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}
