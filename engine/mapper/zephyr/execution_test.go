package zephyr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/mapper/zephyr"
)

func executionFixture() map[string]any {
	return map[string]any{
		"id":          "EX-1",
		"testCaseId":  "TC-100",
		"status":      "Fail",
		"environment": "staging",
		"executedBy":  "jdoe",
		"startedOn":   "2025-03-01T10:00:00Z",
		"finishedOn":  "2025-03-01T10:05:00Z",
		"cycleId":     "CY-7",
		"issues":      []any{"BUG-12"},
		"scriptResults": []any{
			map[string]any{"index": 1, "status": "Pass", "actualResult": "ok"},
			map[string]any{"index": 2, "status": "Fail", "actualResult": "boom", "comment": "timeout"},
		},
	}
}

func TestExecutionMapper(t *testing.T) {
	m := &zephyr.ExecutionMapper{}

	t.Run("Should normalize an execution with step results", func(t *testing.T) {
		out, err := m.ToCanonical(executionFixture(), nil)
		require.NoError(t, err)
		te, ok := out.(*canonical.TestExecution)
		require.True(t, ok)
		assert.Equal(t, "TC-100", te.TestCaseID)
		assert.Equal(t, canonical.ExecStatusFailed, te.Status)
		require.Len(t, te.StepResults, 2)
		assert.Equal(t, canonical.ExecStatusPassed, te.StepResults[0].Status)
		assert.Equal(t, "TC-100-step-2", te.StepResults[1].StepID)
		assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), te.StartTime)
	})
	t.Run("Should round-trip status strings case-insensitively", func(t *testing.T) {
		data := executionFixture()
		data["status"] = "not executed"
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		emitted, err := m.FromCanonical(out, nil)
		require.NoError(t, err)
		assert.Equal(t, "Not Executed", emitted["status"])
	})
	t.Run("Should sort script results by index before renumbering", func(t *testing.T) {
		data := executionFixture()
		data["scriptResults"] = []any{
			map[string]any{"index": 2, "status": "Fail", "actualResult": "boom"},
			map[string]any{"index": 1, "status": "Pass", "actualResult": "ok"},
		}
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		te := out.(*canonical.TestExecution)
		require.Len(t, te.StepResults, 2)
		assert.Equal(t, "ok", te.StepResults[0].ActualResult)
		assert.Equal(t, "boom", te.StepResults[1].ActualResult)
		assert.Equal(t, 1, te.StepResults[0].Order)
		assert.Equal(t, 2, te.StepResults[1].Order)
	})
	t.Run("Should fail without a testCaseId", func(t *testing.T) {
		_, err := m.ToCanonical(map[string]any{"id": "EX-9"}, nil)
		assert.Error(t, err)
	})
	t.Run("Should carry defects both ways", func(t *testing.T) {
		out, err := m.ToCanonical(executionFixture(), nil)
		require.NoError(t, err)
		te := out.(*canonical.TestExecution)
		assert.Equal(t, []string{"BUG-12"}, te.Defects)
		emitted, err := m.FromCanonical(te, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"BUG-12"}, emitted["issues"])
	})
}
