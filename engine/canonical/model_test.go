package canonical_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/canonical"
)

func TestTestCase_Validate(t *testing.T) {
	t.Run("Should accept dense 1-based step order", func(t *testing.T) {
		tc := canonical.NewTestCase("login")
		tc.TestSteps = []canonical.TestStep{
			{ID: "s1", Order: 1, Action: "open page"},
			{ID: "s2", Order: 2, Action: "enter credentials"},
			{ID: "s3", Order: 3, Action: "submit"},
		}
		assert.NoError(t, tc.Validate())
	})
	t.Run("Should reject gaps in step order", func(t *testing.T) {
		tc := canonical.NewTestCase("login")
		tc.TestSteps = []canonical.TestStep{
			{ID: "s1", Order: 1},
			{ID: "s2", Order: 3},
		}
		assert.Error(t, tc.Validate())
	})
	t.Run("Should reject duplicate step order", func(t *testing.T) {
		tc := canonical.NewTestCase("login")
		tc.TestSteps = []canonical.TestStep{
			{ID: "s1", Order: 1},
			{ID: "s2", Order: 1},
		}
		assert.Error(t, tc.Validate())
	})
	t.Run("Should reject updated_at before created_at", func(t *testing.T) {
		tc := canonical.NewTestCase("login")
		tc.CreatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		tc.UpdatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Error(t, tc.Validate())
	})
	t.Run("Should require a name", func(t *testing.T) {
		tc := &canonical.TestCase{}
		assert.Error(t, tc.Validate())
	})
	t.Run("Should accept empty steps", func(t *testing.T) {
		tc := canonical.NewTestCase("empty")
		assert.NoError(t, tc.Validate())
	})
}

func TestTestCase_NormalizeStepOrder(t *testing.T) {
	t.Run("Should renumber steps by position", func(t *testing.T) {
		tc := canonical.NewTestCase("login")
		tc.TestSteps = []canonical.TestStep{
			{ID: "s1"}, {ID: "s2"}, {ID: "s3"},
		}
		tc.NormalizeStepOrder()
		require.NoError(t, tc.Validate())
		assert.Equal(t, 1, tc.TestSteps[0].Order)
		assert.Equal(t, 3, tc.TestSteps[2].Order)
	})
}

func TestTestExecution_Validate(t *testing.T) {
	tc := canonical.NewTestCase("login")
	tc.TestSteps = []canonical.TestStep{
		{ID: "s1", Order: 1},
		{ID: "s2", Order: 2},
	}

	t.Run("Should accept results referencing known steps", func(t *testing.T) {
		te := canonical.NewTestExecution("tc-1")
		te.StepResults = []canonical.StepResult{
			{StepID: "s1", Order: 1, Status: canonical.ExecStatusPassed},
			{StepID: "s2", Order: 2, Status: canonical.ExecStatusFailed},
		}
		assert.NoError(t, te.Validate(tc))
	})
	t.Run("Should reject a result referencing an unknown step", func(t *testing.T) {
		te := canonical.NewTestExecution("tc-1")
		te.StepResults = []canonical.StepResult{
			{StepID: "ghost", Order: 1, Status: canonical.ExecStatusPassed},
		}
		assert.Error(t, te.Validate(tc))
	})
	t.Run("Should reject an inverted execution window", func(t *testing.T) {
		te := canonical.NewTestExecution("tc-1")
		te.StartTime = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		te.EndTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Error(t, te.Validate(tc))
	})
}

func TestParseCaseStatus(t *testing.T) {
	t.Run("Should be case-insensitive on the recognized subset", func(t *testing.T) {
		for in, want := range map[string]canonical.CaseStatus{
			"approved":         canonical.CaseStatusApproved,
			"Ready For Review": canonical.CaseStatusReady,
			"DRAFT":            canonical.CaseStatusDraft,
			"archived":         canonical.CaseStatusArchived,
		} {
			got, ok := canonical.ParseCaseStatus(in)
			assert.True(t, ok, in)
			assert.Equal(t, want, got)
		}
	})
	t.Run("Should fall back to DRAFT for unknown input", func(t *testing.T) {
		got, ok := canonical.ParseCaseStatus("wombat")
		assert.False(t, ok)
		assert.Equal(t, canonical.CaseStatusDraft, got)
	})
}

func TestParsePriority(t *testing.T) {
	t.Run("Should fall back to MEDIUM for unknown input", func(t *testing.T) {
		got, ok := canonical.ParsePriority("sideways")
		assert.False(t, ok)
		assert.Equal(t, canonical.PriorityMedium, got)
	})
	t.Run("Should be idempotent on canonical values", func(t *testing.T) {
		for _, p := range []canonical.Priority{
			canonical.PriorityLow, canonical.PriorityMedium,
			canonical.PriorityHigh, canonical.PriorityCritical,
		} {
			got, ok := canonical.ParsePriority(p.String())
			assert.True(t, ok)
			assert.Equal(t, p, got)
		}
	})
}

func TestFieldTypeOf(t *testing.T) {
	t.Run("Should infer types from decoded JSON values", func(t *testing.T) {
		assert.Equal(t, canonical.FieldTypeString, canonical.FieldTypeOf("x"))
		assert.Equal(t, canonical.FieldTypeInteger, canonical.FieldTypeOf(3))
		assert.Equal(t, canonical.FieldTypeFloat, canonical.FieldTypeOf(3.5))
		assert.Equal(t, canonical.FieldTypeBoolean, canonical.FieldTypeOf(true))
		assert.Equal(t, canonical.FieldTypeMultiselect, canonical.FieldTypeOf([]any{"a"}))
		assert.Equal(t, canonical.FieldTypeObject, canonical.FieldTypeOf(map[string]any{}))
	})
}
