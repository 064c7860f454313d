package zephyr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/mapper"
	"github.com/testbridge/testbridge/engine/mapper/zephyr"
)

func complexTestCase() map[string]any {
	return map[string]any{
		"id":           "TC-100",
		"key":          "DEMO-T100",
		"name":         "Login with áéíóú and !@#$%^ characters",
		"objective":    "Verify authentication",
		"description":  "Covers the login flow end to end áéíóú",
		"precondition": "User account exists",
		"folder":       "/Demo/Auth",
		"status":       "Approved",
		"priority":     "High",
		"owner":        "jdoe",
		"labels":       []any{"smoke", "auth"},
		"createdOn":    "2025-01-01T08:00:00Z",
		"modifiedOn":   "2025-01-02T09:30:00Z",
		"customFields": map[string]any{
			"Risk":      "High",
			"Component": "Auth",
		},
		"steps": []any{
			map[string]any{"index": 1, "description": "Open login page", "expectedResult": "Page renders"},
			map[string]any{"index": 2, "description": "Enter credentials áéíóú", "expectedResult": "Fields accept input"},
			map[string]any{"index": 3, "description": "Submit form", "expectedResult": "Spinner !@#$%^ shows"},
			map[string]any{"index": 4, "description": "Wait for redirect", "expectedResult": "Dashboard loads"},
		},
		"attachments": []any{
			map[string]any{"filename": "screen.png", "contentType": "image/png", "fileSize": 2048},
		},
	}
}

func TestTestCaseMapper_ToCanonical(t *testing.T) {
	m := &zephyr.TestCaseMapper{}

	t.Run("Should normalize the complex fixture", func(t *testing.T) {
		out, err := m.ToCanonical(complexTestCase(), nil)
		require.NoError(t, err)
		tc, ok := out.(*canonical.TestCase)
		require.True(t, ok)

		assert.Equal(t, "TC-100", tc.ID)
		assert.Equal(t, "Login with áéíóú and !@#$%^ characters", tc.Name)
		assert.Equal(t, canonical.CaseStatusApproved, tc.Status)
		assert.Equal(t, canonical.PriorityHigh, tc.Priority)
		assert.Equal(t, "/Demo/Auth", tc.FolderPath)
		assert.Equal(t, []string{"smoke", "auth"}, tc.Tags)
		assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), tc.CreatedAt)
		require.NoError(t, tc.Validate())
	})
	t.Run("Should keep step count and dense 1-based order", func(t *testing.T) {
		out, err := m.ToCanonical(complexTestCase(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.TestSteps, 4)
		for i, s := range tc.TestSteps {
			assert.Equal(t, i+1, s.Order)
		}
		assert.Equal(t, "Enter credentials áéíóú", tc.TestSteps[1].Action)
	})
	t.Run("Should number steps positionally when index is absent", func(t *testing.T) {
		data := complexTestCase()
		data["steps"] = []any{
			map[string]any{"description": "a", "expectedResult": "x"},
			map[string]any{"description": "b", "expectedResult": "y"},
		}
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		assert.Equal(t, 1, tc.TestSteps[0].Order)
		assert.Equal(t, 2, tc.TestSteps[1].Order)
	})
	t.Run("Should round-trip empty steps without synthesizing any", func(t *testing.T) {
		data := complexTestCase()
		data["steps"] = []any{}
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		assert.Empty(t, tc.TestSteps)
		emitted, err := m.FromCanonical(tc, nil)
		require.NoError(t, err)
		assert.Empty(t, emitted["steps"])
	})
	t.Run("Should normalize custom fields in name order", func(t *testing.T) {
		out, err := m.ToCanonical(complexTestCase(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.CustomFields, 2)
		assert.Equal(t, "Component", tc.CustomFields[0].Name)
		assert.Equal(t, "Risk", tc.CustomFields[1].Name)
	})
	t.Run("Should leave attachment storage location empty", func(t *testing.T) {
		out, err := m.ToCanonical(complexTestCase(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.Attachments, 1)
		assert.Empty(t, tc.Attachments[0].StorageLocation)
		assert.Equal(t, int64(2048), tc.Attachments[0].Size)
	})
	t.Run("Should fail on a record without a name", func(t *testing.T) {
		_, err := m.ToCanonical(map[string]any{"id": "TC-1"}, nil)
		assert.Error(t, err)
	})
}

func TestTestCaseMapper_RoundTrip(t *testing.T) {
	m := &zephyr.TestCaseMapper{}

	t.Run("Should preserve critical fields through to-canonical-and-back", func(t *testing.T) {
		src := complexTestCase()
		out, err := m.ToCanonical(src, nil)
		require.NoError(t, err)
		emitted, err := m.FromCanonical(out, nil)
		require.NoError(t, err)

		assert.Equal(t, src["id"], emitted["id"])
		assert.Equal(t, src["name"], emitted["name"])
		assert.Equal(t, src["description"], emitted["description"])
		assert.Equal(t, src["precondition"], emitted["precondition"])
		assert.Equal(t, src["folder"], emitted["folder"])
		assert.Equal(t, src["status"], emitted["status"])
		assert.Equal(t, src["priority"], emitted["priority"])

		steps := emitted["steps"].([]any)
		require.Len(t, steps, 4)
		for i, raw := range steps {
			step := raw.(map[string]any)
			want := src["steps"].([]any)[i].(map[string]any)
			assert.Equal(t, want["description"], step["description"])
			assert.Equal(t, want["expectedResult"], step["expectedResult"])
		}
	})
	t.Run("Should keep status round-trip idempotent on the recognized subset", func(t *testing.T) {
		for _, status := range []string{"Draft", "Ready", "Approved", "Deprecated", "Archived"} {
			data := complexTestCase()
			data["status"] = status
			out, err := m.ToCanonical(data, nil)
			require.NoError(t, err)
			emitted, err := m.FromCanonical(out, nil)
			require.NoError(t, err)
			assert.Equal(t, status, emitted["status"])
		}
	})
	t.Run("Should rename custom fields via context overrides", func(t *testing.T) {
		ctx := mapper.NewContext("zephyr", "zephyr")
		ctx.FieldMappings["Risk"] = "RiskLevel"
		out, err := m.ToCanonical(complexTestCase(), ctx)
		require.NoError(t, err)
		emitted, err := m.FromCanonical(out, ctx)
		require.NoError(t, err)
		fields := emitted["customFields"].(map[string]any)
		assert.Equal(t, "High", fields["RiskLevel"])
		assert.NotContains(t, fields, "Risk")
	})
}

func TestTestCaseMapper_ValidateMapping(t *testing.T) {
	m := &zephyr.TestCaseMapper{}

	t.Run("Should report unknown status as a lossy conversion", func(t *testing.T) {
		src := complexTestCase()
		src["status"] = "Mysterious"
		out, _ := m.ToCanonical(src, nil)
		emitted, _ := m.FromCanonical(out, nil)
		messages := m.ValidateMapping(src, emitted)
		require.NotEmpty(t, messages)
		assert.Contains(t, messages[0], "Mysterious")
	})
	t.Run("Should report step count mismatches", func(t *testing.T) {
		src := complexTestCase()
		messages := m.ValidateMapping(src, map[string]any{"test_steps": []any{}})
		require.NotEmpty(t, messages)
		assert.Contains(t, messages[0], "step count mismatch")
	})
	t.Run("Should return no messages for a lossless mapping", func(t *testing.T) {
		src := complexTestCase()
		out, _ := m.ToCanonical(src, nil)
		emitted, _ := m.FromCanonical(out, nil)
		assert.Empty(t, m.ValidateMapping(src, emitted))
	})
}
