package qtest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/mapper"
	"github.com/testbridge/testbridge/engine/mapper/qtest"
)

func qtestFixture() map[string]any {
	return map[string]any{
		"id":                 "1001",
		"pid":                "TC-1001",
		"name":               "Checkout with áéíóú",
		"description":        "Covers checkout",
		"precondition":       "Cart has items",
		"module":             "/Demo/Checkout",
		"test_case_status":   3,
		"priority":           1,
		"created_date":       int64(1735718400000), // 2025-01-01T08:00:00Z
		"last_modified_date": int64(1735804800000),
		"properties": []any{
			map[string]any{"field_id": "501", "field_name": "Risk", "field_value": "High"},
			map[string]any{"field_id": "502", "field_name": "Component", "field_value": "Payments"},
		},
		"test_steps": []any{
			map[string]any{"order": 1, "description": "Open cart", "expected": "Cart visible"},
			map[string]any{"order": 2, "description": "Pay", "expected": "Receipt shown"},
		},
	}
}

func TestTestCaseMapper_ToCanonical(t *testing.T) {
	m := &qtest.TestCaseMapper{}

	t.Run("Should normalize numeric status and priority codes", func(t *testing.T) {
		out, err := m.ToCanonical(qtestFixture(), nil)
		require.NoError(t, err)
		tc, ok := out.(*canonical.TestCase)
		require.True(t, ok)
		assert.Equal(t, canonical.CaseStatusApproved, tc.Status)
		assert.Equal(t, canonical.PriorityHigh, tc.Priority)
	})
	t.Run("Should convert millisecond timestamps to instants", func(t *testing.T) {
		out, err := m.ToCanonical(qtestFixture(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), tc.CreatedAt)
	})
	t.Run("Should preserve qTest field ids on custom fields", func(t *testing.T) {
		out, err := m.ToCanonical(qtestFixture(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.CustomFields, 2)
		assert.Equal(t, "Risk", tc.CustomFields[0].Name)
		assert.Equal(t, "501", tc.CustomFields[0].FieldID)
	})
	t.Run("Should keep step count with dense order", func(t *testing.T) {
		out, err := m.ToCanonical(qtestFixture(), nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.TestSteps, 2)
		assert.Equal(t, 1, tc.TestSteps[0].Order)
		assert.Equal(t, 2, tc.TestSteps[1].Order)
		require.NoError(t, tc.Validate())
	})
	t.Run("Should sort steps by explicit order before renumbering", func(t *testing.T) {
		data := qtestFixture()
		data["test_steps"] = []any{
			map[string]any{"order": 2, "description": "Pay", "expected": "Receipt shown"},
			map[string]any{"order": 1, "description": "Open cart", "expected": "Cart visible"},
		}
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		require.Len(t, tc.TestSteps, 2)
		assert.Equal(t, "Open cart", tc.TestSteps[0].Action)
		assert.Equal(t, "Pay", tc.TestSteps[1].Action)
		assert.Equal(t, 1, tc.TestSteps[0].Order)
		assert.Equal(t, 2, tc.TestSteps[1].Order)
		require.NoError(t, tc.Validate())
	})
	t.Run("Should accept string forms for status and priority", func(t *testing.T) {
		data := qtestFixture()
		data["test_case_status"] = "approved"
		data["priority"] = "high"
		out, err := m.ToCanonical(data, nil)
		require.NoError(t, err)
		tc := out.(*canonical.TestCase)
		assert.Equal(t, canonical.CaseStatusApproved, tc.Status)
		assert.Equal(t, canonical.PriorityHigh, tc.Priority)
	})
}

func TestTestCaseMapper_FromCanonical(t *testing.T) {
	m := &qtest.TestCaseMapper{}

	t.Run("Should emit the priority law HIGH to 1 and MEDIUM to 3", func(t *testing.T) {
		tc := canonical.NewTestCase("p")
		tc.ID = "1"
		tc.Priority = canonical.PriorityHigh
		out, err := m.FromCanonical(tc, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, out["priority"])

		tc.Priority = canonical.PriorityMedium
		out, err = m.FromCanonical(tc, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, out["priority"])
	})
	t.Run("Should emit millisecond epoch dates", func(t *testing.T) {
		tc := canonical.NewTestCase("d")
		tc.ID = "1"
		tc.CreatedAt = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
		out, err := m.FromCanonical(tc, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.CreatedAt.UnixMilli(), out["created_date"])
	})
	t.Run("Should apply field mapping overrides to properties", func(t *testing.T) {
		tc := canonical.NewTestCase("f")
		tc.ID = "1"
		tc.CustomFields = []canonical.CustomField{
			{Name: "Risk", Value: "High", FieldType: canonical.FieldTypeString, IsCustom: true},
			{Name: "Component", Value: "Auth", FieldType: canonical.FieldTypeString, IsCustom: true},
		}
		ctx := mapper.NewContext("zephyr", "qtest")
		ctx.FieldMappings["Risk"] = "RiskLevel"
		ctx.FieldMappings["Component"] = "TestComponent"
		out, err := m.FromCanonical(tc, ctx)
		require.NoError(t, err)
		props := out["properties"].([]any)
		names := map[string]any{}
		for _, raw := range props {
			p := raw.(map[string]any)
			names[p["field_name"].(string)] = p["field_value"]
		}
		assert.Equal(t, "High", names["RiskLevel"])
		assert.Equal(t, "Auth", names["TestComponent"])
		assert.NotContains(t, names, "Risk")
		assert.NotContains(t, names, "Component")
	})
}

func TestTestCaseMapper_RoundTrip(t *testing.T) {
	m := &qtest.TestCaseMapper{}

	t.Run("Should preserve critical fields through to-canonical-and-back", func(t *testing.T) {
		src := qtestFixture()
		out, err := m.ToCanonical(src, nil)
		require.NoError(t, err)
		emitted, err := m.FromCanonical(out, nil)
		require.NoError(t, err)

		assert.Equal(t, src["id"], emitted["id"])
		assert.Equal(t, src["name"], emitted["name"])
		assert.Equal(t, src["module"], emitted["module"])
		assert.Equal(t, src["test_case_status"], emitted["test_case_status"])
		assert.Equal(t, src["priority"], emitted["priority"])
		assert.Equal(t, src["created_date"], emitted["created_date"])
	})
	t.Run("Should report no messages for a lossless mapping", func(t *testing.T) {
		src := qtestFixture()
		out, _ := m.ToCanonical(src, nil)
		emitted, _ := m.FromCanonical(out, nil)
		assert.Empty(t, m.ValidateMapping(src, emitted))
	})
	t.Run("Should report unknown numeric codes as lossy", func(t *testing.T) {
		src := qtestFixture()
		src["priority"] = 42
		out, _ := m.ToCanonical(src, nil)
		emitted, _ := m.FromCanonical(out, nil)
		messages := m.ValidateMapping(src, emitted)
		require.NotEmpty(t, messages)
		assert.Contains(t, messages[0], "42")
	})
}
