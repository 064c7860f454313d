package canonical

import "strings"

// -----------------------------------------------------------------------------
// Test Case Status
// -----------------------------------------------------------------------------

// CaseStatus is the canonical lifecycle status of a test case.
type CaseStatus string

const (
	CaseStatusDraft      CaseStatus = "DRAFT"
	CaseStatusReady      CaseStatus = "READY"
	CaseStatusApproved   CaseStatus = "APPROVED"
	CaseStatusDeprecated CaseStatus = "DEPRECATED"
	CaseStatusArchived   CaseStatus = "ARCHIVED"
)

func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus maps a source-system status string onto the canonical set,
// case-insensitively. Unknown values fall back to DRAFT with ok=false so the
// caller can record the lossy conversion.
func ParseCaseStatus(s string) (CaseStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DRAFT":
		return CaseStatusDraft, true
	case "READY", "READY FOR REVIEW", "READY TO RUN":
		return CaseStatusReady, true
	case "APPROVED":
		return CaseStatusApproved, true
	case "DEPRECATED":
		return CaseStatusDeprecated, true
	case "ARCHIVED", "OBSOLETE":
		return CaseStatusArchived, true
	default:
		return CaseStatusDraft, false
	}
}

// -----------------------------------------------------------------------------
// Priority
// -----------------------------------------------------------------------------

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (p Priority) String() string {
	return string(p)
}

// ParsePriority maps a priority string onto the canonical set. Unknown values
// fall back to MEDIUM with ok=false.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "MINOR", "TRIVIAL":
		return PriorityLow, true
	case "MEDIUM", "NORMAL":
		return PriorityMedium, true
	case "HIGH", "MAJOR":
		return PriorityHigh, true
	case "CRITICAL", "BLOCKER", "URGENT":
		return PriorityCritical, true
	default:
		return PriorityMedium, false
	}
}

// -----------------------------------------------------------------------------
// Execution Status
// -----------------------------------------------------------------------------

type ExecStatus string

const (
	ExecStatusPassed      ExecStatus = "PASSED"
	ExecStatusFailed      ExecStatus = "FAILED"
	ExecStatusBlocked     ExecStatus = "BLOCKED"
	ExecStatusNotExecuted ExecStatus = "NOT_EXECUTED"
	ExecStatusInProgress  ExecStatus = "IN_PROGRESS"
	ExecStatusSkipped     ExecStatus = "SKIPPED"
)

func (s ExecStatus) String() string {
	return string(s)
}

// ParseExecStatus maps an execution status string onto the canonical set.
// Unknown values fall back to NOT_EXECUTED with ok=false.
func ParseExecStatus(s string) (ExecStatus, bool) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "PASSED", "PASS":
		return ExecStatusPassed, true
	case "FAILED", "FAIL":
		return ExecStatusFailed, true
	case "BLOCKED":
		return ExecStatusBlocked, true
	case "NOT_EXECUTED", "UNEXECUTED", "NOT_RUN":
		return ExecStatusNotExecuted, true
	case "IN_PROGRESS", "EXECUTING":
		return ExecStatusInProgress, true
	case "SKIPPED", "SKIP":
		return ExecStatusSkipped, true
	default:
		return ExecStatusNotExecuted, false
	}
}

// -----------------------------------------------------------------------------
// Custom Field Types
// -----------------------------------------------------------------------------

type FieldType string

const (
	FieldTypeString      FieldType = "STRING"
	FieldTypeInteger     FieldType = "INTEGER"
	FieldTypeFloat       FieldType = "FLOAT"
	FieldTypeBoolean     FieldType = "BOOLEAN"
	FieldTypeMultiselect FieldType = "MULTISELECT"
	FieldTypeObject      FieldType = "OBJECT"
)

func (f FieldType) String() string {
	return string(f)
}

// FieldTypeOf infers the canonical field type from a decoded JSON value.
func FieldTypeOf(v any) FieldType {
	switch v.(type) {
	case string:
		return FieldTypeString
	case int, int64:
		return FieldTypeInteger
	case float64, float32:
		return FieldTypeFloat
	case bool:
		return FieldTypeBoolean
	case []any, []string:
		return FieldTypeMultiselect
	default:
		return FieldTypeObject
	}
}
