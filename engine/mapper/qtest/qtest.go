// Package qtest maps qTest records to and from the canonical model.
//
// Dialect notes: steps live in `test_steps[]` keyed by `order`, timestamps
// are millisecond epoch numbers, status and priority accept both numeric
// codes (1..6) and string forms, and custom fields arrive as `properties[]`
// of {field_id, field_name, field_value} objects.
package qtest

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// Register installs the qTest mappers into the registry.
func Register(r *mapper.Registry) error {
	if err := r.Register(core.SystemQTest, core.EntityTestCase, &TestCaseMapper{}); err != nil {
		return fmt.Errorf("register qtest test case mapper: %w", err)
	}
	if err := r.Register(core.SystemQTest, core.EntityTestExecution, &ExecutionMapper{}); err != nil {
		return fmt.Errorf("register qtest execution mapper: %w", err)
	}
	return nil
}

func decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode qtest record: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Status / Priority Tables
// -----------------------------------------------------------------------------

// caseStatusFromQTest accepts numeric codes and string forms,
// case-insensitively. Unknown values fall back to DRAFT with ok=false.
func caseStatusFromQTest(v any) (canonical.CaseStatus, bool) {
	if code, ok := core.ParseAnyInt(v); ok {
		switch code {
		case 1:
			return canonical.CaseStatusDraft, true
		case 2:
			return canonical.CaseStatusReady, true
		case 3:
			return canonical.CaseStatusApproved, true
		case 4:
			return canonical.CaseStatusDeprecated, true
		case 5:
			return canonical.CaseStatusArchived, true
		case 6:
			// "Needs Update" in qTest; closest canonical state is DRAFT.
			return canonical.CaseStatusDraft, true
		default:
			return canonical.CaseStatusDraft, false
		}
	}
	return canonical.ParseCaseStatus(core.AsString(v))
}

func caseStatusToQTest(s canonical.CaseStatus) int {
	switch s {
	case canonical.CaseStatusReady:
		return 2
	case canonical.CaseStatusApproved:
		return 3
	case canonical.CaseStatusDeprecated:
		return 4
	case canonical.CaseStatusArchived:
		return 5
	default:
		return 1
	}
}

// priorityFromQTest accepts numeric codes and string forms. The code table
// pins HIGH to 1 and MEDIUM to 3; codes 5 and 6 are the qTest "Trivial" and
// "Undecided" values.
func priorityFromQTest(v any) (canonical.Priority, bool) {
	if code, ok := core.ParseAnyInt(v); ok {
		switch code {
		case 1:
			return canonical.PriorityHigh, true
		case 2:
			return canonical.PriorityCritical, true
		case 3:
			return canonical.PriorityMedium, true
		case 4, 5:
			return canonical.PriorityLow, true
		case 6:
			return canonical.PriorityMedium, true
		default:
			return canonical.PriorityMedium, false
		}
	}
	return canonical.ParsePriority(core.AsString(v))
}

func priorityToQTest(p canonical.Priority) int {
	switch p {
	case canonical.PriorityHigh:
		return 1
	case canonical.PriorityCritical:
		return 2
	case canonical.PriorityLow:
		return 4
	default:
		return 3
	}
}

func execStatusFromQTest(v any) (canonical.ExecStatus, bool) {
	if code, ok := core.ParseAnyInt(v); ok {
		switch code {
		case 1:
			return canonical.ExecStatusPassed, true
		case 2:
			return canonical.ExecStatusFailed, true
		case 3:
			return canonical.ExecStatusBlocked, true
		case 4:
			return canonical.ExecStatusNotExecuted, true
		case 5:
			return canonical.ExecStatusInProgress, true
		case 6:
			return canonical.ExecStatusSkipped, true
		default:
			return canonical.ExecStatusNotExecuted, false
		}
	}
	return canonical.ParseExecStatus(core.AsString(v))
}

func execStatusToQTest(s canonical.ExecStatus) int {
	switch s {
	case canonical.ExecStatusPassed:
		return 1
	case canonical.ExecStatusFailed:
		return 2
	case canonical.ExecStatusBlocked:
		return 3
	case canonical.ExecStatusInProgress:
		return 5
	case canonical.ExecStatusSkipped:
		return 6
	default:
		return 4
	}
}
