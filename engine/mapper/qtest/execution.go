package qtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// ExecutionMapper converts qTest test runs to and from the canonical model.
type ExecutionMapper struct{}

type executionRecord struct {
	ID           string          `mapstructure:"id"`
	TestCaseID   string          `mapstructure:"test_case_id"`
	Status       any             `mapstructure:"status"`
	Environment  string          `mapstructure:"environment"`
	BuildNumber  string          `mapstructure:"build_number"`
	ExecutedBy   string          `mapstructure:"executed_by"`
	ExeStartDate any             `mapstructure:"exe_start_date"`
	ExeEndDate   any             `mapstructure:"exe_end_date"`
	Duration     int64           `mapstructure:"duration"`
	TestCycleID  string          `mapstructure:"test_cycle_id"`
	Defects      []string        `mapstructure:"defects"`
	StepLogs     []stepLogRecord `mapstructure:"test_step_logs"`
}

type stepLogRecord struct {
	Order        int      `mapstructure:"order"`
	Status       any      `mapstructure:"status"`
	ActualResult string   `mapstructure:"actual_result"`
	Note         string   `mapstructure:"note"`
	Defects      []string `mapstructure:"defects"`
}

func (m *ExecutionMapper) ToCanonical(data map[string]any, _ *mapper.Context) (any, error) {
	var rec executionRecord
	if err := decode(data, &rec); err != nil {
		return nil, err
	}
	if rec.TestCaseID == "" {
		return nil, fmt.Errorf("qtest test run %q has no test_case_id", rec.ID)
	}
	te := canonical.NewTestExecution(rec.TestCaseID)
	te.ID = rec.ID
	te.SourceSystem = core.SystemQTest
	te.Status, _ = execStatusFromQTest(rec.Status)
	te.Environment = rec.Environment
	te.BuildVersion = rec.BuildNumber
	te.TestCycleID = rec.TestCycleID
	te.Defects = append([]string(nil), rec.Defects...)
	if rec.ExecutedBy != "" {
		te.ExecutedBy = &canonical.UserRef{ID: rec.ExecutedBy}
	}
	if ts, ok := core.ParseAnyTime(rec.ExeStartDate); ok {
		te.StartTime = ts
	}
	if ts, ok := core.ParseAnyTime(rec.ExeEndDate); ok {
		te.EndTime = ts
	}
	if rec.Duration > 0 {
		te.ExecutionTime = time.Duration(rec.Duration) * time.Millisecond
	}
	logs := append([]stepLogRecord(nil), rec.StepLogs...)
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Order < logs[j].Order
	})
	for i, sl := range logs {
		status, _ := execStatusFromQTest(sl.Status)
		te.StepResults = append(te.StepResults, canonical.StepResult{
			StepID:       stepID(rec.TestCaseID, i+1),
			Order:        i + 1,
			Status:       status,
			ActualResult: sl.ActualResult,
			Notes:        sl.Note,
			Defects:      append([]string(nil), sl.Defects...),
		})
	}
	return te, nil
}

func (m *ExecutionMapper) FromCanonical(entity any, ctx *mapper.Context) (map[string]any, error) {
	te, err := asExecution(entity)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"id":           te.ID,
		"test_case_id": te.TestCaseID,
		"status":       execStatusToQTest(te.Status),
	}
	if te.Environment != "" {
		out["environment"] = ctx.Value("environment", te.Environment)
	}
	if te.BuildVersion != "" {
		out["build_number"] = te.BuildVersion
	}
	if te.ExecutedBy != nil {
		out["executed_by"] = te.ExecutedBy.ID
	}
	if !te.StartTime.IsZero() {
		out["exe_start_date"] = te.StartTime.UTC().UnixMilli()
	}
	if !te.EndTime.IsZero() {
		out["exe_end_date"] = te.EndTime.UTC().UnixMilli()
	}
	if te.ExecutionTime > 0 {
		out["duration"] = te.ExecutionTime.Milliseconds()
	}
	if te.TestCycleID != "" {
		out["test_cycle_id"] = te.TestCycleID
	}
	if len(te.Defects) > 0 {
		out["defects"] = append([]string(nil), te.Defects...)
	}
	logs := make([]any, 0, len(te.StepResults))
	for _, sr := range te.StepResults {
		entry := map[string]any{
			"order":  sr.Order,
			"status": execStatusToQTest(sr.Status),
		}
		if sr.ActualResult != "" {
			entry["actual_result"] = sr.ActualResult
		}
		if sr.Notes != "" {
			entry["note"] = sr.Notes
		}
		if len(sr.Defects) > 0 {
			entry["defects"] = append([]string(nil), sr.Defects...)
		}
		logs = append(logs, entry)
	}
	out["test_step_logs"] = logs
	return out, nil
}

func (m *ExecutionMapper) ValidateMapping(source, target map[string]any) []string {
	var messages []string
	if _, isQTest := source["test_step_logs"]; !isQTest {
		return messages
	}
	if mapper.StringField(source, "test_case_id") == "" {
		messages = append(messages, "qtest test run has no test_case_id")
	}
	if v, ok := source["status"]; ok {
		if _, recognized := execStatusFromQTest(v); !recognized {
			messages = append(messages, fmt.Sprintf("unknown qtest run status %v mapped to NOT_EXECUTED", v))
		}
	}
	return messages
}

func asExecution(entity any) (*canonical.TestExecution, error) {
	switch v := entity.(type) {
	case *canonical.TestExecution:
		return v, nil
	case canonical.TestExecution:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected canonical test execution, got %T", entity)
	}
}
