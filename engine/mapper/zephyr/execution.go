package zephyr

import (
	"fmt"
	"sort"
	"time"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// ExecutionMapper converts Zephyr Scale test executions to and from the
// canonical model.
type ExecutionMapper struct{}

type executionRecord struct {
	ID            string               `mapstructure:"id"`
	TestCaseID    string               `mapstructure:"testCaseId"`
	Status        string               `mapstructure:"status"`
	Environment   string               `mapstructure:"environment"`
	Build         string               `mapstructure:"build"`
	ExecutedBy    string               `mapstructure:"executedBy"`
	StartedOn     string               `mapstructure:"startedOn"`
	FinishedOn    string               `mapstructure:"finishedOn"`
	ExecutionTime int64                `mapstructure:"executionTime"`
	CycleID       string               `mapstructure:"cycleId"`
	Issues        []string             `mapstructure:"issues"`
	ScriptResults []scriptResultRecord `mapstructure:"scriptResults"`
}

type scriptResultRecord struct {
	Index        int      `mapstructure:"index"`
	Status       string   `mapstructure:"status"`
	ActualResult string   `mapstructure:"actualResult"`
	Comment      string   `mapstructure:"comment"`
	Issues       []string `mapstructure:"issues"`
}

func (m *ExecutionMapper) ToCanonical(data map[string]any, _ *mapper.Context) (any, error) {
	var rec executionRecord
	if err := decode(data, &rec); err != nil {
		return nil, err
	}
	if rec.TestCaseID == "" {
		return nil, fmt.Errorf("zephyr execution %q has no testCaseId", rec.ID)
	}
	te := canonical.NewTestExecution(rec.TestCaseID)
	te.ID = rec.ID
	te.SourceSystem = core.SystemZephyr
	te.Status, _ = canonical.ParseExecStatus(rec.Status)
	te.Environment = rec.Environment
	te.BuildVersion = rec.Build
	te.TestCycleID = rec.CycleID
	te.Defects = append([]string(nil), rec.Issues...)
	if rec.ExecutedBy != "" {
		te.ExecutedBy = &canonical.UserRef{ID: rec.ExecutedBy}
	}
	if ts, ok := core.ParseAnyTime(rec.StartedOn); ok {
		te.StartTime = ts
	}
	if ts, ok := core.ParseAnyTime(rec.FinishedOn); ok {
		te.EndTime = ts
	}
	if rec.ExecutionTime > 0 {
		te.ExecutionTime = time.Duration(rec.ExecutionTime) * time.Millisecond
	}
	results := append([]scriptResultRecord(nil), rec.ScriptResults...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	for i, sr := range results {
		status, _ := canonical.ParseExecStatus(sr.Status)
		te.StepResults = append(te.StepResults, canonical.StepResult{
			StepID:       stepID(rec.TestCaseID, i+1),
			Order:        i + 1,
			Status:       status,
			ActualResult: sr.ActualResult,
			Notes:        sr.Comment,
			Defects:      append([]string(nil), sr.Issues...),
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
		"id":         te.ID,
		"testCaseId": te.TestCaseID,
		"status":     execStatusToZephyr(te.Status),
	}
	if te.Environment != "" {
		out["environment"] = ctx.Value("environment", te.Environment)
	}
	if te.BuildVersion != "" {
		out["build"] = te.BuildVersion
	}
	if te.ExecutedBy != nil {
		out["executedBy"] = te.ExecutedBy.ID
	}
	if !te.StartTime.IsZero() {
		out["startedOn"] = te.StartTime.UTC().Format(time.RFC3339)
	}
	if !te.EndTime.IsZero() {
		out["finishedOn"] = te.EndTime.UTC().Format(time.RFC3339)
	}
	if te.ExecutionTime > 0 {
		out["executionTime"] = te.ExecutionTime.Milliseconds()
	}
	if te.TestCycleID != "" {
		out["cycleId"] = te.TestCycleID
	}
	if len(te.Defects) > 0 {
		out["issues"] = append([]string(nil), te.Defects...)
	}
	results := make([]any, 0, len(te.StepResults))
	for _, sr := range te.StepResults {
		result := map[string]any{
			"index":  sr.Order,
			"status": execStatusToZephyr(sr.Status),
		}
		if sr.ActualResult != "" {
			result["actualResult"] = sr.ActualResult
		}
		if sr.Notes != "" {
			result["comment"] = sr.Notes
		}
		if len(sr.Defects) > 0 {
			result["issues"] = append([]string(nil), sr.Defects...)
		}
		results = append(results, result)
	}
	out["scriptResults"] = results
	return out, nil
}

func (m *ExecutionMapper) ValidateMapping(source, target map[string]any) []string {
	var messages []string
	if _, isQTest := source["test_step_logs"]; isQTest {
		return messages
	}
	if mapper.StringField(source, "testCaseId") == "" {
		messages = append(messages, "zephyr execution has no testCaseId")
	}
	if status := mapper.StringField(source, "status"); status != "" {
		if _, ok := canonical.ParseExecStatus(status); !ok {
			messages = append(messages, fmt.Sprintf("unknown zephyr execution status %q mapped to NOT_EXECUTED", status))
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

func execStatusToZephyr(s canonical.ExecStatus) string {
	switch s {
	case canonical.ExecStatusPassed:
		return "Pass"
	case canonical.ExecStatusFailed:
		return "Fail"
	case canonical.ExecStatusBlocked:
		return "Blocked"
	case canonical.ExecStatusInProgress:
		return "In Progress"
	case canonical.ExecStatusSkipped:
		return "Skipped"
	default:
		return "Not Executed"
	}
}
