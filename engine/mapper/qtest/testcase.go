package qtest

import (
	"fmt"
	"sort"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// TestCaseMapper converts qTest test cases to and from the canonical model.
type TestCaseMapper struct{}

type testCaseRecord struct {
	ID               string             `mapstructure:"id"`
	PID              string             `mapstructure:"pid"`
	Name             string             `mapstructure:"name"`
	Objective        string             `mapstructure:"objective"`
	Description      string             `mapstructure:"description"`
	Precondition     string             `mapstructure:"precondition"`
	Module           string             `mapstructure:"module"`
	Status           any                `mapstructure:"test_case_status"`
	Priority         any                `mapstructure:"priority"`
	Creator          string             `mapstructure:"creator"`
	CreatedDate      any                `mapstructure:"created_date"`
	LastModifiedDate any                `mapstructure:"last_modified_date"`
	Version          int                `mapstructure:"version"`
	LatestVersion    bool               `mapstructure:"latest_version"`
	Tags             []string           `mapstructure:"tags"`
	Properties       []propertyRecord   `mapstructure:"properties"`
	TestSteps        []stepRecord       `mapstructure:"test_steps"`
	Attachments      []attachmentRecord `mapstructure:"attachments"`
	Links            []linkRecord       `mapstructure:"links"`
}

type propertyRecord struct {
	FieldID    string `mapstructure:"field_id"`
	FieldName  string `mapstructure:"field_name"`
	FieldValue any    `mapstructure:"field_value"`
}

type stepRecord struct {
	Order       int    `mapstructure:"order"`
	Description string `mapstructure:"description"`
	Expected    string `mapstructure:"expected"`
	TestData    string `mapstructure:"test_data"`
}

type attachmentRecord struct {
	Name        string `mapstructure:"name"`
	ContentType string `mapstructure:"content_type"`
	Size        int64  `mapstructure:"size"`
	Description string `mapstructure:"description"`
}

type linkRecord struct {
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Type        string `mapstructure:"type"`
}

func (m *TestCaseMapper) ToCanonical(data map[string]any, _ *mapper.Context) (any, error) {
	var rec testCaseRecord
	if err := decode(data, &rec); err != nil {
		return nil, err
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("qtest test case %q has no name", rec.ID)
	}
	tc := canonical.NewTestCase(rec.Name)
	tc.ID = rec.ID
	tc.ExternalID = rec.PID
	tc.SourceSystem = core.SystemQTest
	tc.Objective = rec.Objective
	tc.Description = rec.Description
	tc.Preconditions = rec.Precondition
	tc.FolderPath = rec.Module
	tc.Status, _ = caseStatusFromQTest(rec.Status)
	tc.Priority, _ = priorityFromQTest(rec.Priority)
	tc.Tags = append([]string(nil), rec.Tags...)
	tc.Version = rec.Version
	tc.IsLatest = rec.Version == 0 || rec.LatestVersion
	if rec.Creator != "" {
		tc.CreatedBy = &canonical.UserRef{ID: rec.Creator}
	}
	if ts, ok := core.ParseAnyTime(rec.CreatedDate); ok {
		tc.CreatedAt = ts
	}
	if ts, ok := core.ParseAnyTime(rec.LastModifiedDate); ok {
		tc.UpdatedAt = ts
	}
	tc.TestSteps = stepsToCanonical(rec.ID, rec.TestSteps)
	tc.CustomFields = propertiesToCanonical(rec.Properties)
	for _, a := range rec.Attachments {
		tc.Attachments = append(tc.Attachments, canonical.Attachment{
			FileName:    a.Name,
			FileType:    a.ContentType,
			Size:        a.Size,
			Description: a.Description,
		})
	}
	for _, l := range rec.Links {
		tc.Links = append(tc.Links, canonical.Link{URL: l.URL, Description: l.Description, Type: l.Type})
	}
	if rec.PID != "" {
		tc.Metadata = map[string]any{"qtest_pid": rec.PID}
	}
	return tc, nil
}

// stepsToCanonical sorts by the explicit qTest order when present and
// renumbers positionally, so canonical order is always dense 1-based. Steps
// without an order sort stably by position.
func stepsToCanonical(caseID string, steps []stepRecord) []canonical.TestStep {
	ordered := append([]stepRecord(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	out := make([]canonical.TestStep, 0, len(ordered))
	for i, s := range ordered {
		out = append(out, canonical.TestStep{
			ID:             stepID(caseID, i+1),
			Order:          i + 1,
			Action:         s.Description,
			ExpectedResult: s.Expected,
			Data:           s.TestData,
			IsDataDriven:   s.TestData != "",
		})
	}
	return out
}

func stepID(caseID string, order int) string {
	if caseID == "" {
		return fmt.Sprintf("step-%d", order)
	}
	return fmt.Sprintf("%s-step-%d", caseID, order)
}

// propertiesToCanonical normalizes the qTest property list, preserving the
// qTest field_id on each canonical custom field.
func propertiesToCanonical(props []propertyRecord) []canonical.CustomField {
	if len(props) == 0 {
		return nil
	}
	out := make([]canonical.CustomField, 0, len(props))
	for _, p := range props {
		out = append(out, canonical.CustomField{
			Name:      p.FieldName,
			Value:     p.FieldValue,
			FieldType: canonical.FieldTypeOf(p.FieldValue),
			FieldID:   p.FieldID,
			IsCustom:  true,
		})
	}
	return out
}

func (m *TestCaseMapper) FromCanonical(entity any, ctx *mapper.Context) (map[string]any, error) {
	tc, err := asTestCase(entity)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"id":               tc.ID,
		"name":             tc.Name,
		"test_case_status": caseStatusToQTest(tc.Status),
		"priority":         priorityToQTest(tc.Priority),
	}
	if tc.ExternalID != "" {
		out["pid"] = tc.ExternalID
	}
	if tc.Objective != "" {
		out["objective"] = tc.Objective
	}
	if tc.Description != "" {
		out["description"] = tc.Description
	}
	if tc.Preconditions != "" {
		out["precondition"] = tc.Preconditions
	}
	if tc.FolderPath != "" {
		out["module"] = tc.FolderPath
	}
	if tc.CreatedBy != nil {
		out["creator"] = tc.CreatedBy.ID
	}
	if len(tc.Tags) > 0 {
		out["tags"] = append([]string(nil), tc.Tags...)
	}
	if !tc.CreatedAt.IsZero() {
		out["created_date"] = tc.CreatedAt.UTC().UnixMilli()
	}
	if !tc.UpdatedAt.IsZero() {
		out["last_modified_date"] = tc.UpdatedAt.UTC().UnixMilli()
	}
	if tc.Version > 0 {
		out["version"] = tc.Version
		out["latest_version"] = tc.IsLatest
	}
	steps := make([]any, 0, len(tc.TestSteps))
	for _, s := range tc.TestSteps {
		step := map[string]any{
			"order":       s.Order,
			"description": s.Action,
			"expected":    s.ExpectedResult,
		}
		if s.Data != "" {
			step["test_data"] = s.Data
		}
		steps = append(steps, step)
	}
	out["test_steps"] = steps
	if len(tc.CustomFields) > 0 {
		props := make([]any, 0, len(tc.CustomFields))
		for _, cf := range tc.CustomFields {
			prop := map[string]any{
				"field_name":  ctx.FieldName(cf.Name),
				"field_value": ctx.Value(cf.Name, cf.Value),
			}
			if cf.FieldID != "" {
				prop["field_id"] = cf.FieldID
			}
			props = append(props, prop)
		}
		out["properties"] = props
	}
	if len(tc.Attachments) > 0 {
		atts := make([]any, 0, len(tc.Attachments))
		for _, a := range tc.Attachments {
			atts = append(atts, map[string]any{
				"name":         a.FileName,
				"content_type": a.FileType,
				"size":         a.Size,
			})
		}
		out["attachments"] = atts
	}
	if len(tc.Links) > 0 {
		links := make([]any, 0, len(tc.Links))
		for _, l := range tc.Links {
			links = append(links, map[string]any{"url": l.URL, "description": l.Description, "type": l.Type})
		}
		out["links"] = links
	}
	return out, nil
}

func (m *TestCaseMapper) ValidateMapping(source, target map[string]any) []string {
	var messages []string
	if mapper.StringField(source, "id") == "" {
		messages = append(messages, "qtest test case has no id")
	}
	// Status and priority checks apply only when the source side speaks the
	// qTest dialect; the source mapper covers its own dialect otherwise.
	if _, isQTest := source["test_steps"]; !isQTest {
		return messages
	}
	if v, ok := source["test_case_status"]; ok {
		if _, recognized := caseStatusFromQTest(v); !recognized {
			messages = append(messages, fmt.Sprintf("unknown qtest status %v mapped to DRAFT", v))
		}
	}
	if v, ok := source["priority"]; ok {
		if _, recognized := priorityFromQTest(v); !recognized {
			messages = append(messages, fmt.Sprintf("unknown qtest priority %v mapped to MEDIUM", v))
		}
	}
	if src, dst := mapper.StepCount(source), mapper.StepCount(target); src != dst {
		messages = append(messages, fmt.Sprintf("step count mismatch: source has %d, target has %d", src, dst))
	}
	return messages
}

func asTestCase(entity any) (*canonical.TestCase, error) {
	switch v := entity.(type) {
	case *canonical.TestCase:
		return v, nil
	case canonical.TestCase:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected canonical test case, got %T", entity)
	}
}
