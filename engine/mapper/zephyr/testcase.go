package zephyr

import (
	"fmt"
	"sort"
	"time"

	"github.com/testbridge/testbridge/engine/canonical"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// TestCaseMapper converts Zephyr Scale test cases to and from the canonical
// model.
type TestCaseMapper struct{}

type testCaseRecord struct {
	ID            string             `mapstructure:"id"`
	Key           string             `mapstructure:"key"`
	Name          string             `mapstructure:"name"`
	Objective     string             `mapstructure:"objective"`
	Description   string             `mapstructure:"description"`
	Precondition  string             `mapstructure:"precondition"`
	Folder        string             `mapstructure:"folder"`
	Status        string             `mapstructure:"status"`
	Priority      string             `mapstructure:"priority"`
	Owner         string             `mapstructure:"owner"`
	Labels        []string           `mapstructure:"labels"`
	CreatedOn     string             `mapstructure:"createdOn"`
	ModifiedOn    string             `mapstructure:"modifiedOn"`
	Version       int                `mapstructure:"version"`
	LatestVersion bool               `mapstructure:"latestVersion"`
	CustomFields  map[string]any     `mapstructure:"customFields"`
	Steps         []stepRecord       `mapstructure:"steps"`
	Attachments   []attachmentRecord `mapstructure:"attachments"`
	Links         []linkRecord       `mapstructure:"links"`
}

type stepRecord struct {
	Index          int    `mapstructure:"index"`
	Description    string `mapstructure:"description"`
	ExpectedResult string `mapstructure:"expectedResult"`
	TestData       string `mapstructure:"testData"`
}

type attachmentRecord struct {
	Filename    string `mapstructure:"filename"`
	ContentType string `mapstructure:"contentType"`
	FileSize    int64  `mapstructure:"fileSize"`
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
		return nil, fmt.Errorf("zephyr test case %q has no name", rec.ID)
	}
	tc := canonical.NewTestCase(rec.Name)
	tc.ID = rec.ID
	tc.ExternalID = rec.Key
	tc.SourceSystem = core.SystemZephyr
	tc.Objective = rec.Objective
	tc.Description = rec.Description
	tc.Preconditions = rec.Precondition
	tc.FolderPath = rec.Folder
	tc.Status, _ = canonical.ParseCaseStatus(rec.Status)
	tc.Priority, _ = canonical.ParsePriority(rec.Priority)
	tc.Tags = append([]string(nil), rec.Labels...)
	tc.Version = rec.Version
	tc.IsLatest = rec.Version == 0 || rec.LatestVersion
	if rec.Owner != "" {
		tc.Owner = &canonical.UserRef{ID: rec.Owner}
	}
	if ts, ok := core.ParseAnyTime(rec.CreatedOn); ok {
		tc.CreatedAt = ts
	}
	if ts, ok := core.ParseAnyTime(rec.ModifiedOn); ok {
		tc.UpdatedAt = ts
	}
	tc.TestSteps = stepsToCanonical(rec.ID, rec.Steps)
	tc.CustomFields = customFieldsToCanonical(rec.CustomFields)
	tc.Attachments = attachmentsToCanonical(rec.Attachments)
	for _, l := range rec.Links {
		tc.Links = append(tc.Links, canonical.Link{URL: l.URL, Description: l.Description, Type: l.Type})
	}
	if rec.Key != "" {
		tc.Metadata = map[string]any{"zephyr_key": rec.Key}
	}
	return tc, nil
}

// stepsToCanonical orders by the Zephyr index when present and renumbers
// positionally, so canonical order is always dense and 1-based.
func stepsToCanonical(caseID string, steps []stepRecord) []canonical.TestStep {
	ordered := append([]stepRecord(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	out := make([]canonical.TestStep, 0, len(ordered))
	for i, s := range ordered {
		out = append(out, canonical.TestStep{
			ID:             stepID(caseID, i+1),
			Order:          i + 1,
			Action:         s.Description,
			ExpectedResult: s.ExpectedResult,
			Data:           s.TestData,
			IsDataDriven:   s.TestData != "",
		})
	}
	return out
}

// stepID derives a deterministic canonical step id; mappers never generate
// random identifiers.
func stepID(caseID string, order int) string {
	if caseID == "" {
		return fmt.Sprintf("step-%d", order)
	}
	return fmt.Sprintf("%s-step-%d", caseID, order)
}

func customFieldsToCanonical(fields map[string]any) []canonical.CustomField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]canonical.CustomField, 0, len(names))
	for _, name := range names {
		out = append(out, canonical.CustomField{
			Name:      name,
			Value:     fields[name],
			FieldType: canonical.FieldTypeOf(fields[name]),
			IsCustom:  true,
		})
	}
	return out
}

func attachmentsToCanonical(atts []attachmentRecord) []canonical.Attachment {
	out := make([]canonical.Attachment, 0, len(atts))
	for _, a := range atts {
		// Metadata only; the binary store fills StorageLocation later.
		out = append(out, canonical.Attachment{
			FileName:    a.Filename,
			FileType:    a.ContentType,
			Size:        a.FileSize,
			Description: a.Description,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m *TestCaseMapper) FromCanonical(entity any, ctx *mapper.Context) (map[string]any, error) {
	tc, err := asTestCase(entity)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"id":       tc.ID,
		"name":     tc.Name,
		"status":   caseStatusToZephyr(tc.Status),
		"priority": priorityToZephyr(tc.Priority),
	}
	if tc.ExternalID != "" {
		out["key"] = tc.ExternalID
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
		out["folder"] = tc.FolderPath
	}
	if tc.Owner != nil {
		out["owner"] = tc.Owner.ID
	}
	if len(tc.Tags) > 0 {
		out["labels"] = append([]string(nil), tc.Tags...)
	}
	if !tc.CreatedAt.IsZero() {
		out["createdOn"] = tc.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !tc.UpdatedAt.IsZero() {
		out["modifiedOn"] = tc.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if tc.Version > 0 {
		out["version"] = tc.Version
		out["latestVersion"] = tc.IsLatest
	}
	steps := make([]any, 0, len(tc.TestSteps))
	for _, s := range tc.TestSteps {
		step := map[string]any{
			"index":          s.Order,
			"description":    s.Action,
			"expectedResult": s.ExpectedResult,
		}
		if s.Data != "" {
			step["testData"] = s.Data
		}
		steps = append(steps, step)
	}
	out["steps"] = steps
	if len(tc.CustomFields) > 0 {
		fields := make(map[string]any, len(tc.CustomFields))
		for _, cf := range tc.CustomFields {
			name := ctx.FieldName(cf.Name)
			fields[name] = ctx.Value(cf.Name, cf.Value)
		}
		out["customFields"] = fields
	}
	if len(tc.Attachments) > 0 {
		atts := make([]any, 0, len(tc.Attachments))
		for _, a := range tc.Attachments {
			atts = append(atts, map[string]any{
				"filename":    a.FileName,
				"contentType": a.FileType,
				"fileSize":    a.Size,
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
	// Skip records that clearly speak the qTest dialect; the qTest mapper
	// validates its own side.
	if _, isQTest := source["test_steps"]; isQTest {
		return messages
	}
	if mapper.StringField(source, "id") == "" {
		messages = append(messages, "zephyr test case has no id")
	}
	if status := mapper.StringField(source, "status"); status != "" {
		if _, ok := canonical.ParseCaseStatus(status); !ok {
			messages = append(messages, fmt.Sprintf("unknown zephyr status %q mapped to DRAFT", status))
		}
	}
	if priority := mapper.StringField(source, "priority"); priority != "" {
		if _, ok := canonical.ParsePriority(priority); !ok {
			messages = append(messages, fmt.Sprintf("unknown zephyr priority %q mapped to MEDIUM", priority))
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

func caseStatusToZephyr(s canonical.CaseStatus) string {
	switch s {
	case canonical.CaseStatusDraft:
		return "Draft"
	case canonical.CaseStatusReady:
		return "Ready"
	case canonical.CaseStatusApproved:
		return "Approved"
	case canonical.CaseStatusDeprecated:
		return "Deprecated"
	case canonical.CaseStatusArchived:
		return "Archived"
	default:
		return "Draft"
	}
}

func priorityToZephyr(p canonical.Priority) string {
	switch p {
	case canonical.PriorityLow:
		return "Low"
	case canonical.PriorityMedium:
		return "Medium"
	case canonical.PriorityHigh:
		return "High"
	case canonical.PriorityCritical:
		return "Critical"
	default:
		return "Medium"
	}
}
