// Package canonical defines the system-agnostic record types used as the
// intermediate form during translation between test-management systems.
//
// Canonical entities are pure data: constructors and invariant checks only.
// They are values owned by the transformer invocation that produced them and
// are never shared mutably across workflow steps.
package canonical

import (
	"time"

	"github.com/testbridge/testbridge/engine/core"
)

// UserRef identifies a user in either system. Only ID is required; the rest
// is carried when the source dialect provides it.
type UserRef struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Link is a reference from a test asset to an external resource (issue,
// requirement, web page).
type Link struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// CustomField is the normalized form of per-system custom fields. Zephyr
// sends a flat map, qTest a list of property objects; both normalize here.
type CustomField struct {
	Name      string    `json:"name"`
	Value     any       `json:"value"`
	FieldType FieldType `json:"field_type"`
	FieldID   string    `json:"field_id,omitempty"`
	Options   []string  `json:"options,omitempty"`
	Required  bool      `json:"required,omitempty"`
	IsCustom  bool      `json:"is_custom"`
}

// Attachment carries file metadata. StorageLocation is an opaque URI stamped
// by the binary store during the workflow; mappers leave it empty. Content is
// held in memory only when the binary store is bypassed.
type Attachment struct {
	ID              string         `json:"id,omitempty"`
	FileName        string         `json:"file_name"`
	FileType        string         `json:"file_type,omitempty"`
	Size            int64          `json:"size,omitempty"`
	StorageLocation string         `json:"storage_location,omitempty"`
	Content         []byte         `json:"-"`
	UploadedBy      *UserRef       `json:"uploaded_by,omitempty"`
	UploadedAt      time.Time      `json:"uploaded_at,omitempty"`
	Description     string         `json:"description,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// TestStep is one ordered action inside a test case. Order is 1-based and
// dense across the owning case.
type TestStep struct {
	ID             string         `json:"id"`
	Order          int            `json:"order"`
	Action         string         `json:"action"`
	ExpectedResult string         `json:"expected_result"`
	Data           string         `json:"data,omitempty"`
	IsDataDriven   bool           `json:"is_data_driven,omitempty"`
	Attachments    []Attachment   `json:"attachments,omitempty"`
	CustomFields   []CustomField  `json:"custom_fields,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Automation captures whether and how a test case is automated.
type Automation struct {
	Automated  bool   `json:"automated"`
	ScriptPath string `json:"script_path,omitempty"`
}

// TestCase is the canonical test case record.
type TestCase struct {
	ID            string            `json:"id"`
	SourceSystem  core.SystemName   `json:"source_system,omitempty"`
	ExternalID    string            `json:"external_id,omitempty"`
	Name          string            `json:"name"`
	Objective     string            `json:"objective,omitempty"`
	Description   string            `json:"description,omitempty"`
	Preconditions string            `json:"preconditions,omitempty"`
	FolderPath    string            `json:"folder_path,omitempty"`
	Status        CaseStatus        `json:"status"`
	Priority      Priority          `json:"priority"`
	TestSteps     []TestStep        `json:"test_steps"`
	Attachments   []Attachment      `json:"attachments,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Links         []Link            `json:"links,omitempty"`
	CustomFields  []CustomField     `json:"custom_fields,omitempty"`
	Automation    *Automation       `json:"automation,omitempty"`
	Owner         *UserRef          `json:"owner,omitempty"`
	CreatedBy     *UserRef          `json:"created_by,omitempty"`
	UpdatedBy     *UserRef          `json:"updated_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
	Version       int               `json:"version,omitempty"`
	IsLatest      bool              `json:"is_latest_version"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

func NewTestCase(name string) *TestCase {
	return &TestCase{
		Name:     name,
		Status:   CaseStatusDraft,
		Priority: PriorityMedium,
		IsLatest: true,
	}
}

// StepResult records the outcome of a single step inside an execution.
// StepID must reference a TestStep.ID in the executed test case.
type StepResult struct {
	StepID        string         `json:"step_id"`
	Order         int            `json:"order"`
	Status        ExecStatus     `json:"status"`
	ActualResult  string         `json:"actual_result,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time,omitempty"`
	Defects       []string       `json:"defects,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TestExecution is the canonical record of one run of a test case.
type TestExecution struct {
	ID            string          `json:"id"`
	SourceSystem  core.SystemName `json:"source_system,omitempty"`
	ExternalID    string          `json:"external_id,omitempty"`
	TestCaseID    string          `json:"test_case_id"`
	Status        ExecStatus      `json:"status"`
	Environment   string          `json:"environment,omitempty"`
	BuildVersion  string          `json:"build_version,omitempty"`
	StartTime     time.Time       `json:"start_time,omitempty"`
	EndTime       time.Time       `json:"end_time,omitempty"`
	ExecutionTime time.Duration   `json:"execution_time,omitempty"`
	ExecutedBy    *UserRef        `json:"executed_by,omitempty"`
	StepResults   []StepResult    `json:"step_results,omitempty"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	Defects       []string        `json:"defects,omitempty"`
	TestCycleID   string          `json:"test_cycle_id,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

func NewTestExecution(testCaseID string) *TestExecution {
	return &TestExecution{
		TestCaseID: testCaseID,
		Status:     ExecStatusNotExecuted,
	}
}

// TestSuite groups test cases under a named node of the suite tree.
type TestSuite struct {
	ID           string          `json:"id"`
	SourceSystem core.SystemName `json:"source_system,omitempty"`
	ExternalID   string          `json:"external_id,omitempty"`
	Name         string          `json:"name"`
	ParentID     string          `json:"parent_id,omitempty"`
	Path         string          `json:"path,omitempty"`
	TestCaseIDs  []string        `json:"test_case_ids,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// TestCycle is a planned execution window over a set of test cases.
type TestCycle struct {
	ID           string          `json:"id"`
	SourceSystem core.SystemName `json:"source_system,omitempty"`
	ExternalID   string          `json:"external_id,omitempty"`
	Name         string          `json:"name"`
	Status       string          `json:"status,omitempty"`
	StartDate    time.Time       `json:"start_date,omitempty"`
	EndDate      time.Time       `json:"end_date,omitempty"`
	Environment  string          `json:"environment,omitempty"`
	BuildVersion string          `json:"build_version,omitempty"`
	TestCaseIDs  []string        `json:"test_case_ids,omitempty"`
	ExecutionIDs []string        `json:"execution_ids,omitempty"`
	FolderPath   string          `json:"folder_path,omitempty"`
	Owner        *UserRef        `json:"owner,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}
