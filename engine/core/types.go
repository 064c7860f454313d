package core

// -----------------------------------------------------------------------------
// System Names
// -----------------------------------------------------------------------------

// SystemName identifies an external test-management system dialect.
type SystemName string

const (
	SystemZephyr      SystemName = "zephyr"
	SystemQTest       SystemName = "qtest"
	SystemAzureDevOps SystemName = "azure-devops"
	SystemRally       SystemName = "rally"
	SystemHPALM       SystemName = "hp-alm"
	SystemExcel       SystemName = "excel"
)

func (s SystemName) String() string {
	return string(s)
}

// RecognizedSystems is the closed set of systems a migration job may name.
var RecognizedSystems = []SystemName{
	SystemZephyr,
	SystemQTest,
	SystemAzureDevOps,
	SystemRally,
	SystemHPALM,
	SystemExcel,
}

func IsRecognizedSystem(name string) bool {
	for _, s := range RecognizedSystems {
		if s.String() == name {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Entity Types
// -----------------------------------------------------------------------------

// EntityType identifies which canonical entity a mapper or record refers to.
type EntityType string

const (
	EntityTestCase      EntityType = "test_case"
	EntityTestExecution EntityType = "test_execution"
	EntityTestSuite     EntityType = "test_suite"
	EntityTestCycle     EntityType = "test_cycle"
	EntityAttachment    EntityType = "attachment"
)

func (e EntityType) String() string {
	return string(e)
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

// StatusType tracks workflow and step execution state.
type StatusType string

const (
	StatusPending   StatusType = "PENDING"
	StatusCreated   StatusType = "CREATED"
	StatusRunning   StatusType = "RUNNING"
	StatusCompleted StatusType = "COMPLETED"
	StatusFailed    StatusType = "FAILED"
	StatusPaused    StatusType = "PAUSED"
)

func (s StatusType) String() string {
	return string(s)
}

func (s StatusType) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
