package models

// TestCaseStatus is the verdict of a single sample test case.
type TestCaseStatus string

const (
	TestCaseStatusPassed TestCaseStatus = "passed"
	TestCaseStatusFailed TestCaseStatus = "failed"
)

// TestCaseOutcome describes how one visible test case behaved during a run.
type TestCaseOutcome struct {
	Status         TestCaseStatus `json:"status"`
	Input          string         `json:"input"`
	ExpectedOutput string         `json:"expected_output"`
	ActualOutput   string         `json:"actual_output"`
}

// Passed reports whether the test case passed.
func (o TestCaseOutcome) Passed() bool {
	return o.Status == TestCaseStatusPassed
}

// RunResult is the outcome of evaluating code against the visible test cases.
// A failed request is represented by Success=false, a non-empty Error and no test cases.
type RunResult struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Runtime   float64           `json:"runtime"`
	MemoryKB  float64           `json:"memory_kb"`
	TestCases []TestCaseOutcome `json:"test_cases"`
}

// SubmitResult is the outcome of grading code against the full test suite.
type SubmitResult struct {
	Accepted        bool    `json:"accepted"`
	Error           string  `json:"error,omitempty"`
	PassedTestCases int     `json:"passed_test_cases"`
	TotalTestCases  int     `json:"total_test_cases"`
	Runtime         float64 `json:"runtime"`
	MemoryKB        float64 `json:"memory_kb"`
}

// Progress returns the fraction of passed test cases, or 0 when no cases were graded.
func (r SubmitResult) Progress() float64 {
	if r.TotalTestCases <= 0 {
		return 0
	}
	return float64(r.PassedTestCases) / float64(r.TotalTestCases)
}

// Header returns the result headline: "Accepted" or the failure reason reported by the judge.
func (r SubmitResult) Header() string {
	if r.Accepted {
		return "Accepted"
	}
	return r.Error
}
