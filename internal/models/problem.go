package models

// VisibleTestCase is a sample test shown with the problem statement.
type VisibleTestCase struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation"`
}

// HiddenTestCase is only used for grading; its explanation is withheld.
type HiddenTestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// StarterCode is the initial editor content for one language.
type StarterCode struct {
	Language Language `json:"language"`
	Code     string   `json:"code"`
}

// ReferenceSolution is the complete solution published for one language.
type ReferenceSolution struct {
	Language     Language `json:"language"`
	CompleteCode string   `json:"complete_code"`
}

// Problem is a single coding exercise. It is treated as immutable once loaded.
type Problem struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Difficulty         Difficulty          `json:"difficulty"`
	Tag                Tag                 `json:"tag"`
	VisibleTestCases   []VisibleTestCase   `json:"visible_test_cases"`
	HiddenTestCases    []HiddenTestCase    `json:"hidden_test_cases,omitempty"`
	StarterCode        []StarterCode       `json:"starter_code"`
	ReferenceSolutions []ReferenceSolution `json:"reference_solutions"`
}

// StarterCodeFor returns the starter code registered for lang.
func (p Problem) StarterCodeFor(lang Language) (string, bool) {
	for _, entry := range p.StarterCode {
		if entry.Language == lang {
			return entry.Code, true
		}
	}
	return "", false
}

// ProblemSummary is the catalog view of a problem.
type ProblemSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Tag        Tag        `json:"tag"`
}
