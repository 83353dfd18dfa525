package dto

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
)

// OpenWorkspaceRequest opens a workspace on a problem.
type OpenWorkspaceRequest struct {
	ProblemID string `json:"problem_id" validate:"required,max=64"`
	Language  string `json:"language" validate:"omitempty,oneof=javascript java cpp"`
}

// LoadProblemRequest switches an open workspace to another problem.
type LoadProblemRequest struct {
	ProblemID string `json:"problem_id" validate:"required,max=64"`
}

// SelectLanguageRequest activates a language buffer.
type SelectLanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=javascript java cpp"`
}

// EditCodeRequest replaces the text of the active buffer.
type EditCodeRequest struct {
	Code string `json:"code" validate:"max=200000"`
}

// SelectTabsRequest switches one or both panes.
type SelectTabsRequest struct {
	Left  string `json:"left" validate:"omitempty,oneof=description editorial solutions submissions chatAI"`
	Right string `json:"right" validate:"omitempty,oneof=code testcase result"`
}

// ChatDraftRequest stores the text typed into the chat box.
type ChatDraftRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// ChatSendRequest sends a message to the assistant.
type ChatSendRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ErrorView describes a failure shown in place of content.
type ErrorView struct {
	Kind    string `json:"kind"`
	Cause   string `json:"cause"`
	Message string `json:"message"`
}

// ExampleView is a numbered sample test case.
type ExampleView struct {
	Number      int    `json:"number"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// SolutionView is a published reference solution.
type SolutionView struct {
	Language      string `json:"language"`
	LanguageLabel string `json:"language_label"`
	Code          string `json:"code"`
}

// ProblemView is the informational pane content.
type ProblemView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DescriptionHTML string         `json:"description_html"`
	Difficulty      string         `json:"difficulty"`
	DifficultyLabel string         `json:"difficulty_label"`
	BadgeClass      string         `json:"badge_class"`
	Tag             string         `json:"tag"`
	TagLabel        string         `json:"tag_label"`
	Examples        []ExampleView  `json:"examples"`
	Solutions       []SolutionView `json:"solutions"`
	SolutionCount   int            `json:"solution_count"`
}

// LanguageOption is an entry of the language selector.
type LanguageOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// TestCaseView is one row of the run result.
type TestCaseView struct {
	Number         int    `json:"number"`
	Passed         bool   `json:"passed"`
	StatusLabel    string `json:"status_label"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Output         string `json:"output"`
}

// RunResultView is the test results pane.
type RunResultView struct {
	HasResult bool           `json:"has_result"`
	Success   bool           `json:"success"`
	Header    string         `json:"header"`
	Error     string         `json:"error,omitempty"`
	Runtime   float64        `json:"runtime"`
	MemoryKB  float64        `json:"memory_kb"`
	TestCases []TestCaseView `json:"test_cases"`
}

// SubmitResultView is the submission result pane.
type SubmitResultView struct {
	HasResult     bool    `json:"has_result"`
	Accepted      bool    `json:"accepted"`
	Header        string  `json:"header"`
	Summary       string  `json:"summary"`
	Passed        int     `json:"passed"`
	Total         int     `json:"total"`
	Progress      float64 `json:"progress"`
	ProgressLabel string  `json:"progress_label"`
	Runtime       float64 `json:"runtime"`
	MemoryKB      float64 `json:"memory_kb"`
}

// TabsView reports the active tab of both panes.
type TabsView struct {
	Left       string `json:"left"`
	LeftLabel  string `json:"left_label"`
	Right      string `json:"right"`
	RightLabel string `json:"right_label"`
}

// ChatMessageView is one transcript entry.
type ChatMessageView struct {
	Role     string `json:"role"`
	Text     string `json:"text"`
	TextHTML string `json:"text_html"`
}

// ChatView is the assistant pane.
type ChatView struct {
	Messages []ChatMessageView `json:"messages"`
	InFlight bool              `json:"in_flight"`
	Draft    string            `json:"draft"`
}

// WorkspaceSnapshot is the full, render-ready state of a workspace.
type WorkspaceSnapshot struct {
	ID              string           `json:"id"`
	Version         uint64           `json:"version"`
	Status          string           `json:"status"`
	ProblemID       string           `json:"problem_id"`
	LoadError       *ErrorView       `json:"load_error,omitempty"`
	Problem         *ProblemView     `json:"problem,omitempty"`
	Language        string           `json:"language"`
	EditorMode      string           `json:"editor_mode"`
	Languages       []LanguageOption `json:"languages"`
	Code            string           `json:"code"`
	InFlight        bool             `json:"in_flight"`
	Evaluating      string           `json:"evaluating,omitempty"`
	EvaluatingLabel string           `json:"evaluating_label,omitempty"`
	EvaluationError *ErrorView       `json:"evaluation_error,omitempty"`
	RunResult       RunResultView    `json:"run_result"`
	SubmitResult    SubmitResultView `json:"submit_result"`
	Tabs            TabsView         `json:"tabs"`
	Chat            ChatView         `json:"chat"`
}

// NewSanitizer returns the policy used for HTML fields of snapshots.
func NewSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")
	return policy
}

// NewWorkspaceSnapshot renders a workspace state.
func NewWorkspaceSnapshot(id string, s workspace.State, sanitizer *bluemonday.Policy) WorkspaceSnapshot {
	snapshot := WorkspaceSnapshot{
		ID:              id,
		Version:         s.Version,
		Status:          string(s.Status),
		ProblemID:       s.ProblemID,
		LoadError:       newErrorView(s.LoadError),
		Language:        string(s.Language),
		EditorMode:      s.Language.EditorMode(),
		Code:            s.Code(),
		InFlight:        s.InFlight(),
		Evaluating:      string(s.Evaluating),
		EvaluatingLabel: s.Evaluating.Label(),
		EvaluationError: newErrorView(s.EvaluationError),
		RunResult:       newRunResultView(s.RunResult),
		SubmitResult:    newSubmitResultView(s.SubmitResult),
		Tabs: TabsView{
			Left:       string(s.LeftTab),
			LeftLabel:  s.LeftTab.Label(),
			Right:      string(s.RightTab),
			RightLabel: s.RightTab.Label(),
		},
		Chat: ChatView{
			Messages: make([]ChatMessageView, 0, len(s.Transcript)),
			InFlight: s.ChatInFlight,
			Draft:    s.ChatDraft,
		},
	}

	for _, lang := range models.Languages() {
		snapshot.Languages = append(snapshot.Languages, LanguageOption{
			Value:    string(lang),
			Label:    lang.DisplayName(),
			Selected: lang == s.Language,
		})
	}

	if s.Problem != nil {
		view := newProblemView(*s.Problem, sanitizer)
		snapshot.Problem = &view
	}

	for _, msg := range s.Transcript {
		snapshot.Chat.Messages = append(snapshot.Chat.Messages, ChatMessageView{
			Role:     string(msg.Role),
			Text:     msg.Text(),
			TextHTML: renderHTML(sanitizer, msg.Text()),
		})
	}

	return snapshot
}

func newErrorView(err *workspace.Error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{Kind: string(err.Kind), Cause: string(err.Cause), Message: err.Error()}
}

func newProblemView(p models.Problem, sanitizer *bluemonday.Policy) ProblemView {
	view := ProblemView{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		DescriptionHTML: renderHTML(sanitizer, p.Description),
		Difficulty:      string(p.Difficulty),
		DifficultyLabel: p.Difficulty.Label(),
		BadgeClass:      p.Difficulty.BadgeClass(),
		Tag:             string(p.Tag),
		TagLabel:        p.Tag.Label(),
		Examples:        make([]ExampleView, 0, len(p.VisibleTestCases)),
		Solutions:       make([]SolutionView, 0, len(p.ReferenceSolutions)),
		SolutionCount:   len(p.ReferenceSolutions),
	}
	for i, tc := range p.VisibleTestCases {
		view.Examples = append(view.Examples, ExampleView{Number: i + 1, Input: tc.Input, Output: tc.Output, Explanation: tc.Explanation})
	}
	for _, rs := range p.ReferenceSolutions {
		view.Solutions = append(view.Solutions, SolutionView{
			Language:      string(rs.Language),
			LanguageLabel: rs.Language.DisplayName(),
			Code:          rs.CompleteCode,
		})
	}
	return view
}

func newRunResultView(result *models.RunResult) RunResultView {
	if result == nil {
		return RunResultView{Header: "No Test Results Yet", TestCases: []TestCaseView{}}
	}

	view := RunResultView{
		HasResult: true,
		Success:   result.Success,
		Header:    "Test Cases Failed",
		Error:     result.Error,
		Runtime:   result.Runtime,
		MemoryKB:  result.MemoryKB,
		TestCases: make([]TestCaseView, 0, len(result.TestCases)),
	}
	if result.Success {
		view.Header = "All Test Cases Passed!"
	}

	for i, tc := range result.TestCases {
		row := TestCaseView{
			Number:         i + 1,
			Passed:         tc.Passed(),
			StatusLabel:    "Failed",
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Output:         tc.ActualOutput,
		}
		if row.Passed {
			row.StatusLabel = "Passed"
		}
		if row.Output == "" {
			row.Output = "No output"
		}
		view.TestCases = append(view.TestCases, row)
	}
	return view
}

func newSubmitResultView(result *models.SubmitResult) SubmitResultView {
	if result == nil {
		return SubmitResultView{Header: "No Submission Yet", Summary: "Submit your solution to see evaluation results"}
	}

	view := SubmitResultView{
		HasResult: true,
		Accepted:  result.Accepted,
		Header:    result.Header(),
		Summary:   "Your solution didn't pass all test cases.",
		Passed:    result.PassedTestCases,
		Total:     result.TotalTestCases,
		Progress:  result.Progress(),
		Runtime:   result.Runtime,
		MemoryKB:  result.MemoryKB,

		ProgressLabel: fmt.Sprintf("%d/%d", result.PassedTestCases, result.TotalTestCases),
	}
	if result.Accepted {
		view.Summary = "Your solution passed all test cases."
	}
	return view
}

func renderHTML(sanitizer *bluemonday.Policy, text string) string {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	clean := sanitizer.Sanitize(text)
	return strings.ReplaceAll(clean, "\n", "<br>")
}
