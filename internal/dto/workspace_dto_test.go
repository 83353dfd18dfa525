package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
)

func loadedState() workspace.State {
	problem := models.Problem{
		ID:          "p1",
		Title:       "Sum of Two",
		Description: "Add <b>two</b> integers.\n<script>alert(1)</script>",
		Difficulty:  models.DifficultyMedium,
		Tag:         models.TagDP,
		VisibleTestCases: []models.VisibleTestCase{
			{Input: "2 3", Output: "5"},
		},
		StarterCode: []models.StarterCode{{Language: models.LanguageJavaScript, Code: "function f(){}"}},
		ReferenceSolutions: []models.ReferenceSolution{
			{Language: models.LanguageJavaScript, CompleteCode: "function f(a,b){return a+b}"},
		},
	}

	s := workspace.NewState(models.LanguageJavaScript)
	s.Status = workspace.StatusReady
	s.ProblemID = problem.ID
	s.Problem = &problem
	s.Buffer = workspace.NewCodeBufferFromStarter(problem)
	return s
}

func TestNewWorkspaceSnapshotEmptyResults(t *testing.T) {
	snapshot := NewWorkspaceSnapshot("ws-1", loadedState(), NewSanitizer())

	require.Equal(t, "ws-1", snapshot.ID)
	require.Equal(t, "ready", snapshot.Status)
	require.Equal(t, "function f(){}", snapshot.Code)
	require.Equal(t, "javascript", snapshot.EditorMode)
	require.Len(t, snapshot.Languages, 3)
	require.True(t, snapshot.Languages[0].Selected)
	require.Equal(t, "C++", snapshot.Languages[2].Label)

	require.False(t, snapshot.RunResult.HasResult)
	require.False(t, snapshot.SubmitResult.HasResult)
	require.Equal(t, "No Submission Yet", snapshot.SubmitResult.Header)

	require.NotNil(t, snapshot.Problem)
	require.Equal(t, "Medium", snapshot.Problem.DifficultyLabel)
	require.Equal(t, "Dp", snapshot.Problem.TagLabel)
	require.Equal(t, 1, snapshot.Problem.SolutionCount)
	require.NotContains(t, snapshot.Problem.DescriptionHTML, "<script>")
	require.Contains(t, snapshot.Problem.DescriptionHTML, "<b>two</b>")
	require.Contains(t, snapshot.Problem.DescriptionHTML, "<br>")

	require.Equal(t, "description", snapshot.Tabs.Left)
	require.Equal(t, "Code Editor", snapshot.Tabs.RightLabel)
	require.Len(t, snapshot.Chat.Messages, 2)
	require.Equal(t, "assistant", snapshot.Chat.Messages[0].Role)
}

func TestNewWorkspaceSnapshotResults(t *testing.T) {
	s := loadedState()
	s.RunResult = &models.RunResult{
		Success: false,
		TestCases: []models.TestCaseOutcome{
			{Status: models.TestCaseStatusPassed, Input: "2 3", ExpectedOutput: "5", ActualOutput: "5"},
			{Status: models.TestCaseStatusFailed, Input: "1 1", ExpectedOutput: "2"},
		},
	}
	s.SubmitResult = &models.SubmitResult{Accepted: false, Error: "Wrong Answer", PassedTestCases: 3, TotalTestCases: 5}
	s.Evaluating = workspace.EvaluationSubmit

	snapshot := NewWorkspaceSnapshot("ws-1", s, nil)

	require.Equal(t, "Test Cases Failed", snapshot.RunResult.Header)
	require.Equal(t, "Passed", snapshot.RunResult.TestCases[0].StatusLabel)
	require.Equal(t, "No output", snapshot.RunResult.TestCases[1].Output)
	require.Equal(t, 2, snapshot.RunResult.TestCases[1].Number)

	require.Equal(t, "Wrong Answer", snapshot.SubmitResult.Header)
	require.Equal(t, "3/5", snapshot.SubmitResult.ProgressLabel)
	require.InDelta(t, 0.6, snapshot.SubmitResult.Progress, 1e-9)
	require.Equal(t, "Your solution didn't pass all test cases.", snapshot.SubmitResult.Summary)

	require.True(t, snapshot.InFlight)
	require.Equal(t, "Submitting...", snapshot.EvaluatingLabel)
}

func TestRequestValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	require.NoError(t, validate.Struct(SelectLanguageRequest{Language: "cpp"}))
	require.Error(t, validate.Struct(SelectLanguageRequest{Language: "python"}))
	require.NoError(t, validate.Struct(SelectTabsRequest{Left: "chatAI"}))
	require.Error(t, validate.Struct(SelectTabsRequest{Right: "console"}))
	require.Error(t, validate.Struct(OpenWorkspaceRequest{}))
	require.NoError(t, validate.Struct(ProblemCatalogFilter{Difficulty: "hard", Tag: "linkedList", Status: "solved"}))
	require.Error(t, validate.Struct(ProblemCatalogFilter{Status: "attempted"}))
}
