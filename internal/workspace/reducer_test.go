package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

func sampleProblem() models.Problem {
	return models.Problem{
		ID:          "p1",
		Title:       "Sum of Two",
		Description: "Add two integers.",
		Difficulty:  models.DifficultyEasy,
		Tag:         models.TagArray,
		VisibleTestCases: []models.VisibleTestCase{
			{Input: "2 3", Output: "5", Explanation: "2 + 3 = 5"},
		},
		StarterCode: []models.StarterCode{
			{Language: models.LanguageJavaScript, Code: "function f(){}"},
			{Language: models.LanguageJava, Code: "class S{}"},
			{Language: models.LanguageCPP, Code: "int main(){}"},
		},
	}
}

func readyState(t *testing.T, r Reducer) State {
	t.Helper()

	s, effects, err := r.Reduce(NewState(models.LanguageJavaScript), LoadRequested{ProblemID: "p1"})
	require.NoError(t, err)
	require.Len(t, effects, 1)
	fetch := effects[0].(FetchProblem)

	s, effects, err = r.Reduce(s, ProblemLoaded{Epoch: fetch.Epoch, Problem: sampleProblem()})
	require.NoError(t, err)
	require.Empty(t, effects)
	require.Equal(t, StatusReady, s.Status)
	return s
}

func TestReducerLoadInitialisesBuffers(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	require.Equal(t, "function f(){}", s.Code())
	require.Equal(t, "class S{}", s.Buffer.Text(models.LanguageJava))
	require.Equal(t, "int main(){}", s.Buffer.Text(models.LanguageCPP))
	require.Len(t, s.Transcript, 2)
	require.Equal(t, LeftTabDescription, s.LeftTab)
	require.Equal(t, RightTabCode, s.RightTab)
}

func TestReducerLoadSameProblemIsNoop(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	next, effects, err := r.Reduce(s, LoadRequested{ProblemID: "p1"})
	require.NoError(t, err)
	require.Empty(t, effects)
	require.Equal(t, s.Epoch, next.Epoch)
	require.Equal(t, StatusReady, next.Status)
}

func TestReducerLoadMissingStarterCodeFails(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s, effects, err := r.Reduce(NewState(models.LanguageCPP), LoadRequested{ProblemID: "p1"})
	require.NoError(t, err)

	problem := sampleProblem()
	problem.StarterCode = problem.StarterCode[:2]

	s, _, err = r.Reduce(s, ProblemLoaded{Epoch: effects[0].(FetchProblem).Epoch, Problem: problem})
	require.NoError(t, err)
	require.Equal(t, StatusLoadError, s.Status)
	require.NotNil(t, s.LoadError)
	require.Equal(t, KindLoadFailure, s.LoadError.Kind)
	require.Equal(t, CauseInvalid, s.LoadError.Cause)
}

func TestReducerLanguageSwitchResetsBuffer(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, _, err := r.Reduce(s, CodeEdited{Text: "edited"})
	require.NoError(t, err)
	require.Equal(t, "edited", s.Code())

	s, _, err = r.Reduce(s, LanguageSelected{Language: models.LanguageJava})
	require.NoError(t, err)
	s, _, err = r.Reduce(s, LanguageSelected{Language: models.LanguageJavaScript})
	require.NoError(t, err)

	require.Equal(t, "function f(){}", s.Code())
}

func TestReducerLanguageSwitchPreservesBuffer(t *testing.T) {
	r := Reducer{Policy: PolicyPreserve}
	s := readyState(t, r)

	s, _, err := r.Reduce(s, CodeEdited{Text: "edited"})
	require.NoError(t, err)
	s, _, err = r.Reduce(s, LanguageSelected{Language: models.LanguageCPP})
	require.NoError(t, err)
	require.Equal(t, "int main(){}", s.Code())

	s, _, err = r.Reduce(s, LanguageSelected{Language: models.LanguageJavaScript})
	require.NoError(t, err)
	require.Equal(t, "edited", s.Code())
}

func TestReducerRejectsUnknownLanguage(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	next, _, err := r.Reduce(s, LanguageSelected{Language: models.Language("python")})
	require.ErrorIs(t, err, ErrUnknownLanguage)
	require.Equal(t, s.Language, next.Language)
}

func TestReducerEditDoesNotMutateSnapshot(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	before := readyState(t, r)

	after, _, err := r.Reduce(before, CodeEdited{Text: "changed"})
	require.NoError(t, err)
	require.Equal(t, "function f(){}", before.Code())
	require.Equal(t, "changed", after.Code())
}

func TestReducerRunSingleFlight(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)
	require.False(t, s.InFlight())

	s, effects, err := r.Reduce(s, RunRequested{})
	require.NoError(t, err)
	require.True(t, s.InFlight())
	require.Len(t, effects, 1)
	run := effects[0].(ExecuteRun)
	require.Equal(t, "function f(){}", run.Code)
	require.Equal(t, models.LanguageJavaScript, run.Language)

	_, effects, err = r.Reduce(s, RunRequested{})
	require.ErrorIs(t, err, ErrRequestInFlight)
	require.Empty(t, effects)

	_, effects, err = r.Reduce(s, SubmitRequested{})
	require.ErrorIs(t, err, ErrRequestInFlight)
	require.Empty(t, effects)

	s, _, err = r.Reduce(s, RunCompleted{Epoch: run.Epoch, Result: models.RunResult{Success: true}})
	require.NoError(t, err)
	require.False(t, s.InFlight())
	require.Equal(t, RightTabTestcase, s.RightTab)
	require.True(t, s.RunResult.Success)
}

func TestReducerRunFailureSynthesisesResult(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, effects, err := r.Reduce(s, RunRequested{})
	require.NoError(t, err)

	s, _, err = r.Reduce(s, RunFailed{Epoch: effects[0].(ExecuteRun).Epoch, Err: newError(KindEvaluationFailure, "run", errors.New("boom"))})
	require.NoError(t, err)
	require.False(t, s.InFlight())
	require.NotNil(t, s.RunResult)
	require.False(t, s.RunResult.Success)
	require.Equal(t, "Internal server error", s.RunResult.Error)
	require.Equal(t, RightTabTestcase, s.RightTab)
}

func TestReducerSubmitFailureClearsResult(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, effects, err := r.Reduce(s, SubmitRequested{})
	require.NoError(t, err)

	s, _, err = r.Reduce(s, SubmitFailed{Epoch: effects[0].(ExecuteSubmit).Epoch, Err: newError(KindEvaluationFailure, "submit", errors.New("boom"))})
	require.NoError(t, err)
	require.Nil(t, s.SubmitResult)
	require.NotNil(t, s.EvaluationError)
	require.Equal(t, RightTabResult, s.RightTab)
	require.False(t, s.InFlight())
}

func TestReducerEvaluationRequiresReady(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	_, _, err := r.Reduce(NewState(models.LanguageJavaScript), RunRequested{})
	require.ErrorIs(t, err, ErrNotReady)
	_, _, err = r.Reduce(NewState(models.LanguageJavaScript), SubmitRequested{})
	require.ErrorIs(t, err, ErrNotReady)
}

func TestReducerDiscardsStaleCompletion(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, effects, err := r.Reduce(s, RunRequested{})
	require.NoError(t, err)
	staleEpoch := effects[0].(ExecuteRun).Epoch

	s, _, err = r.Reduce(s, LoadRequested{ProblemID: "p2"})
	require.NoError(t, err)
	require.False(t, s.InFlight())

	next, _, err := r.Reduce(s, RunCompleted{Epoch: staleEpoch, Result: models.RunResult{Success: true}})
	require.ErrorIs(t, err, ErrStaleResult)
	require.Nil(t, next.RunResult)
}

func TestReducerTabSelection(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, _, err := r.Reduce(s, LeftTabSelected{Tab: LeftTabChatAI})
	require.NoError(t, err)
	require.Equal(t, LeftTabChatAI, s.LeftTab)

	_, _, err = r.Reduce(s, RightTabSelected{Tab: RightTab("console")})
	require.ErrorIs(t, err, ErrUnknownTab)

	s, effects, err := r.Reduce(s, RunRequested{})
	require.NoError(t, err)
	s, _, err = r.Reduce(s, RightTabSelected{Tab: RightTabResult})
	require.NoError(t, err)
	require.True(t, s.InFlight())

	s, _, err = r.Reduce(s, RunCompleted{Epoch: effects[0].(ExecuteRun).Epoch})
	require.NoError(t, err)
	require.Equal(t, RightTabTestcase, s.RightTab)
}

func TestReducerChatTurn(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, _, err := r.Reduce(s, ChatDraftEdited{Text: "How do I start?"})
	require.NoError(t, err)

	s, effects, err := r.Reduce(s, ChatRequested{Text: "How do I start?"})
	require.NoError(t, err)
	require.True(t, s.ChatInFlight)
	require.Empty(t, s.ChatDraft)
	require.Len(t, s.Transcript, 3)

	send := effects[0].(SendChat)
	require.Len(t, send.Turn.History(), 2)
	require.Equal(t, "How do I start?", send.Turn.Question.Text())
	require.Len(t, send.Turn.Conversation(), 3)
	require.Equal(t, "Sum of Two", send.Context.Title)

	_, _, err = r.Reduce(s, ChatRequested{Text: "again"})
	require.ErrorIs(t, err, ErrChatInFlight)

	s, _, err = r.Reduce(s, ChatReplied{Epoch: send.Epoch, Text: "Read the input."})
	require.NoError(t, err)
	require.False(t, s.ChatInFlight)
	require.Len(t, s.Transcript, 4)
	require.Equal(t, models.ChatRoleAssistant, s.Transcript[3].Role)
	require.Equal(t, "Read the input.", s.Transcript[3].Text())
}

func TestReducerChatHistoryWithQuestion(t *testing.T) {
	r := Reducer{Policy: PolicyReset, History: HistoryWithQuestion}
	s := readyState(t, r)

	_, effects, err := r.Reduce(s, ChatRequested{Text: "hint please"})
	require.NoError(t, err)

	history := effects[0].(SendChat).Turn.History()
	require.Len(t, history, 3)
	require.Equal(t, "hint please", history[2].Text())
}

func TestReducerChatRejectsShortInput(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	for _, text := range []string{"", "a", "   ", " b "} {
		next, effects, err := r.Reduce(s, ChatRequested{Text: text})
		require.ErrorIs(t, err, ErrMessageTooShort, text)
		require.Empty(t, effects)
		require.Len(t, next.Transcript, 2)
	}
}

func TestReducerChatFailureAppendsFallback(t *testing.T) {
	r := Reducer{Policy: PolicyReset}
	s := readyState(t, r)

	s, effects, err := r.Reduce(s, ChatRequested{Text: "help"})
	require.NoError(t, err)

	s, _, err = r.Reduce(s, ChatFailed{Epoch: effects[0].(SendChat).Epoch, Err: newError(KindConversationFailure, "chat", errors.New("down"))})
	require.NoError(t, err)
	require.False(t, s.ChatInFlight)
	require.Len(t, s.Transcript, 4)
	require.Equal(t, FallbackReply, s.Transcript[3].Text())
}
