package workspace

import (
	"fmt"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

// runFailureMessage is the error shown in place of run results when the judge cannot be reached.
const runFailureMessage = "Internal server error"

// Reducer applies events to a State. It holds configuration only and never mutates its input:
// Reduce returns the next state, the effects to execute and, when the event is rejected, an error
// together with the unchanged state.
type Reducer struct {
	Policy  LanguagePolicy
	History HistoryMode
}

// Reduce computes the transition for ev.
func (r Reducer) Reduce(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case LoadRequested:
		return r.loadRequested(s, e)
	case ProblemLoaded:
		return r.problemLoaded(s, e)
	case ProblemLoadFailed:
		if e.Epoch != s.Epoch || s.Status != StatusLoading {
			return s, nil, ErrStaleResult
		}
		s.Status = StatusLoadError
		s.LoadError = e.Err
		return s, nil, nil

	case LanguageSelected:
		return r.languageSelected(s, e)
	case CodeEdited:
		if s.Status != StatusReady {
			return s, nil, ErrNotReady
		}
		s.Buffer = s.Buffer.With(s.Language, e.Text)
		return s, nil, nil
	case LeftTabSelected:
		if _, err := ParseLeftTab(string(e.Tab)); err != nil {
			return s, nil, err
		}
		s.LeftTab = e.Tab
		return s, nil, nil
	case RightTabSelected:
		if _, err := ParseRightTab(string(e.Tab)); err != nil {
			return s, nil, err
		}
		s.RightTab = e.Tab
		return s, nil, nil

	case RunRequested:
		return r.evaluationRequested(s, EvaluationRun)
	case RunCompleted:
		if e.Epoch != s.Epoch || s.Evaluating != EvaluationRun {
			return s, nil, ErrStaleResult
		}
		result := e.Result
		s.RunResult = &result
		s.Evaluating = EvaluationNone
		s.RightTab = RightTabTestcase
		return s, nil, nil
	case RunFailed:
		if e.Epoch != s.Epoch || s.Evaluating != EvaluationRun {
			return s, nil, ErrStaleResult
		}
		s.RunResult = &models.RunResult{Success: false, Error: runFailureMessage}
		s.EvaluationError = e.Err
		s.Evaluating = EvaluationNone
		s.RightTab = RightTabTestcase
		return s, nil, nil

	case SubmitRequested:
		return r.evaluationRequested(s, EvaluationSubmit)
	case SubmitCompleted:
		if e.Epoch != s.Epoch || s.Evaluating != EvaluationSubmit {
			return s, nil, ErrStaleResult
		}
		result := e.Result
		s.SubmitResult = &result
		s.Evaluating = EvaluationNone
		s.RightTab = RightTabResult
		return s, nil, nil
	case SubmitFailed:
		if e.Epoch != s.Epoch || s.Evaluating != EvaluationSubmit {
			return s, nil, ErrStaleResult
		}
		s.SubmitResult = nil
		s.EvaluationError = e.Err
		s.Evaluating = EvaluationNone
		s.RightTab = RightTabResult
		return s, nil, nil

	case ChatDraftEdited:
		s.ChatDraft = e.Text
		return s, nil, nil
	case ChatRequested:
		return r.chatRequested(s, e)
	case ChatReplied:
		if e.Epoch != s.Epoch || !s.ChatInFlight {
			return s, nil, ErrStaleResult
		}
		s.Transcript = s.Transcript.Append(models.NewChatMessage(models.ChatRoleAssistant, e.Text))
		s.ChatInFlight = false
		return s, nil, nil
	case ChatFailed:
		if e.Epoch != s.Epoch || !s.ChatInFlight {
			return s, nil, ErrStaleResult
		}
		s.Transcript = s.Transcript.Append(models.NewChatMessage(models.ChatRoleAssistant, FallbackReply))
		s.ChatInFlight = false
		return s, nil, nil
	}

	return s, nil, fmt.Errorf("workspace: unhandled event %T", ev)
}

func (r Reducer) loadRequested(s State, e LoadRequested) (State, []Effect, error) {
	if e.ProblemID == s.ProblemID && (s.Status == StatusLoading || s.Status == StatusReady) {
		return s, nil, nil
	}

	s.Epoch++
	s.Status = StatusLoading
	s.ProblemID = e.ProblemID
	s.Problem = nil
	s.LoadError = nil
	s.Buffer = NewCodeBuffer()
	s.RunResult = nil
	s.SubmitResult = nil
	s.Evaluating = EvaluationNone
	s.EvaluationError = nil
	s.Transcript = SeedTranscript()
	s.ChatInFlight = false
	s.ChatDraft = ""

	return s, []Effect{FetchProblem{Epoch: s.Epoch, ProblemID: e.ProblemID}}, nil
}

func (r Reducer) problemLoaded(s State, e ProblemLoaded) (State, []Effect, error) {
	if e.Epoch != s.Epoch || s.Status != StatusLoading {
		return s, nil, ErrStaleResult
	}

	problem := e.Problem
	if _, ok := problem.StarterCodeFor(s.Language); !ok {
		s.Status = StatusLoadError
		s.LoadError = newError(KindLoadFailure, "load", fmt.Errorf("%w %s", ErrNoStarterCode, s.Language.DisplayName()))
		return s, nil, nil
	}

	s.Status = StatusReady
	s.Problem = &problem
	s.Buffer = NewCodeBufferFromStarter(problem)
	return s, nil, nil
}

func (r Reducer) languageSelected(s State, e LanguageSelected) (State, []Effect, error) {
	if !e.Language.Valid() {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, string(e.Language))
	}
	if s.Status != StatusReady {
		s.Language = e.Language
		return s, nil, nil
	}

	buffer, err := r.Policy.activate(s.Buffer, *s.Problem, e.Language)
	if err != nil {
		return s, nil, err
	}
	s.Language = e.Language
	s.Buffer = buffer
	return s, nil, nil
}

func (r Reducer) evaluationRequested(s State, kind EvaluationKind) (State, []Effect, error) {
	if s.Status != StatusReady {
		return s, nil, ErrNotReady
	}
	if s.InFlight() {
		return s, nil, ErrRequestInFlight
	}

	s.Evaluating = kind
	s.EvaluationError = nil

	switch kind {
	case EvaluationRun:
		s.RunResult = nil
		return s, []Effect{ExecuteRun{Epoch: s.Epoch, ProblemID: s.ProblemID, Language: s.Language, Code: s.Code()}}, nil
	case EvaluationSubmit:
		s.SubmitResult = nil
		return s, []Effect{ExecuteSubmit{Epoch: s.Epoch, ProblemID: s.ProblemID, Language: s.Language, Code: s.Code()}}, nil
	}
	panic(fmt.Sprintf("workspace: unhandled evaluation kind %q", string(kind)))
}

func (r Reducer) chatRequested(s State, e ChatRequested) (State, []Effect, error) {
	if err := validateMessage(e.Text); err != nil {
		return s, nil, err
	}
	if s.Status != StatusReady {
		return s, nil, ErrNotReady
	}
	if s.ChatInFlight {
		return s, nil, ErrChatInFlight
	}

	turn := models.ChatTurn{
		Previous:        s.Transcript,
		Question:        models.NewChatMessage(models.ChatRoleUser, e.Text),
		IncludeQuestion: r.History == HistoryWithQuestion,
	}
	s.Transcript = turn.Conversation()
	s.ChatDraft = ""
	s.ChatInFlight = true

	return s, []Effect{SendChat{Epoch: s.Epoch, Turn: turn, Context: models.NewChatContext(*s.Problem)}}, nil
}
