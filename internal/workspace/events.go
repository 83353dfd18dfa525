package workspace

import "github.com/noah-isme/codecraft-workspace/internal/models"

// Event is an input to the reducer: a user intent or the completion of an effect.
type Event interface {
	eventName() string
}

type (
	LoadRequested struct{ ProblemID string }
	ProblemLoaded struct {
		Epoch   uint64
		Problem models.Problem
	}
	ProblemLoadFailed struct {
		Epoch uint64
		Err   *Error
	}

	LanguageSelected struct{ Language models.Language }
	CodeEdited       struct{ Text string }
	LeftTabSelected  struct{ Tab LeftTab }
	RightTabSelected struct{ Tab RightTab }

	RunRequested struct{}
	RunCompleted struct {
		Epoch  uint64
		Result models.RunResult
	}
	RunFailed struct {
		Epoch uint64
		Err   *Error
	}

	SubmitRequested struct{}
	SubmitCompleted struct {
		Epoch  uint64
		Result models.SubmitResult
	}
	SubmitFailed struct {
		Epoch uint64
		Err   *Error
	}

	ChatDraftEdited struct{ Text string }
	ChatRequested   struct{ Text string }
	ChatReplied     struct {
		Epoch uint64
		Text  string
	}
	ChatFailed struct {
		Epoch uint64
		Err   *Error
	}
)

func (LoadRequested) eventName() string     { return "load_requested" }
func (ProblemLoaded) eventName() string     { return "problem_loaded" }
func (ProblemLoadFailed) eventName() string { return "problem_load_failed" }
func (LanguageSelected) eventName() string  { return "language_selected" }
func (CodeEdited) eventName() string        { return "code_edited" }
func (LeftTabSelected) eventName() string   { return "left_tab_selected" }
func (RightTabSelected) eventName() string  { return "right_tab_selected" }
func (RunRequested) eventName() string      { return "run_requested" }
func (RunCompleted) eventName() string      { return "run_completed" }
func (RunFailed) eventName() string         { return "run_failed" }
func (SubmitRequested) eventName() string   { return "submit_requested" }
func (SubmitCompleted) eventName() string   { return "submit_completed" }
func (SubmitFailed) eventName() string      { return "submit_failed" }
func (ChatDraftEdited) eventName() string   { return "chat_draft_edited" }
func (ChatRequested) eventName() string     { return "chat_requested" }
func (ChatReplied) eventName() string       { return "chat_replied" }
func (ChatFailed) eventName() string        { return "chat_failed" }

// Effect is a command the reducer asks the controller to perform asynchronously.
// Each effect carries the epoch of the load it belongs to so its completion can be
// discarded once the workspace has moved on to another problem.
type Effect interface {
	effectName() string
}

type (
	FetchProblem struct {
		Epoch     uint64
		ProblemID string
	}
	ExecuteRun struct {
		Epoch     uint64
		ProblemID string
		Language  models.Language
		Code      string
	}
	ExecuteSubmit struct {
		Epoch     uint64
		ProblemID string
		Language  models.Language
		Code      string
	}
	SendChat struct {
		Epoch   uint64
		Turn    models.ChatTurn
		Context models.ChatContext
	}
)

func (FetchProblem) effectName() string  { return "fetch_problem" }
func (ExecuteRun) effectName() string    { return "execute_run" }
func (ExecuteSubmit) effectName() string { return "execute_submit" }
func (SendChat) effectName() string      { return "send_chat" }
