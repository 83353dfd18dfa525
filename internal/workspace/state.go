package workspace

import (
	"fmt"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

// Status tracks whether the workspace has a problem to work on.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusReady     Status = "ready"
	StatusLoadError Status = "load_error"
)

// LeftTab selects the informational pane.
type LeftTab string

const (
	LeftTabDescription LeftTab = "description"
	LeftTabEditorial   LeftTab = "editorial"
	LeftTabSolutions   LeftTab = "solutions"
	LeftTabSubmissions LeftTab = "submissions"
	LeftTabChatAI      LeftTab = "chatAI"
)

// LeftTabs lists the informational pane tabs in display order.
func LeftTabs() []LeftTab {
	return []LeftTab{LeftTabDescription, LeftTabEditorial, LeftTabSolutions, LeftTabSubmissions, LeftTabChatAI}
}

// ParseLeftTab resolves a left pane tab name.
func ParseLeftTab(value string) (LeftTab, error) {
	for _, tab := range LeftTabs() {
		if string(tab) == value {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, value)
}

// Label returns the tab caption.
func (t LeftTab) Label() string {
	switch t {
	case LeftTabDescription:
		return "Description"
	case LeftTabEditorial:
		return "Editorial"
	case LeftTabSolutions:
		return "Solutions"
	case LeftTabSubmissions:
		return "Submissions"
	case LeftTabChatAI:
		return "ChatAI"
	}
	panic(fmt.Sprintf("workspace: unhandled left tab %q", string(t)))
}

// RightTab selects the workspace pane.
type RightTab string

const (
	RightTabCode     RightTab = "code"
	RightTabTestcase RightTab = "testcase"
	RightTabResult   RightTab = "result"
)

// RightTabs lists the workspace pane tabs in display order.
func RightTabs() []RightTab {
	return []RightTab{RightTabCode, RightTabTestcase, RightTabResult}
}

// ParseRightTab resolves a right pane tab name.
func ParseRightTab(value string) (RightTab, error) {
	for _, tab := range RightTabs() {
		if string(tab) == value {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, value)
}

// Label returns the tab caption.
func (t RightTab) Label() string {
	switch t {
	case RightTabCode:
		return "Code Editor"
	case RightTabTestcase:
		return "Test Results"
	case RightTabResult:
		return "Submission Result"
	}
	panic(fmt.Sprintf("workspace: unhandled right tab %q", string(t)))
}

// EvaluationKind names the outstanding evaluation request, if any.
type EvaluationKind string

const (
	EvaluationNone   EvaluationKind = ""
	EvaluationRun    EvaluationKind = "run"
	EvaluationSubmit EvaluationKind = "submit"
)

// Label returns the busy caption shown on the action buttons.
func (k EvaluationKind) Label() string {
	switch k {
	case EvaluationRun:
		return "Running..."
	case EvaluationSubmit:
		return "Submitting..."
	default:
		return ""
	}
}

// State is the complete state of one problem view.
//
// State values are copied freely. Every field that holds a reference (Buffer, Transcript, the
// result pointers) is replaced rather than mutated by the reducer, so a copy handed out as a
// snapshot never changes underneath its reader.
type State struct {
	Version uint64
	Epoch   uint64

	Status    Status
	ProblemID string
	Problem   *models.Problem
	LoadError *Error

	Language models.Language
	Buffer   CodeBuffer

	RunResult       *models.RunResult
	SubmitResult    *models.SubmitResult
	Evaluating      EvaluationKind
	EvaluationError *Error

	LeftTab  LeftTab
	RightTab RightTab

	Transcript   models.Transcript
	ChatInFlight bool
	ChatDraft    string
}

// NewState returns the state of a freshly opened, not yet loaded, workspace.
func NewState(lang models.Language) State {
	return State{
		Status:     StatusIdle,
		Language:   lang,
		Buffer:     NewCodeBuffer(),
		LeftTab:    LeftTabDescription,
		RightTab:   RightTabCode,
		Transcript: SeedTranscript(),
	}
}

// InFlight reports whether a run or submit is outstanding.
func (s State) InFlight() bool {
	return s.Evaluating != EvaluationNone
}

// Code returns the text of the active buffer.
func (s State) Code() string {
	return s.Buffer.Text(s.Language)
}
