package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

var (
	// ErrRequestInFlight rejects a run or submit while another evaluation is outstanding.
	ErrRequestInFlight = errors.New("evaluation already in flight")
	// ErrChatInFlight rejects a chat turn while the previous one is outstanding.
	ErrChatInFlight = errors.New("chat request already in flight")
	// ErrMessageTooShort rejects chat input shorter than MinMessageLength characters.
	ErrMessageTooShort = errors.New("message must be at least 2 characters")
	// ErrNotReady rejects operations that need a loaded problem.
	ErrNotReady = errors.New("problem not loaded")
	// ErrUnknownLanguage rejects a language outside the supported set.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrNoStarterCode rejects activating a language the problem has no starter code for.
	ErrNoStarterCode = errors.New("problem has no starter code for language")
	// ErrUnknownTab rejects a tab name outside the pane's selector.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrStaleResult marks a completion that belongs to a previous problem load.
	ErrStaleResult = errors.New("stale result discarded")
	// ErrClosed rejects any interaction with a closed workspace.
	ErrClosed = errors.New("workspace closed")
)

// Kind classifies failures converted at the orchestration boundary.
type Kind string

const (
	KindLoadFailure         Kind = "load_failure"
	KindEvaluationFailure   Kind = "evaluation_failure"
	KindConversationFailure Kind = "conversation_failure"
)

// Cause narrows a failure down to what went wrong on the remote side.
type Cause string

const (
	CauseNotFound     Cause = "not_found"
	CauseNetwork      Cause = "network_error"
	CauseUnauthorized Cause = "unauthorized"
	CauseInvalid      Cause = "invalid"
	CauseServer       Cause = "server_error"
)

// Error is a remote failure converted into one of the workspace failure kinds.
type Error struct {
	Kind  Kind
	Cause Cause
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Cause, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Cause: classify(err), Op: op, Err: err}
}

func classify(err error) Cause {
	switch {
	case errors.Is(err, platform.ErrNotFound):
		return CauseNotFound
	case errors.Is(err, platform.ErrUnauthorized):
		return CauseUnauthorized
	case errors.Is(err, platform.ErrInvalidProblem), errors.Is(err, ErrNoStarterCode):
		return CauseInvalid
	case errors.Is(err, platform.ErrNetwork), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CauseNetwork
	default:
		return CauseServer
	}
}
