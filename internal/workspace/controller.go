package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/observability"
)

// ProblemSource fetches problem definitions.
type ProblemSource interface {
	ProblemByID(ctx context.Context, id string) (models.Problem, error)
}

// Judge evaluates code remotely.
type Judge interface {
	Run(ctx context.Context, problemID string, lang models.Language, code string) (models.RunResult, error)
	Submit(ctx context.Context, problemID string, lang models.Language, code string) (models.SubmitResult, error)
}

// Assistant answers questions about a problem. The history mode only shapes turn.History;
// turn.Question is always the newest user message.
type Assistant interface {
	Reply(ctx context.Context, turn models.ChatTurn, problem models.ChatContext) (string, error)
}

// Dependencies are the remote collaborators of a controller.
type Dependencies struct {
	Problems  ProblemSource
	Judge     Judge
	Assistant Assistant
}

// Config tunes controller behaviour.
type Config struct {
	DefaultLanguage models.Language
	LanguagePolicy  LanguagePolicy
	History         HistoryMode
	Logger          zerolog.Logger
}

// Listener receives a snapshot after every applied event. Listeners run while the controller
// lock is held and must neither block nor call back into the controller.
type Listener func(State)

// Controller owns the State of one problem view. Interactions are serialised through the
// reducer; remote calls run outside the lock, so a chat turn and an evaluation can overlap.
type Controller struct {
	mu        sync.Mutex
	state     State
	reducer   Reducer
	deps      Dependencies
	logger    zerolog.Logger
	closed    bool
	listeners map[uint64]Listener
	nextID    uint64
	touched   time.Time
	now       func() time.Time
}

// NewController builds a controller with no problem loaded.
func NewController(deps Dependencies, cfg Config) (*Controller, error) {
	if deps.Problems == nil || deps.Judge == nil || deps.Assistant == nil {
		return nil, fmt.Errorf("workspace: problems, judge and assistant are required")
	}

	lang := cfg.DefaultLanguage
	if lang == "" {
		lang = models.LanguageJavaScript
	}
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, string(lang))
	}

	policy := cfg.LanguagePolicy
	if policy == "" {
		policy = PolicyReset
	}
	history := cfg.History
	if history == "" {
		history = HistoryBeforeTurn
	}

	return &Controller{
		state:     NewState(lang),
		reducer:   Reducer{Policy: policy, History: history},
		deps:      deps,
		logger:    cfg.Logger.With().Str("component", "workspace_controller").Logger(),
		listeners: make(map[uint64]Listener),
		touched:   time.Now(),
		now:       time.Now,
	}, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastActivity returns when the workspace last changed.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close discards the workspace. Results of requests still in flight are dropped when they arrive.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.listeners = make(map[uint64]Listener)
}

// Load fetches problemID and initialises the buffers from its starter code. Requesting the
// problem that is already loaded or loading is a no-op. A failed fetch leaves the workspace
// in the load error state and returns an *Error of kind KindLoadFailure.
func (c *Controller) Load(ctx context.Context, problemID string) error {
	effects, err := c.dispatch(LoadRequested{ProblemID: problemID})
	if err != nil {
		return err
	}
	return c.execute(ctx, effects)
}

// SelectLanguage switches the active buffer.
func (c *Controller) SelectLanguage(lang models.Language) error {
	_, err := c.dispatch(LanguageSelected{Language: lang})
	return err
}

// EditCode replaces the text of the active buffer.
func (c *Controller) EditCode(text string) error {
	_, err := c.dispatch(CodeEdited{Text: text})
	return err
}

// SelectLeftTab switches the informational pane.
func (c *Controller) SelectLeftTab(tab LeftTab) error {
	_, err := c.dispatch(LeftTabSelected{Tab: tab})
	return err
}

// SelectRightTab switches the workspace pane. It never affects requests in flight.
func (c *Controller) SelectRightTab(tab RightTab) error {
	_, err := c.dispatch(RightTabSelected{Tab: tab})
	return err
}

// Run evaluates the active buffer against the visible test cases and blocks until the result
// is applied. It returns ErrRequestInFlight without side effects while a run or submit is
// outstanding. Judge failures are not returned; they surface as a failed RunResult.
func (c *Controller) Run(ctx context.Context) error {
	effects, err := c.dispatch(RunRequested{})
	if err != nil {
		return err
	}
	return c.execute(ctx, effects)
}

// Submit grades the active buffer against the full test suite. Concurrency rules match Run;
// failures surface as an absent SubmitResult.
func (c *Controller) Submit(ctx context.Context) error {
	effects, err := c.dispatch(SubmitRequested{})
	if err != nil {
		return err
	}
	return c.execute(ctx, effects)
}

// EditChatDraft stores the text typed into the chat box.
func (c *Controller) EditChatDraft(text string) error {
	_, err := c.dispatch(ChatDraftEdited{Text: text})
	return err
}

// SendMessage appends text to the transcript and blocks until the assistant answer, or the
// fallback reply, has been appended. Input shorter than MinMessageLength is rejected without
// touching the transcript.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	effects, err := c.dispatch(ChatRequested{Text: text})
	if err != nil {
		return err
	}
	return c.execute(ctx, effects)
}

func (c *Controller) dispatch(ev Event) ([]Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	next, effects, err := c.reducer.Reduce(c.state, ev)
	if err != nil {
		return nil, err
	}

	next.Version = c.state.Version + 1
	c.state = next
	c.touched = c.now()

	for _, fn := range c.listeners {
		fn(next)
	}
	return effects, nil
}

func (c *Controller) execute(ctx context.Context, effects []Effect) error {
	var firstErr error
	for _, effect := range effects {
		if err := c.perform(ctx, effect); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Controller) perform(ctx context.Context, effect Effect) error {
	log := observability.RequestLogger(ctx, c.logger)

	switch e := effect.(type) {
	case FetchProblem:
		problem, err := c.deps.Problems.ProblemByID(ctx, e.ProblemID)
		if err != nil {
			loadErr := newError(KindLoadFailure, "load", err)
			log.Warn().Err(err).Str("problem_id", e.ProblemID).Str("cause", string(loadErr.Cause)).Msg("problem load failed")
			c.complete(ProblemLoadFailed{Epoch: e.Epoch, Err: loadErr})
			return loadErr
		}
		c.complete(ProblemLoaded{Epoch: e.Epoch, Problem: problem})
		if state := c.Snapshot(); state.Epoch == e.Epoch && state.Status == StatusLoadError {
			return state.LoadError
		}
		return nil

	case ExecuteRun:
		start := time.Now()
		result, err := c.deps.Judge.Run(ctx, e.ProblemID, e.Language, e.Code)
		observability.EvaluationDuration().WithLabelValues(string(EvaluationRun)).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Warn().Err(err).Str("problem_id", e.ProblemID).Str("language", string(e.Language)).Msg("run failed")
			observability.Evaluations().WithLabelValues(string(EvaluationRun), "error").Inc()
			c.complete(RunFailed{Epoch: e.Epoch, Err: newError(KindEvaluationFailure, "run", err)})
			return nil
		}
		observability.Evaluations().WithLabelValues(string(EvaluationRun), outcomeLabel(result.Success)).Inc()
		c.complete(RunCompleted{Epoch: e.Epoch, Result: result})
		return nil

	case ExecuteSubmit:
		start := time.Now()
		result, err := c.deps.Judge.Submit(ctx, e.ProblemID, e.Language, e.Code)
		observability.EvaluationDuration().WithLabelValues(string(EvaluationSubmit)).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Warn().Err(err).Str("problem_id", e.ProblemID).Str("language", string(e.Language)).Msg("submit failed")
			observability.Evaluations().WithLabelValues(string(EvaluationSubmit), "error").Inc()
			c.complete(SubmitFailed{Epoch: e.Epoch, Err: newError(KindEvaluationFailure, "submit", err)})
			return nil
		}
		observability.Evaluations().WithLabelValues(string(EvaluationSubmit), outcomeLabel(result.Accepted)).Inc()
		c.complete(SubmitCompleted{Epoch: e.Epoch, Result: result})
		return nil

	case SendChat:
		reply, err := c.deps.Assistant.Reply(ctx, e.Turn, e.Context)
		if err != nil {
			log.Warn().Err(err).Msg("assistant turn failed")
			observability.ChatTurns().WithLabelValues("error").Inc()
			c.complete(ChatFailed{Epoch: e.Epoch, Err: newError(KindConversationFailure, "chat", err)})
			return nil
		}
		observability.ChatTurns().WithLabelValues("ok").Inc()
		c.complete(ChatReplied{Epoch: e.Epoch, Text: reply})
		return nil
	}

	return fmt.Errorf("workspace: unhandled effect %T", effect)
}

// complete applies the completion of an effect, dropping it when the workspace moved on.
func (c *Controller) complete(ev Event) {
	if _, err := c.dispatch(ev); err != nil {
		if errors.Is(err, ErrStaleResult) || errors.Is(err, ErrClosed) {
			c.logger.Debug().Str("event", ev.eventName()).Err(err).Msg("discarding result")
			return
		}
		c.logger.Error().Str("event", ev.eventName()).Err(err).Msg("failed to apply result")
	}
}

func outcomeLabel(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
