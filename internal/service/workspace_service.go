package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/observability"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
)

// ErrWorkspaceNotFound indicates the workspace does not exist or belongs to someone else.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// WorkspaceOptions configures every workspace opened by the service.
type WorkspaceOptions struct {
	DefaultLanguage models.Language
	LanguagePolicy  workspace.LanguagePolicy
	History         workspace.HistoryMode
	IdleTTL         time.Duration
	ProblemCacheTTL time.Duration
}

// WorkspaceService hosts one workspace controller per open problem view.
type WorkspaceService interface {
	Open(ctx context.Context, session Session, req dto.OpenWorkspaceRequest) (dto.WorkspaceSnapshot, error)
	Get(session Session, id string) (dto.WorkspaceSnapshot, error)
	LoadProblem(ctx context.Context, session Session, id string, req dto.LoadProblemRequest) (dto.WorkspaceSnapshot, error)
	SelectLanguage(session Session, id string, req dto.SelectLanguageRequest) (dto.WorkspaceSnapshot, error)
	EditCode(session Session, id string, req dto.EditCodeRequest) (dto.WorkspaceSnapshot, error)
	SelectTabs(session Session, id string, req dto.SelectTabsRequest) (dto.WorkspaceSnapshot, error)
	Run(ctx context.Context, session Session, id string) (dto.WorkspaceSnapshot, error)
	Submit(ctx context.Context, session Session, id string) (dto.WorkspaceSnapshot, error)
	EditChatDraft(session Session, id string, req dto.ChatDraftRequest) (dto.WorkspaceSnapshot, error)
	SendMessage(ctx context.Context, session Session, id string, req dto.ChatSendRequest) (dto.WorkspaceSnapshot, error)
	Close(ctx context.Context, session Session, id string) error
	Subscribe(session Session, id string, fn func(dto.WorkspaceSnapshot)) (func(), error)
	Active() int
	Start(ctx context.Context)
}

type hostedWorkspace struct {
	id    string
	owner string
	ctrl  *workspace.Controller
}

type workspaceService struct {
	mu         sync.RWMutex
	workspaces map[string]*hostedWorkspace

	clients   PlatformFactory
	assistant workspace.Assistant
	cache     *redis.Client
	publisher EventPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	opts      WorkspaceOptions
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewWorkspaceService builds the workspace registry. When assistant is nil the platform assistant
// of the caller's session is used.
func NewWorkspaceService(clients PlatformFactory, assistant workspace.Assistant, cache *redis.Client, publisher EventPublisher, validate *validator.Validate, opts WorkspaceOptions, logger zerolog.Logger) WorkspaceService {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = models.LanguageJavaScript
	}

	return &workspaceService{
		workspaces: make(map[string]*hostedWorkspace),
		clients:    clients,
		assistant:  assistant,
		cache:      cache,
		publisher:  publisher,
		validator:  validate,
		sanitizer:  dto.NewSanitizer(),
		opts:       opts,
		logger:     logger.With().Str("component", "workspace_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/codecraft-workspace/internal/service/workspace"),
		now:        time.Now,
	}
}

func (s *workspaceService) Open(ctx context.Context, session Session, req dto.OpenWorkspaceRequest) (dto.WorkspaceSnapshot, error) {
	req.ProblemID = strings.TrimSpace(req.ProblemID)
	req.Language = strings.TrimSpace(req.Language)
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	lang := s.opts.DefaultLanguage
	if req.Language != "" {
		lang = models.Language(req.Language)
	}

	client := s.clients(session.Token)
	assistant := s.assistant
	if assistant == nil {
		assistant = client
	}

	id := uuid.NewString()
	ctrl, err := workspace.NewController(workspace.Dependencies{
		Problems:  NewProblemCache(client, s.cache, CacheScope(session.Token), s.opts.ProblemCacheTTL, s.logger),
		Judge:     client,
		Assistant: assistant,
	}, workspace.Config{
		DefaultLanguage: lang,
		LanguagePolicy:  s.opts.LanguagePolicy,
		History:         s.opts.History,
		Logger:          s.logger.With().Str("workspace_id", id).Logger(),
	})
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	hosted := &hostedWorkspace{id: id, owner: session.UserID, ctrl: ctrl}
	s.mu.Lock()
	s.workspaces[id] = hosted
	s.mu.Unlock()
	observability.SessionsActive().Inc()

	s.publish(ctx, hosted, EventWorkspaceOpened, nil)
	logger := observability.RequestLogger(ctx, s.logger)
	logger.Info().Str("workspace_id", id).Str("problem_id", req.ProblemID).Msg("workspace opened")

	return s.load(ctx, hosted, req.ProblemID)
}

func (s *workspaceService) Get(session Session, id string) (dto.WorkspaceSnapshot, error) {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.snapshot(hosted), nil
}

func (s *workspaceService) LoadProblem(ctx context.Context, session Session, id string, req dto.LoadProblemRequest) (dto.WorkspaceSnapshot, error) {
	req.ProblemID = strings.TrimSpace(req.ProblemID)
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.load(ctx, hosted, req.ProblemID)
}

func (s *workspaceService) load(ctx context.Context, hosted *hostedWorkspace, problemID string) (dto.WorkspaceSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.load", trace.WithAttributes(
		attribute.String("workspace.id", hosted.id),
		attribute.String("problem.id", problemID),
	))
	defer span.End()

	err := hosted.ctrl.Load(ctx, problemID)
	var loadErr *workspace.Error
	switch {
	case err == nil:
		s.publish(ctx, hosted, EventProblemLoaded, map[string]interface{}{"problem_id": problemID})
	case errors.As(err, &loadErr):
		span.RecordError(err)
	default:
		return dto.WorkspaceSnapshot{}, err
	}

	return s.snapshot(hosted), nil
}

func (s *workspaceService) SelectLanguage(session Session, id string, req dto.SelectLanguageRequest) (dto.WorkspaceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.apply(session, id, func(ctrl *workspace.Controller) error {
		return ctrl.SelectLanguage(models.Language(req.Language))
	})
}

func (s *workspaceService) EditCode(session Session, id string, req dto.EditCodeRequest) (dto.WorkspaceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.apply(session, id, func(ctrl *workspace.Controller) error {
		return ctrl.EditCode(req.Code)
	})
}

func (s *workspaceService) SelectTabs(session Session, id string, req dto.SelectTabsRequest) (dto.WorkspaceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.apply(session, id, func(ctrl *workspace.Controller) error {
		if req.Left != "" {
			if err := ctrl.SelectLeftTab(workspace.LeftTab(req.Left)); err != nil {
				return err
			}
		}
		if req.Right != "" {
			return ctrl.SelectRightTab(workspace.RightTab(req.Right))
		}
		return nil
	})
}

func (s *workspaceService) Run(ctx context.Context, session Session, id string) (dto.WorkspaceSnapshot, error) {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	ctx, span := s.tracer.Start(ctx, "workspace.run", trace.WithAttributes(attribute.String("workspace.id", id)))
	defer span.End()

	if err := hosted.ctrl.Run(ctx); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	snapshot := s.snapshot(hosted)
	s.publish(ctx, hosted, EventRunCompleted, map[string]interface{}{
		"language": snapshot.Language,
		"success":  snapshot.RunResult.Success,
	})
	return snapshot, nil
}

func (s *workspaceService) Submit(ctx context.Context, session Session, id string) (dto.WorkspaceSnapshot, error) {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	ctx, span := s.tracer.Start(ctx, "workspace.submit", trace.WithAttributes(attribute.String("workspace.id", id)))
	defer span.End()

	if err := hosted.ctrl.Submit(ctx); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	snapshot := s.snapshot(hosted)
	s.publish(ctx, hosted, EventSubmitCompleted, map[string]interface{}{
		"language": snapshot.Language,
		"accepted": snapshot.SubmitResult.Accepted,
		"passed":   snapshot.SubmitResult.Passed,
		"total":    snapshot.SubmitResult.Total,
	})
	return snapshot, nil
}

func (s *workspaceService) EditChatDraft(session Session, id string, req dto.ChatDraftRequest) (dto.WorkspaceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.apply(session, id, func(ctrl *workspace.Controller) error {
		return ctrl.EditChatDraft(req.Text)
	})
}

func (s *workspaceService) SendMessage(ctx context.Context, session Session, id string, req dto.ChatSendRequest) (dto.WorkspaceSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	ctx, span := s.tracer.Start(ctx, "workspace.chat", trace.WithAttributes(attribute.String("workspace.id", id)))
	defer span.End()

	if err := hosted.ctrl.SendMessage(ctx, req.Message); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}

	snapshot := s.snapshot(hosted)
	s.publish(ctx, hosted, EventChatTurn, map[string]interface{}{"messages": len(snapshot.Chat.Messages)})
	return snapshot, nil
}

func (s *workspaceService) Close(ctx context.Context, session Session, id string) error {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return err
	}
	s.close(ctx, hosted, "requested")
	return nil
}

func (s *workspaceService) Subscribe(session Session, id string, fn func(dto.WorkspaceSnapshot)) (func(), error) {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return nil, err
	}

	cancel := hosted.ctrl.Subscribe(func(state workspace.State) {
		fn(dto.NewWorkspaceSnapshot(hosted.id, state, s.sanitizer))
	})
	return cancel, nil
}

// Active returns the number of open workspaces.
func (s *workspaceService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// Start runs the idle sweeper until ctx is cancelled.
func (s *workspaceService) Start(ctx context.Context) {
	interval := s.opts.IdleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if closed := s.sweep(ctx); closed > 0 {
					s.logger.Info().Int("closed", closed).Msg("closed idle workspaces")
				}
			}
		}
	}()
}

func (s *workspaceService) sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.opts.IdleTTL)

	s.mu.RLock()
	idle := make([]*hostedWorkspace, 0)
	for _, hosted := range s.workspaces {
		if hosted.ctrl.LastActivity().Before(cutoff) {
			idle = append(idle, hosted)
		}
	}
	s.mu.RUnlock()

	for _, hosted := range idle {
		s.close(ctx, hosted, "idle")
	}
	return len(idle)
}

func (s *workspaceService) close(ctx context.Context, hosted *hostedWorkspace, reason string) {
	s.mu.Lock()
	_, ok := s.workspaces[hosted.id]
	delete(s.workspaces, hosted.id)
	s.mu.Unlock()
	if !ok {
		return
	}

	hosted.ctrl.Close()
	observability.SessionsActive().Dec()
	s.publish(ctx, hosted, EventWorkspaceClosed, map[string]interface{}{"reason": reason})
	logger := observability.RequestLogger(ctx, s.logger)
	logger.Info().Str("workspace_id", hosted.id).Str("reason", reason).Msg("workspace closed")
}

func (s *workspaceService) apply(session Session, id string, fn func(*workspace.Controller) error) (dto.WorkspaceSnapshot, error) {
	hosted, err := s.lookup(session, id)
	if err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	if err := fn(hosted.ctrl); err != nil {
		return dto.WorkspaceSnapshot{}, err
	}
	return s.snapshot(hosted), nil
}

func (s *workspaceService) lookup(session Session, id string) (*hostedWorkspace, error) {
	s.mu.RLock()
	hosted, ok := s.workspaces[strings.TrimSpace(id)]
	s.mu.RUnlock()
	if !ok || hosted.owner != session.UserID {
		return nil, ErrWorkspaceNotFound
	}
	return hosted, nil
}

func (s *workspaceService) snapshot(hosted *hostedWorkspace) dto.WorkspaceSnapshot {
	return dto.NewWorkspaceSnapshot(hosted.id, hosted.ctrl.Snapshot(), s.sanitizer)
}

func (s *workspaceService) publish(ctx context.Context, hosted *hostedWorkspace, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, WorkspaceEvent{
		Type:          eventType,
		WorkspaceID:   hosted.id,
		ProblemID:     hosted.ctrl.Snapshot().ProblemID,
		UserID:        hosted.owner,
		CorrelationID: observability.CorrelationID(ctx),
		Data:          data,
	})
}
