package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Workspace event types.
const (
	EventWorkspaceOpened = "workspace.opened"
	EventProblemLoaded   = "problem.loaded"
	EventRunCompleted    = "run.completed"
	EventSubmitCompleted = "submit.completed"
	EventChatTurn        = "chat.turn"
	EventWorkspaceClosed = "workspace.closed"
)

const eventRedisChannel = "codecraft:workspace:events"

// WorkspaceEvent is fanned out to other services whenever a workspace reaches a milestone.
// CorrelationID joins the event to the API request that caused it; sweeper events have none.
type WorkspaceEvent struct {
	Type          string                 `json:"type"`
	Source        string                 `json:"source"`
	WorkspaceID   string                 `json:"workspace_id"`
	ProblemID     string                 `json:"problem_id,omitempty"`
	UserID        string                 `json:"user_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// EventPublisher distributes workspace events. Publishing never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event WorkspaceEvent)
}

// MessagePublisher is satisfied by *nats.Conn.
type MessagePublisher interface {
	Publish(subject string, data []byte) error
}

type eventPublisher struct {
	nats         MessagePublisher
	natsSubject  string
	redis        *redis.Client
	redisChannel string
	nodeID       string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEventPublisher publishes events on NATS under subject.<type> and on a shared Redis pub/sub
// channel. Either transport may be nil.
func NewEventPublisher(natsConn MessagePublisher, subject string, redisClient *redis.Client, logger zerolog.Logger) EventPublisher {
	return &eventPublisher{
		nats:         natsConn,
		natsSubject:  strings.TrimSuffix(strings.TrimSpace(subject), "."),
		redis:        redisClient,
		redisChannel: eventRedisChannel,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		now:          time.Now,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event WorkspaceEvent) {
	if p.nats == nil && p.redis == nil {
		return
	}

	event.Source = p.nodeID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to marshal workspace event")
		return
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish workspace event to redis")
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject+"."+event.Type, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish workspace event to nats")
		}
	}
}
