package handler

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/middleware"
	"github.com/noah-isme/codecraft-workspace/internal/service"
)

const (
	streamSendBufferSize   = 16
	localStreamSession     = "stream_session"
	localStreamCorrelation = "stream_correlation"
)

// WorkspaceStreamHandler pushes a snapshot to websocket clients after every workspace change.
type WorkspaceStreamHandler struct {
	service      service.WorkspaceService
	logger       zerolog.Logger
	pingInterval time.Duration
}

// NewWorkspaceStreamHandler constructs the stream handler.
func NewWorkspaceStreamHandler(service service.WorkspaceService, logger zerolog.Logger) *WorkspaceStreamHandler {
	return &WorkspaceStreamHandler{
		service:      service,
		logger:       logger.With().Str("component", "workspace_stream").Logger(),
		pingInterval: 30 * time.Second,
	}
}

// Register binds the stream route under the workspace group.
func (h *WorkspaceStreamHandler) Register(router fiber.Router) {
	router.Get("/:id/stream", h.upgrade, websocket.New(h.handleConnection))
}

func (h *WorkspaceStreamHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	session := sessionFromContext(c)
	if _, err := h.service.Get(session, c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	c.Locals(localStreamSession, session)
	c.Locals(localStreamCorrelation, middleware.RequestCorrelation(c))
	return c.Next()
}

func (h *WorkspaceStreamHandler) handleConnection(conn *websocket.Conn) {
	session, _ := conn.Locals(localStreamSession).(service.Session)
	id := conn.Params("id")
	correlation, _ := conn.Locals(localStreamCorrelation).(string)
	logger := h.logger.With().Str("workspace_id", id).Str("correlation_id", correlation).Logger()

	client := &streamClient{
		conn:    conn,
		send:    make(chan dto.WorkspaceSnapshot, streamSendBufferSize),
		closed:  make(chan struct{}),
		logger:  logger,
		handler: h,
		session: session,
		id:      id,
	}

	cancel, err := h.service.Subscribe(session, id, client.push)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		_ = conn.Close()
		return
	}
	defer cancel()

	// Subscribed before the initial snapshot is read; the writer skips versions already sent.
	if snapshot, err := h.service.Get(session, id); err == nil {
		client.push(snapshot)
	}

	logger.Debug().Msg("workspace stream connected")
	written := make(chan struct{})
	go func() {
		defer close(written)
		client.writer()
	}()
	client.reader()
	// The connection is recycled once this handler returns.
	<-written
	logger.Debug().Msg("workspace stream disconnected")
}

type streamClient struct {
	conn    *websocket.Conn
	send    chan dto.WorkspaceSnapshot
	closed  chan struct{}
	once    sync.Once
	logger  zerolog.Logger
	handler *WorkspaceStreamHandler
	session service.Session
	id      string
}

// push never blocks: it runs while the workspace is locked. When the client lags, the oldest
// queued snapshot is dropped.
func (c *streamClient) push(snapshot dto.WorkspaceSnapshot) {
	select {
	case <-c.closed:
		return
	default:
	}

	select {
	case c.send <- snapshot:
		return
	default:
	}

	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- snapshot:
	default:
		c.logger.Warn().Uint64("version", snapshot.Version).Msg("dropping snapshot for slow client")
	}
}

func (c *streamClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logger.Debug().Err(err).Msg("stream read loop ended")
			return
		}
	}
}

func (c *streamClient) writer() {
	defer c.close()

	ticker := time.NewTicker(c.handler.pingInterval)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		select {
		case snapshot := <-c.send:
			if lastVersion != 0 && snapshot.Version <= lastVersion {
				continue
			}
			lastVersion = snapshot.Version
			if err := c.conn.WriteJSON(snapshot); err != nil {
				c.logger.Debug().Err(err).Msg("stream write loop terminated")
				return
			}
		case <-ticker.C:
			if _, err := c.handler.service.Get(c.session, c.id); errors.Is(err, service.ErrWorkspaceNotFound) {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "workspace closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.logger.Debug().Err(err).Msg("stream ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
