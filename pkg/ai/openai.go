package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecraft",
		Subsystem: "ai",
		Name:      "reply_duration_seconds",
		Help:      "Duration of assistant completion requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecraft",
		Subsystem: "ai",
		Name:      "reply_failures_total",
		Help:      "Number of failed assistant completion requests",
	}, []string{"model"})
)

// ErrEmptyCompletion is returned when the model answers without content.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// OpenAIConfig defines configuration options for the OpenAI assistant.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAssistant answers workspace conversations with the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a new assistant using the provided configuration.
func NewOpenAIAssistant(cfg OpenAIConfig) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/codecraft-workspace/pkg/ai/openai"),
		logger: logger.With().Str("component", "openai_assistant").Logger(),
	}, nil
}

// Reply sends the conversation, preceded by the problem context, and returns the model answer.
// The question is always the final user message, whatever history mode the workspace uses.
func (a *OpenAIAssistant) Reply(parent context.Context, turn models.ChatTurn, problem models.ChatContext) (string, error) {
	history := turn.Conversation()
	ctx, span := a.tracer.Start(parent, "openai.reply", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.Int("history.length", len(history)),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages:    buildMessages(history, problem),
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", a.fail(span, fmt.Errorf("openai reply: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", a.fail(span, ErrEmptyCompletion)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", a.fail(span, ErrEmptyCompletion)
	}

	a.logger.Debug().Int("prompt_tokens", resp.Usage.PromptTokens).Int("completion_tokens", resp.Usage.CompletionTokens).Msg("assistant replied")
	return content, nil
}

func (a *OpenAIAssistant) fail(span trace.Span, err error) error {
	aiFailures.WithLabelValues(a.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func buildMessages(history models.Transcript, problem models.ChatContext) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(problem),
	})

	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		parts := make([]string, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			parts = append(parts, part.Text)
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: strings.Join(parts, "\n")})
	}
	return messages
}
