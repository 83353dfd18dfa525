package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func sampleProblem(id string) models.Problem {
	return models.Problem{
		ID:          id,
		Title:       "Sum of Two",
		Description: "Add two integers.",
		Difficulty:  models.DifficultyEasy,
		Tag:         models.TagArray,
		VisibleTestCases: []models.VisibleTestCase{
			{Input: "2 3", Output: "5"},
		},
		StarterCode: []models.StarterCode{
			{Language: models.LanguageJavaScript, Code: "function f(){}"},
			{Language: models.LanguageJava, Code: "class S{}"},
			{Language: models.LanguageCPP, Code: "int main(){}"},
		},
	}
}

type stubPlatform struct {
	mu           sync.Mutex
	problems     map[string]models.Problem
	summaries    []models.ProblemSummary
	solved       []string
	run          models.RunResult
	submit       models.SubmitResult
	reply        string
	problemCalls int
	listCalls    int
	tokens       []string
	requireAuth  bool
}

func (s *stubPlatform) factory() PlatformFactory {
	return func(token string) Platform {
		s.mu.Lock()
		s.tokens = append(s.tokens, token)
		s.mu.Unlock()
		return &sessionStub{stub: s, token: token}
	}
}

type sessionStub struct {
	stub  *stubPlatform
	token string
}

func (c *sessionStub) ProblemByID(ctx context.Context, id string) (models.Problem, error) {
	c.stub.mu.Lock()
	defer c.stub.mu.Unlock()
	c.stub.problemCalls++
	if c.stub.requireAuth && c.token == "" {
		return models.Problem{}, platform.ErrUnauthorized
	}
	problem, ok := c.stub.problems[id]
	if !ok {
		return models.Problem{}, platform.ErrNotFound
	}
	return problem, nil
}

func (c *sessionStub) Run(ctx context.Context, problemID string, lang models.Language, code string) (models.RunResult, error) {
	return c.stub.run, nil
}

func (c *sessionStub) Submit(ctx context.Context, problemID string, lang models.Language, code string) (models.SubmitResult, error) {
	return c.stub.submit, nil
}

func (c *sessionStub) Reply(ctx context.Context, turn models.ChatTurn, problem models.ChatContext) (string, error) {
	return c.stub.reply, nil
}

func (c *sessionStub) ListProblems(ctx context.Context) ([]models.ProblemSummary, error) {
	c.stub.mu.Lock()
	defer c.stub.mu.Unlock()
	c.stub.listCalls++
	return c.stub.summaries, nil
}

func (c *sessionStub) SolvedProblemIDs(ctx context.Context) ([]string, error) {
	if c.token == "" {
		return nil, platform.ErrUnauthorized
	}
	return c.stub.solved, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []WorkspaceEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event WorkspaceEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}
