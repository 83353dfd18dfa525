package service

import (
	"context"

	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

// Platform is the subset of the remote platform used by the services.
type Platform interface {
	workspace.ProblemSource
	workspace.Judge
	workspace.Assistant
	ListProblems(ctx context.Context) ([]models.ProblemSummary, error)
	SolvedProblemIDs(ctx context.Context) ([]string, error)
}

// PlatformFactory returns a platform client acting on behalf of the owner of token.
// An empty token yields an anonymous client.
type PlatformFactory func(token string) Platform

// NewPlatformFactory binds session tokens to copies of client.
func NewPlatformFactory(client *platform.Client) PlatformFactory {
	return func(token string) Platform {
		if token == "" {
			return client
		}
		return client.WithSession(token)
	}
}

// Session identifies the caller of a service operation.
type Session struct {
	UserID string
	Token  string
}
