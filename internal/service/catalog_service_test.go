package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/models"
)

func catalogStub() *stubPlatform {
	return &stubPlatform{
		summaries: []models.ProblemSummary{
			{ID: "p1", Title: "Two Sum", Difficulty: models.DifficultyEasy, Tag: models.TagArray},
			{ID: "p2", Title: "Reverse List", Difficulty: models.DifficultyMedium, Tag: models.TagLinkedList},
			{ID: "p3", Title: "Shortest Path", Difficulty: models.DifficultyHard, Tag: models.TagGraph},
		},
		solved: []string{"p2"},
	}
}

func TestCatalogServiceFilters(t *testing.T) {
	stub := catalogStub()
	svc := NewCatalogService(stub.factory(), nil, time.Minute, testValidator(), testLogger())
	ctx := context.Background()

	resp, err := svc.List(ctx, Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	require.Zero(t, resp.SolvedCount)
	require.False(t, resp.CacheHit)

	resp, err = svc.List(ctx, Session{}, dto.ProblemCatalogFilter{Difficulty: "hard", Tag: "all"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "p3", resp.Items[0].ID)
	require.Equal(t, "Hard", resp.Items[0].DifficultyLabel)

	resp, err = svc.List(ctx, Session{}, dto.ProblemCatalogFilter{Tag: "linkedList"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "LinkedList", resp.Items[0].TagLabel)

	_, err = svc.List(ctx, Session{}, dto.ProblemCatalogFilter{Difficulty: "extreme"})
	require.Error(t, err)
}

func TestCatalogServiceSolvedProblems(t *testing.T) {
	stub := catalogStub()
	svc := NewCatalogService(stub.factory(), nil, time.Minute, testValidator(), testLogger())

	resp, err := svc.List(context.Background(), Session{UserID: "u1", Token: "jwt"}, dto.ProblemCatalogFilter{Status: "Solved"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SolvedCount)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "p2", resp.Items[0].ID)
	require.True(t, resp.Items[0].Solved)

	resp, err = svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{Status: "solved"})
	require.NoError(t, err)
	require.Empty(t, resp.Items)
}

func TestCatalogServiceUsesCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	stub := catalogStub()
	svc := NewCatalogService(stub.factory(), redisClient, time.Minute, testValidator(), testLogger())

	first, err := svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Items, second.Items)
	require.Equal(t, 1, stub.listCalls)

	server.FastForward(2 * time.Minute)

	third, err := svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, 2, stub.listCalls)
}

func TestCatalogServiceLogsCacheFailures(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer redisClient.Close()

	var logs bytes.Buffer
	stub := catalogStub()
	svc := NewCatalogService(stub.factory(), redisClient, time.Minute, testValidator(), zerolog.New(&logs))

	require.NoError(t, server.Set(catalogCacheKey, "{not json"))
	first, err := svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 3)
	require.Contains(t, logs.String(), "discarding undecodable cached catalog")

	server.Close()
	second, err := svc.List(context.Background(), Session{}, dto.ProblemCatalogFilter{})
	require.NoError(t, err)
	require.False(t, second.CacheHit)
	require.Len(t, second.Items, 3)
	require.Equal(t, 2, stub.listCalls)
	require.Contains(t, logs.String(), "failed to read catalog cache")
	require.Contains(t, logs.String(), `"level":"warn"`)
}
