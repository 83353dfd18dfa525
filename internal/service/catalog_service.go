package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

const catalogCacheKey = "codecraft:problems:catalog:v1"

// CatalogService lists problems with the homepage filters applied.
type CatalogService interface {
	List(ctx context.Context, session Session, filter dto.ProblemCatalogFilter) (dto.ProblemCatalogResponse, error)
}

type catalogService struct {
	clients   PlatformFactory
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCatalogService builds the catalog service.
func NewCatalogService(clients PlatformFactory, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &catalogService{
		clients:   clients,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) List(ctx context.Context, session Session, filter dto.ProblemCatalogFilter) (dto.ProblemCatalogResponse, error) {
	filter.Difficulty = strings.TrimSpace(filter.Difficulty)
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if err := s.validator.Struct(filter); err != nil {
		return dto.ProblemCatalogResponse{}, err
	}

	client := s.clients(session.Token)

	summaries, hit, err := s.summaries(ctx, client)
	if err != nil {
		return dto.ProblemCatalogResponse{}, err
	}

	solved := map[string]struct{}{}
	if session.Token != "" {
		ids, err := client.SolvedProblemIDs(ctx)
		switch {
		case err == nil:
			for _, id := range ids {
				solved[id] = struct{}{}
			}
		case errors.Is(err, platform.ErrUnauthorized):
			s.logger.Debug().Msg("session rejected while listing solved problems")
		default:
			return dto.ProblemCatalogResponse{}, err
		}
	}

	response := dto.ProblemCatalogResponse{
		Items:       make([]dto.ProblemCatalogItem, 0, len(summaries)),
		SolvedCount: len(solved),
		CacheHit:    hit,
	}
	for _, summary := range summaries {
		_, isSolved := solved[summary.ID]
		if !matchesFilter(summary, isSolved, filter) {
			continue
		}
		response.Items = append(response.Items, dto.NewProblemCatalogItem(summary, isSolved))
	}
	response.Total = len(response.Items)

	return response, nil
}

func (s *catalogService) summaries(ctx context.Context, client Platform) ([]models.ProblemSummary, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, catalogCacheKey).Result()
		switch {
		case err == nil && cached != "":
			var summaries []models.ProblemSummary
			if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
				return summaries, true, nil
			}
			s.logger.Warn().Msg("discarding undecodable cached catalog")
		case err != nil && !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Msg("failed to read catalog cache")
		}
	}

	summaries, err := client.ListProblems(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write catalog cache")
			}
		}
	}

	return summaries, false, nil
}

func matchesFilter(summary models.ProblemSummary, solved bool, filter dto.ProblemCatalogFilter) bool {
	if filter.Difficulty != "" && filter.Difficulty != "all" && string(summary.Difficulty) != filter.Difficulty {
		return false
	}
	if filter.Tag != "" && filter.Tag != "all" && string(summary.Tag) != filter.Tag {
		return false
	}
	if filter.Status == "solved" && !solved {
		return false
	}
	return true
}
