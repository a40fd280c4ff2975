package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/engine"
)

// SearchService implements the business logic for catalogue search.
type SearchService struct {
	engine engine.SearchEngine
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine: eng,
		logger: logger,
	}
}

// Search executes a search query against the search engine, normalizing
// pagination and sort defaults first.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PerPage <= 0 {
		query.PerPage = 20
	}
	if query.PerPage > 100 {
		query.PerPage = 100
	}
	if query.SortBy == "" {
		query.SortBy = domain.SortRelevance
	}

	result, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", query.Query),
		slog.Int("total", result.Total),
		slog.Int64("took_ms", result.TookMs),
	)

	return result, nil
}
