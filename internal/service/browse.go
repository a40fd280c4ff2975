package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/CatalogueGo/internal/domain"
)

// ErrInvalidPage is returned when a browse request asks for a page beyond the
// last page of results. Handlers turn it into a redirect to the category's
// canonical URL rather than an error page.
var ErrInvalidPage = errors.New("page out of range")

// BrowseService serves category browse pages: search results restricted to a
// resolved category.
type BrowseService struct {
	search *SearchService
	logger *slog.Logger
}

// NewBrowseService creates a new browse service.
func NewBrowseService(search *SearchService, logger *slog.Logger) *BrowseService {
	return &BrowseService{
		search: search,
		logger: logger,
	}
}

// Browse runs the category-filtered search for a browse page. The category
// must already be resolved and canonicalized; Browse only executes the query.
func (s *BrowseService) Browse(ctx context.Context, category *domain.Category, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if query.Facets == nil {
		query.Facets = make(map[string]string)
	}
	// Documents carry categories by full name.
	query.Facets[domain.FieldCategory] = category.FullName

	result, err := s.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if result.Page > 1 && len(result.Documents) == 0 {
		return nil, ErrInvalidPage
	}

	s.logger.DebugContext(ctx, "category browsed",
		slog.String("category_id", category.ID),
		slog.String("category", category.FullName),
		slog.Int("total", result.Total),
	)

	return result, nil
}
