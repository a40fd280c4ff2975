package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/indexer"
	"github.com/utafrali/CatalogueGo/internal/service"
	"github.com/utafrali/CatalogueGo/pkg/httputil"
)

// SearchHandler handles HTTP requests for catalogue search.
type SearchHandler struct {
	service *service.SearchService
	schema  *indexer.Schema
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, schema *indexer.Schema, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		schema:  schema,
		logger:  logger,
	}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy != "" && !domain.IsValidSort(sortBy) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "sort must be one of: relevance, title_asc, title_desc, price_asc, price_desc, newest",
			},
		})
		return
	}

	query := searchQueryFromRequest(r, h.schema)

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// filterableFields returns the facet fields a request may filter on. Dynamic
// facets come from the schema; numeric fields are excluded because filters
// are exact string terms.
func filterableFields(schema *indexer.Schema) []string {
	fields := []string{
		domain.FieldProductClass,
		domain.FieldCategory,
		domain.FieldPriceRange,
	}
	if schema != nil {
		fields = append(fields, schema.DynamicFacetFields()...)
	}
	return fields
}

// searchQueryFromRequest builds a search query from the request's query
// string. Invalid page and per_page values fall back to defaults rather than
// erroring.
func searchQueryFromRequest(r *http.Request, schema *indexer.Schema) *domain.SearchQuery {
	q := r.URL.Query()

	query := &domain.SearchQuery{
		Query:   strings.TrimSpace(q.Get("q")),
		SortBy:  q.Get("sort"),
		Page:    1,
		PerPage: 20,
	}

	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			query.Page = page
		}
	}
	if v := q.Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil && perPage > 0 && perPage <= 100 {
			query.PerPage = perPage
		}
	}

	for _, field := range filterableFields(schema) {
		if v := q.Get(field); v != "" {
			if query.Facets == nil {
				query.Facets = make(map[string]string)
			}
			query.Facets[field] = v
		}
	}

	return query
}
