package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/utafrali/CatalogueGo/internal/catalogue"
	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/service"
	"github.com/utafrali/CatalogueGo/pkg/httputil"
)

// BrowseHandler handles category browse pages.
type BrowseHandler struct {
	resolver *catalogue.Resolver
	browse   *service.BrowseService
	logger   *slog.Logger
}

// NewBrowseHandler creates a new browse HTTP handler.
func NewBrowseHandler(resolver *catalogue.Resolver, browse *service.BrowseService, logger *slog.Logger) *BrowseHandler {
	return &BrowseHandler{
		resolver: resolver,
		browse:   browse,
		logger:   logger,
	}
}

// BrowseResponse is the JSON body of a browse page.
type BrowseResponse struct {
	Category *domain.Category     `json:"category"`
	Results  *domain.SearchResult `json:"results"`
}

// Browse handles GET /catalogue/category/*
//
// The canonical form is /catalogue/category/{full-slug}/{id}; the id segment
// alone identifies the category. Legacy URLs carry only the slug chain. Any
// non-canonical path that resolves is answered with a permanent redirect to
// the canonical URL before the result query runs.
func (h *BrowseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	params, ok := parseBrowsePath(chi.URLParam(r, "*"))
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "category not found"},
		})
		return
	}

	category, err := h.resolver.Resolve(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if target, redirect := h.resolver.Canonicalize(r.URL.Path, category); redirect {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	query := searchQueryFromRequest(r, nil)
	result, err := h.browse.Browse(r.Context(), category, query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPage) {
			// An out-of-range page gets sent back to the category's first
			// page instead of an error.
			http.Redirect(w, r, category.AbsoluteURL(), http.StatusSeeOther)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: BrowseResponse{Category: category, Results: result},
	})
}

// parseBrowsePath splits the wildcard remainder of a browse URL into resolve
// parameters. A trailing segment that parses as a UUID is the category id;
// otherwise the whole remainder is treated as a legacy slug chain.
func parseBrowsePath(remainder string) (catalogue.ResolveParams, bool) {
	remainder = strings.Trim(remainder, "/")
	if remainder == "" {
		return catalogue.ResolveParams{}, false
	}

	segments := strings.Split(remainder, "/")
	last := segments[len(segments)-1]
	if _, err := uuid.Parse(last); err == nil {
		return catalogue.ResolveParams{ID: last}, true
	}

	return catalogue.ResolveParams{SlugChain: remainder}, true
}
