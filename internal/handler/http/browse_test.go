package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CatalogueGo/internal/catalogue"
	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/engine/memory"
	"github.com/utafrali/CatalogueGo/internal/indexer"
	"github.com/utafrali/CatalogueGo/internal/service"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
	"github.com/utafrali/CatalogueGo/pkg/httputil"
)

const shoesID = "7b0f54c6-9a1e-4c57-b43f-6a3f4d2e8c11"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCategoryStore struct {
	byID   map[string]*domain.Category
	bySlug map[string][]domain.Category
}

func (s *fakeCategoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound("category", id)
	}
	return c, nil
}

func (s *fakeCategoryStore) FindBySlug(_ context.Context, slug string) ([]domain.Category, error) {
	return s.bySlug[slug], nil
}

func shoesCategory() *domain.Category {
	return &domain.Category{
		ID:       shoesID,
		Name:     "Shoes",
		Slug:     "shoes",
		FullName: "Clothing > Shoes",
		FullSlug: "clothing/shoes",
	}
}

func newBrowseRouter(t *testing.T) http.Handler {
	t.Helper()

	shoes := shoesCategory()
	store := &fakeCategoryStore{
		byID:   map[string]*domain.Category{shoes.ID: shoes},
		bySlug: map[string][]domain.Category{"shoes": {*shoes}},
	}
	resolver := catalogue.NewResolver(store, newTestLogger())

	eng := memory.New(indexer.NewSchema(nil))
	require.NoError(t, eng.Index(context.Background(), domain.ProductDocument{
		domain.FieldID:       "p1",
		domain.FieldTitle:    "Trail Shoe",
		domain.FieldText:     "Trail Shoe",
		domain.FieldCategory: []string{"Clothing > Shoes"},
	}))

	searchService := service.NewSearchService(eng, newTestLogger())
	browseService := service.NewBrowseService(searchService, newTestLogger())
	h := NewBrowseHandler(resolver, browseService, newTestLogger())

	r := chi.NewRouter()
	r.Get("/catalogue/category/*", h.Browse)
	return r
}

func TestBrowse_CanonicalURL(t *testing.T) {
	router := newBrowseRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/catalogue/category/clothing/shoes/"+shoesID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data BrowseResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, shoesID, resp.Data.Category.ID)
	require.Equal(t, 1, resp.Data.Results.Total)
}

func TestBrowse_StaleSlugRedirectsPermanently(t *testing.T) {
	router := newBrowseRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/catalogue/category/old-clothing/shoes/"+shoesID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/catalogue/category/clothing/shoes/"+shoesID, w.Header().Get("Location"))
}

func TestBrowse_LegacySlugChainRedirectsToCanonical(t *testing.T) {
	router := newBrowseRouter(t)

	// The id-less legacy URL resolves but is not canonical.
	req := httptest.NewRequest(http.MethodGet, "/catalogue/category/clothing/shoes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/catalogue/category/clothing/shoes/"+shoesID, w.Header().Get("Location"))
}

func TestBrowse_UnknownCategory(t *testing.T) {
	router := newBrowseRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/catalogue/category/no/such/category", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp httputil.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestBrowse_UnknownID(t *testing.T) {
	router := newBrowseRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/catalogue/category/clothing/shoes/00000000-0000-0000-0000-000000000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowse_PageBeyondResultsRedirects(t *testing.T) {
	router := newBrowseRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/catalogue/category/clothing/shoes/"+shoesID+"?page=99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/catalogue/category/clothing/shoes/"+shoesID, w.Header().Get("Location"))
}

func TestParseBrowsePath(t *testing.T) {
	tests := []struct {
		name      string
		remainder string
		want      catalogue.ResolveParams
		ok        bool
	}{
		{
			name:      "slug chain with trailing id",
			remainder: "clothing/shoes/" + shoesID,
			want:      catalogue.ResolveParams{ID: shoesID},
			ok:        true,
		},
		{
			name:      "bare id",
			remainder: shoesID,
			want:      catalogue.ResolveParams{ID: shoesID},
			ok:        true,
		},
		{
			name:      "legacy slug chain",
			remainder: "clothing/shoes",
			want:      catalogue.ResolveParams{SlugChain: "clothing/shoes"},
			ok:        true,
		},
		{
			name:      "trailing slash stripped",
			remainder: "clothing/shoes/",
			want:      catalogue.ResolveParams{SlugChain: "clothing/shoes"},
			ok:        true,
		},
		{
			name:      "empty path",
			remainder: "",
			ok:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBrowsePath(tt.remainder)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
