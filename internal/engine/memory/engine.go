package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/indexer"
)

// Engine is an in-memory implementation of the SearchEngine interface with
// substring text matching, facet filtering and facet counts. Used in tests
// and local development. Thread-safe via sync.RWMutex.
type Engine struct {
	mu     sync.RWMutex
	docs   map[string]domain.ProductDocument
	schema *indexer.Schema
}

// New creates a new in-memory search engine for the given schema.
func New(schema *indexer.Schema) *Engine {
	return &Engine{
		docs:   make(map[string]domain.ProductDocument),
		schema: schema,
	}
}

// Index adds or replaces a single document.
func (e *Engine) Index(_ context.Context, doc domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID()] = doc
	return nil
}

// BulkIndex adds or replaces multiple documents.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, doc := range docs {
		e.docs[doc.ID()] = doc
	}
	return nil
}

// Delete removes a document by product id.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// Search executes a faceted query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	queryLower := strings.ToLower(query.Query)

	matched := make([]domain.ProductDocument, 0)
	for _, doc := range e.docs {
		if !e.matches(doc, query, queryLower) {
			continue
		}
		matched = append(matched, doc)
	}

	e.sortDocs(matched, query.SortBy)

	facetCounts := e.countFacets(matched)
	total := len(matched)

	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Documents:   matched[offset:end],
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		FacetCounts: facetCounts,
		TookMs:      time.Since(start).Milliseconds(),
	}, nil
}

// matches checks the text query and every facet filter against one document.
func (e *Engine) matches(doc domain.ProductDocument, query *domain.SearchQuery, queryLower string) bool {
	if queryLower != "" {
		text, _ := doc.GetString(domain.FieldText)
		if !strings.Contains(strings.ToLower(text), queryLower) {
			return false
		}
	}

	for field, want := range query.Facets {
		if want == "" {
			continue
		}
		if !facetValueMatches(doc[field], want) {
			return false
		}
	}

	return true
}

// facetValueMatches compares a stored facet value against the filter value.
// Multi-valued facets match when any element equals the filter.
func facetValueMatches(value any, want string) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v == want
	case []string:
		for _, item := range v {
			if item == want {
				return true
			}
		}
		return false
	default:
		return facetString(v) == want
	}
}

// countFacets computes per-facet value counts over the full match set.
func (e *Engine) countFacets(docs []domain.ProductDocument) map[string]map[string]int {
	counts := make(map[string]map[string]int)

	count := func(field, value string) {
		if counts[field] == nil {
			counts[field] = make(map[string]int)
		}
		counts[field][value]++
	}

	for _, doc := range docs {
		for _, field := range e.schema.FacetFields() {
			switch v := doc[field].(type) {
			case nil:
			case []string:
				for _, item := range v {
					count(field, item)
				}
			default:
				count(field, facetString(v))
			}
		}
	}

	return counts
}

func facetString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (e *Engine) sortDocs(docs []domain.ProductDocument, sortBy string) {
	switch sortBy {
	case domain.SortTitleAsc:
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i].GetString(domain.FieldTitleExact)
			b, _ := docs[j].GetString(domain.FieldTitleExact)
			return a < b
		})
	case domain.SortTitleDesc:
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i].GetString(domain.FieldTitleExact)
			b, _ := docs[j].GetString(domain.FieldTitleExact)
			return a > b
		})
	case domain.SortPriceAsc:
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i].GetFloat(domain.FieldPrice)
			b, _ := docs[j].GetFloat(domain.FieldPrice)
			return a < b
		})
	case domain.SortPriceDesc:
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i].GetFloat(domain.FieldPrice)
			b, _ := docs[j].GetFloat(domain.FieldPrice)
			return a > b
		})
	case domain.SortNewest:
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := docs[i][domain.FieldDateUpdated].(time.Time)
			b, _ := docs[j][domain.FieldDateUpdated].(time.Time)
			return a.After(b)
		})
	default:
		// Relevance is meaningless for substring matching; fall back to a
		// stable id order so pagination is deterministic.
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].ID() < docs[j].ID()
		})
	}
}
