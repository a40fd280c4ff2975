package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/indexer"
)

// Engine is an Elasticsearch-backed implementation of the SearchEngine
// interface. Documents are keyed by product id, so re-indexing a product
// replaces its prior document wholesale.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	schema    *indexer.Schema
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      any `json:"key"`
			DocCount int `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a new Elasticsearch engine connected to the given URL. The
// index is created from the schema when missing. If indexName is empty,
// DefaultIndexName is used.
func New(esURL, indexName string, schema *indexer.Schema, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	e := &Engine{
		client:    client,
		indexName: indexName,
		schema:    schema,
		logger:    logger,
	}

	if err := e.ensureIndex(); err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to ensure index: %w", err)
	}

	return e, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// ensureIndex checks whether the documents index exists and creates it if not.
func (e *Engine) ensureIndex() error {
	res, err := e.client.Indices.Exists([]string{e.indexName})
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}

	mapping, err := buildIndexMapping(e.schema)
	if err != nil {
		return fmt.Errorf("build index mapping: %w", err)
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("create index: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("create index: unexpected status %s", res.Status())
	}

	e.logger.Info("elasticsearch index created",
		"index", e.indexName,
		"dynamic_facets", e.schema.DynamicFacetFields(),
	)
	return nil
}

// Index adds or replaces a single document.
func (e *Engine) Index(ctx context.Context, doc domain.ProductDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID()),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch index: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch index: unexpected status %s", res.Status())
	}

	e.logger.Debug("indexed document", "id", doc.ID())
	return nil
}

// BulkIndex adds or replaces multiple documents via the bulk API.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": e.indexName, "_id": doc.ID()},
		})
		if err != nil {
			return fmt.Errorf("elasticsearch bulk: marshal action: %w", err)
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("elasticsearch bulk: marshal document: %w", err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithContext(ctx),
		e.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk: unexpected status %s", res.Status())
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}

	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			if item.Index.Status >= 300 {
				return fmt.Errorf("elasticsearch bulk: document %s failed: %s — %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
		return fmt.Errorf("elasticsearch bulk: partial failure")
	}

	e.logger.Debug("bulk indexed documents", "count", len(docs))
	return nil
}

// Delete removes a document by product id. 404 is ignored.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(
		e.indexName,
		id,
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch delete: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch delete: unexpected status %s", res.Status())
	}

	e.logger.Debug("deleted document", "id", id)
	return nil
}

// Search executes a faceted query and returns matching documents with
// per-facet value counts.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	esQuery := e.buildSearchQuery(query, page, perPage)

	data, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return nil, fmt.Errorf("elasticsearch search: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch search: unexpected status %s", res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	docs := make([]domain.ProductDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, hit.Source)
	}

	facetCounts := make(map[string]map[string]int, len(esResp.Aggregations))
	for field, agg := range esResp.Aggregations {
		counts := make(map[string]int, len(agg.Buckets))
		for _, bucket := range agg.Buckets {
			counts[fmt.Sprintf("%v", bucket.Key)] = bucket.DocCount
		}
		facetCounts[field] = counts
	}

	return &domain.SearchResult{
		Documents:   docs,
		Total:       esResp.Hits.Total.Value,
		Page:        page,
		PerPage:     perPage,
		FacetCounts: facetCounts,
		TookMs:      int64(esResp.Took),
	}, nil
}

// buildSearchQuery constructs the Elasticsearch query DSL as a map.
func (e *Engine) buildSearchQuery(query *domain.SearchQuery, page, perPage int) map[string]any {
	var mustClause any
	if query.Query != "" {
		mustClause = map[string]any{
			"multi_match": map[string]any{
				"query":  query.Query,
				"fields": []string{domain.FieldTitle + "^3", domain.FieldText},
				"type":   "best_fields",
			},
		}
	} else {
		mustClause = map[string]any{
			"match_all": map[string]any{},
		}
	}

	boolQuery := map[string]any{
		"must": []any{mustClause},
	}
	if filters := e.buildFilters(query); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	esQuery := map[string]any{
		"query": map[string]any{
			"bool": boolQuery,
		},
		"from":             (page - 1) * perPage,
		"size":             perPage,
		"track_total_hits": true,
		"aggs":             e.buildAggregations(),
	}

	if sortClause := e.buildSort(query.SortBy); sortClause != nil {
		esQuery["sort"] = sortClause
	}

	return esQuery
}

// buildFilters constructs a term filter per requested facet.
func (e *Engine) buildFilters(query *domain.SearchQuery) []any {
	filters := make([]any, 0, len(query.Facets))
	for field, value := range query.Facets {
		if value == "" {
			continue
		}
		filters = append(filters, map[string]any{
			"term": map[string]any{field: value},
		})
	}
	return filters
}

// buildAggregations requests a terms aggregation per keyword facet field.
func (e *Engine) buildAggregations() map[string]any {
	aggs := make(map[string]any)
	for _, field := range []string{domain.FieldProductClass, domain.FieldCategory, domain.FieldPriceRange} {
		aggs[field] = map[string]any{
			"terms": map[string]any{"field": field, "size": 50},
		}
	}
	for _, field := range e.schema.DynamicFacetFields() {
		aggs[field] = map[string]any{
			"terms": map[string]any{"field": field, "size": 50},
		}
	}
	return aggs
}

// buildSort constructs the sort clause; relevance uses the default scoring.
func (e *Engine) buildSort(sortBy string) []any {
	switch sortBy {
	case domain.SortTitleAsc:
		return []any{map[string]any{domain.FieldTitleExact: "asc"}}
	case domain.SortTitleDesc:
		return []any{map[string]any{domain.FieldTitleExact: "desc"}}
	case domain.SortPriceAsc:
		return []any{map[string]any{domain.FieldPrice: "asc"}}
	case domain.SortPriceDesc:
		return []any{map[string]any{domain.FieldPrice: "desc"}}
	case domain.SortNewest:
		return []any{map[string]any{domain.FieldDateUpdated: "desc"}}
	default:
		return nil
	}
}
