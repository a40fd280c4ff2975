package elasticsearch

import (
	"encoding/json"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/indexer"
)

// DefaultIndexName is the default Elasticsearch index for product documents.
const DefaultIndexName = "catalogue_products"

// buildIndexMapping renders the index settings and mappings for the given
// document schema. The title field is edge-ngram analyzed for as-you-type
// matching, which is why the separate keyword-typed title_s field exists for
// sorting. Dynamic facet fields (one keyword field per attribute option
// group) are fixed here, at schema-build time — not per document.
func buildIndexMapping(schema *indexer.Schema) (string, error) {
	properties := map[string]any{
		domain.FieldID: map[string]any{"type": "keyword"},
		domain.FieldText: map[string]any{
			"type":            "text",
			"analyzer":        "edge_ngram_analyzer",
			"search_analyzer": "edge_ngram_search",
		},
		domain.FieldUPC: map[string]any{"type": "keyword"},
		domain.FieldTitle: map[string]any{
			"type":            "text",
			"analyzer":        "edge_ngram_analyzer",
			"search_analyzer": "edge_ngram_search",
		},
		domain.FieldTitleExact:   map[string]any{"type": "keyword", "ignore_above": 256},
		domain.FieldProductClass: map[string]any{"type": "keyword"},
		domain.FieldCategory:     map[string]any{"type": "keyword"},
		domain.FieldPrice:        map[string]any{"type": "double"},
		domain.FieldNumInStock:   map[string]any{"type": "integer"},
		domain.FieldRating:       map[string]any{"type": "integer"},
		domain.FieldPriceRange:   map[string]any{"type": "keyword"},
		domain.FieldSuggestions:  map[string]any{"type": "keyword"},
		domain.FieldDateCreated:  map[string]any{"type": "date"},
		domain.FieldDateUpdated:  map[string]any{"type": "date"},
	}

	for _, field := range schema.DynamicFacetFields() {
		properties[field] = map[string]any{"type": "keyword"}
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"edge_ngram_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
					"edge_ngram_search": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]any{
					"edge_ngram_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": properties,
		},
	}

	out, err := json.Marshal(mapping)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
