package engine

import (
	"context"

	"github.com/utafrali/CatalogueGo/internal/domain"
)

// SearchEngine indexes and queries product documents. Indexing a document
// whose id is already present fully replaces the prior document; there is no
// partial update.
type SearchEngine interface {
	// Index adds or replaces a single document.
	Index(ctx context.Context, doc domain.ProductDocument) error

	// BulkIndex adds or replaces multiple documents.
	BulkIndex(ctx context.Context, docs []domain.ProductDocument) error

	// Delete removes a document by product id. Deleting an unknown id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Search executes a faceted query and returns matching documents.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)
}
