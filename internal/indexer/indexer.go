package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/engine"
)

var documentsIndexed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalogue_documents_indexed_total",
		Help: "Product documents written to the search index",
	},
	[]string{"mode"},
)

// Indexer drives indexing passes over the product catalogue: it selects the
// browsable queryset, builds one document per product and hands the batch to
// the engine. Concurrent passes over overlapping products are not serialized
// here; callers must run at most one writing pass per product, or lean on the
// engine's document-replace semantics.
type Indexer struct {
	products    domain.ProductStore
	builder     *Builder
	engine      engine.SearchEngine
	checkpoints CheckpointStore
	logger      *slog.Logger
}

// New creates an indexing driver.
func New(
	products domain.ProductStore,
	builder *Builder,
	eng engine.SearchEngine,
	checkpoints CheckpointStore,
	logger *slog.Logger,
) *Indexer {
	return &Indexer{
		products:    products,
		builder:     builder,
		engine:      eng,
		checkpoints: checkpoints,
		logger:      logger,
	}
}

// RebuildAll rebuilds the document of every browsable product and advances
// the checkpoint. Returns the number of documents written.
func (ix *Indexer) RebuildAll(ctx context.Context) (int, error) {
	return ix.rebuild(ctx, nil, "full")
}

// RebuildChanged rebuilds only the documents of products updated since the
// last successful pass. Without a checkpoint it falls back to a full rebuild.
func (ix *Indexer) RebuildChanged(ctx context.Context) (int, error) {
	since, ok, err := ix.checkpoints.LastRun(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		ix.logger.InfoContext(ctx, "no index checkpoint, running full rebuild")
		return ix.rebuild(ctx, nil, "full")
	}
	return ix.rebuild(ctx, &since, "incremental")
}

func (ix *Indexer) rebuild(ctx context.Context, since *time.Time, mode string) (int, error) {
	// The checkpoint is taken before the listing so updates racing with this
	// pass are re-selected by the next incremental run.
	start := time.Now().UTC()

	products, err := ix.products.ListBrowsable(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list browsable products: %w", err)
	}

	docs := make([]domain.ProductDocument, 0, len(products))
	for i := range products {
		docs = append(docs, ix.builder.Build(ctx, &products[i]))
	}

	if len(docs) > 0 {
		if err := ix.engine.BulkIndex(ctx, docs); err != nil {
			return 0, fmt.Errorf("bulk index: %w", err)
		}
	}

	if err := ix.checkpoints.SetLastRun(ctx, start); err != nil {
		return len(docs), err
	}

	documentsIndexed.WithLabelValues(mode).Add(float64(len(docs)))
	ix.logger.InfoContext(ctx, "indexing pass complete",
		slog.String("mode", mode),
		slog.Int("documents", len(docs)),
		slog.Duration("took", time.Since(start)),
	)

	return len(docs), nil
}

// RebuildProduct rebuilds the document of a single product, removing it from
// the index instead when it is no longer browsable.
func (ix *Indexer) RebuildProduct(ctx context.Context, id string) error {
	p, err := ix.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !p.IsBrowsable() {
		return ix.Remove(ctx, id)
	}

	doc := ix.builder.Build(ctx, p)
	if err := ix.engine.Index(ctx, doc); err != nil {
		return fmt.Errorf("index product %s: %w", id, err)
	}

	documentsIndexed.WithLabelValues("single").Inc()
	return nil
}

// Remove deletes a product's document from the index.
func (ix *Indexer) Remove(ctx context.Context, id string) error {
	if err := ix.engine.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
