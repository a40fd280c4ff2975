package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/CatalogueGo/internal/catalogue"
	"github.com/utafrali/CatalogueGo/internal/indexer"
	"github.com/utafrali/CatalogueGo/internal/service"
	"github.com/utafrali/CatalogueGo/pkg/health"
	"github.com/utafrali/CatalogueGo/pkg/middleware"
)

// NewRouter creates a chi router with all catalogue service routes registered.
func NewRouter(
	resolver *catalogue.Resolver,
	browseService *service.BrowseService,
	searchService *service.SearchService,
	schema *indexer.Schema,
	ix *indexer.Indexer,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalogue"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Category browse pages
	browseHandler := NewBrowseHandler(resolver, browseService, logger)
	r.Get("/catalogue/category/*", browseHandler.Browse)

	// Search and indexing API
	searchHandler := NewSearchHandler(searchService, schema, logger)
	indexHandler := NewIndexHandler(ix, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)
		r.Post("/index/rebuild", indexHandler.Rebuild)
		r.Post("/index/delta", indexHandler.Delta)
		r.Post("/index/product", indexHandler.Product)
	})

	return r
}
