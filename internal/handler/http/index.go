package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/CatalogueGo/internal/indexer"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
	"github.com/utafrali/CatalogueGo/pkg/httputil"
	"github.com/utafrali/CatalogueGo/pkg/validator"
)

// IndexHandler exposes indexing pass triggers.
type IndexHandler struct {
	indexer *indexer.Indexer
	logger  *slog.Logger
}

// NewIndexHandler creates a new index HTTP handler.
func NewIndexHandler(ix *indexer.Indexer, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		indexer: ix,
		logger:  logger,
	}
}

// Rebuild handles POST /api/v1/index/rebuild. The pass runs in the background;
// the request only acknowledges the trigger.
func (h *IndexHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		if _, err := h.indexer.RebuildAll(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background full rebuild failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "rebuild started"}})
}

// Delta handles POST /api/v1/index/delta, rebuilding only products updated
// since the last pass.
func (h *IndexHandler) Delta(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		if _, err := h.indexer.RebuildChanged(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background delta rebuild failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "delta rebuild started"}})
}

type reindexProductRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// Product handles POST /api/v1/index/product, synchronously rebuilding the
// document for one product. A product that is gone or no longer browsable has
// its document removed instead.
func (h *IndexHandler) Product(w http.ResponseWriter, r *http.Request) {
	var req reindexProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.indexer.RebuildProduct(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := h.indexer.Remove(r.Context(), req.ProductID); err != nil {
				httputil.WriteError(w, r, err, h.logger)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "document removed"}})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "product indexed"}})
}
