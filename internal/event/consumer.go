package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/CatalogueGo/internal/indexer"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
	pkgkafka "github.com/utafrali/CatalogueGo/pkg/kafka"
)

// Kafka topics for product domain events that drive single-document reindexing.
const (
	TopicProductCreated = "catalogue.product.created"
	TopicProductUpdated = "catalogue.product.updated"
	TopicProductDeleted = "catalogue.product.deleted"
)

// ProductEventData is the payload of a product change event. The document is
// rebuilt from the catalogue, so the id is all the event needs to carry.
type ProductEventData struct {
	ID string `json:"id"`
}

// Consumer handles product change events by rebuilding the affected document.
type Consumer struct {
	indexer *indexer.Indexer
	logger  *slog.Logger
}

// NewConsumer creates a new event consumer for the catalogue service.
func NewConsumer(ix *indexer.Indexer, logger *slog.Logger) *Consumer {
	return &Consumer{
		indexer: ix,
		logger:  logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductChanged(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductChanged rebuilds the document of a created or updated product.
// A product that vanished between the event and the rebuild is treated as
// deleted.
func (c *Consumer) handleProductChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	if data.ID == "" {
		return fmt.Errorf("%s event without product id", event.EventType)
	}

	if err := c.indexer.RebuildProduct(ctx, data.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.removeDocument(ctx, data.ID)
		}
		return fmt.Errorf("rebuild product from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "rebuilt document from product event",
		slog.String("event_type", event.EventType),
		slog.String("product_id", data.ID),
	)

	return nil
}

// handleProductDeleted removes a deleted product's document from the index.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}
	if data.ID == "" {
		return fmt.Errorf("product.deleted event without product id")
	}

	return c.removeDocument(ctx, data.ID)
}

func (c *Consumer) removeDocument(ctx context.Context, id string) error {
	if err := c.indexer.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove document from event: %w", err)
	}

	c.logger.InfoContext(ctx, "removed document from product event",
		slog.String("product_id", id),
	)

	return nil
}
