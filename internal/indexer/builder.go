package indexer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/pricing"
)

// Builder assembles the faceted search document for one product. It never
// fails for well-formed catalogue data: a missing quote or a failing
// per-attribute lookup narrows the document instead of aborting it.
// Stateless and safe for concurrent use.
type Builder struct {
	pricing     pricing.Resolver
	options     domain.OptionLookup
	schema      *Schema
	breakpoints []float64
	logger      *slog.Logger
}

// NewBuilder creates a document builder. The pricing resolver is injected
// rather than read from shared state so index builds and request handling can
// use different selling contexts. breakpoints configure the price_range bands;
// nil means DefaultBreakpoints.
func NewBuilder(
	priceResolver pricing.Resolver,
	options domain.OptionLookup,
	schema *Schema,
	breakpoints []float64,
	logger *slog.Logger,
) *Builder {
	if breakpoints == nil {
		breakpoints = DefaultBreakpoints
	}
	return &Builder{
		pricing:     priceResolver,
		options:     options,
		schema:      schema,
		breakpoints: breakpoints,
		logger:      logger,
	}
}

// Build produces the complete document for the product. Each call rebuilds
// the document wholesale; the engine's replace semantics take care of the
// previous version.
func (b *Builder) Build(ctx context.Context, p *domain.Product) domain.ProductDocument {
	doc := domain.ProductDocument{
		domain.FieldID:    p.ID,
		domain.FieldTitle: p.Title,
	}

	if p.UPC != nil && *p.UPC != "" {
		doc[domain.FieldUPC] = *p.UPC
	}
	if p.ProductClass != "" {
		doc[domain.FieldProductClass] = p.ProductClass
	}

	if len(p.Categories) > 0 {
		names := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			names = append(names, c.FullName)
		}
		doc[domain.FieldCategory] = names
	}

	if p.Rating != nil {
		doc[domain.FieldRating] = int(*p.Rating)
	}

	// Price and stock vary per customer in general; the common case of every
	// customer seeing the same price is what gets indexed. The same resolved
	// quote feeds both the plain price field and the bucketed price field so
	// the two can never take different tax branches.
	if quote := b.resolveQuote(ctx, p); quote != nil {
		price := quote.EffectivePrice()
		doc[domain.FieldPrice] = price

		if !p.IsParent() && quote.StockLevel != nil {
			doc[domain.FieldNumInStock] = *quote.StockLevel
		}

		if label, ok := Bucket(price, b.breakpoints); ok {
			doc[domain.FieldPriceRange] = label
		}
	}

	b.addOptionFacets(ctx, p, doc)

	text := b.searchText(p)
	doc[domain.FieldText] = text
	// The suggestion field carries the same content as the text blob but is
	// facet-typed for spelling-suggestion lookups.
	doc[domain.FieldSuggestions] = text
	// The title field is edge-ngram tokenized and unusable for lexical sort;
	// mirror it into an exact string field.
	doc[domain.FieldTitleExact] = p.Title

	doc[domain.FieldDateCreated] = p.DateCreated
	// The indexing driver filters on this field to select incremental deltas.
	doc[domain.FieldDateUpdated] = p.DateUpdated

	return doc
}

// resolveQuote picks the quote appropriate to the product's shape: parents
// get an aggregated child quote, products with their own stock records get a
// product-level quote, anything else has no price at all.
func (b *Builder) resolveQuote(ctx context.Context, p *domain.Product) *pricing.Quote {
	var (
		quote *pricing.Quote
		err   error
	)
	switch {
	case p.IsParent():
		quote, err = b.pricing.QuoteForParent(ctx, p)
	case p.HasStockRecords:
		quote, err = b.pricing.QuoteForProduct(ctx, p)
	default:
		return nil
	}

	if err != nil {
		b.logger.WarnContext(ctx, "price resolution failed, indexing without price",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return quote
}

// addOptionFacets fills the dynamic facet fields from the product's option
// attributes. A failed lookup skips that one field; the rest of the document
// is unaffected.
func (b *Builder) addOptionFacets(ctx context.Context, p *domain.Product, doc domain.ProductDocument) {
	for _, attr := range p.Attributes {
		if !attr.IsOption {
			continue
		}
		field, ok := b.schema.FacetField(attr.OptionGroupCode)
		if !ok {
			continue
		}

		value, err := b.options.OptionValue(ctx, p.ID, attr.Code)
		if err != nil {
			b.logger.WarnContext(ctx, "option attribute lookup failed, skipping facet",
				slog.String("product_id", p.ID),
				slog.String("attribute", attr.Code),
				slog.String("error", err.Error()),
			)
			continue
		}
		doc[field] = value
	}
}

// searchText builds the blob the primary searchable field is made of.
func (b *Builder) searchText(p *domain.Product) string {
	parts := make([]string, 0, 3+len(p.Categories))
	if p.UPC != nil && *p.UPC != "" {
		parts = append(parts, *p.UPC)
	}
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	for _, c := range p.Categories {
		parts = append(parts, c.FullName)
	}
	return strings.Join(parts, "\n")
}
