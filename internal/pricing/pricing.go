package pricing

import (
	"context"
	"fmt"

	"github.com/utafrali/CatalogueGo/internal/domain"
)

// Quote is the transient price/stock answer for a product in the current
// selling context. A nil Quote (with nil error) means no price is resolvable.
type Quote struct {
	// TaxKnown reports whether PriceInclTax is authoritative. When false,
	// consumers must fall back to PriceExclTax.
	TaxKnown     bool
	PriceInclTax float64
	PriceExclTax float64

	// StockLevel is the net stock level. Only set for product-level quotes;
	// a parent product has no single stock level.
	StockLevel *int
}

// EffectivePrice returns the price a consumer should expose: tax-inclusive
// when tax is known, tax-exclusive otherwise.
func (q *Quote) EffectivePrice() float64 {
	if q.TaxKnown {
		return q.PriceInclTax
	}
	return q.PriceExclTax
}

// Resolver answers price/stock questions for products. Implementations must
// be safe for concurrent use.
type Resolver interface {
	// QuoteForParent returns a parent-level quote aggregated across the
	// product's children. Returns (nil, nil) when no child is purchasable.
	QuoteForParent(ctx context.Context, p *domain.Product) (*Quote, error)

	// QuoteForProduct returns a quote from the product's own stock records.
	// Returns (nil, nil) when the product has none.
	QuoteForProduct(ctx context.Context, p *domain.Product) (*Quote, error)
}

// StockRecord is one partner's stock entry for a product.
type StockRecord struct {
	ProductID    string
	PartnerSKU   string
	PriceExclTax float64
	NumInStock   int
	NumAllocated int
}

// NetStock returns the stock available for sale.
func (r StockRecord) NetStock() int {
	return r.NumInStock - r.NumAllocated
}

// StockRecordStore defines read access to stock records.
type StockRecordStore interface {
	// ListForProduct returns the product's own stock records.
	ListForProduct(ctx context.Context, productID string) ([]StockRecord, error)

	// ListForChildren returns the stock records of every child of the
	// given parent product.
	ListForChildren(ctx context.Context, parentID string) ([]StockRecord, error)
}

// StockRecordResolver is the default Resolver: cheapest stock record wins,
// stock levels are summed across records, and tax is known only when a flat
// tax rate has been configured.
type StockRecordResolver struct {
	store   StockRecordStore
	taxRate *float64
}

// NewStockRecordResolver creates a resolver over the given stock record store.
// taxRate is the flat fractional tax rate (e.g. 0.20); nil means tax-unknown
// quotes.
func NewStockRecordResolver(store StockRecordStore, taxRate *float64) *StockRecordResolver {
	return &StockRecordResolver{store: store, taxRate: taxRate}
}

// QuoteForProduct resolves a product-level quote, including net stock.
func (r *StockRecordResolver) QuoteForProduct(ctx context.Context, p *domain.Product) (*Quote, error) {
	records, err := r.store.ListForProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	quote := r.quoteFromRecords(records)
	stock := 0
	for _, rec := range records {
		stock += rec.NetStock()
	}
	quote.StockLevel = &stock
	return quote, nil
}

// QuoteForParent resolves a parent-level quote across the children's stock
// records. No stock level is set: a parent has no single stock level.
func (r *StockRecordResolver) QuoteForParent(ctx context.Context, p *domain.Product) (*Quote, error) {
	records, err := r.store.ListForChildren(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list child stock records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return r.quoteFromRecords(records), nil
}

func (r *StockRecordResolver) quoteFromRecords(records []StockRecord) *Quote {
	cheapest := records[0].PriceExclTax
	for _, rec := range records[1:] {
		if rec.PriceExclTax < cheapest {
			cheapest = rec.PriceExclTax
		}
	}

	q := &Quote{PriceExclTax: cheapest}
	if r.taxRate != nil {
		q.TaxKnown = true
		q.PriceInclTax = cheapest * (1 + *r.taxRate)
	}
	return q
}
