package indexer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/internal/pricing"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePricingResolver struct {
	parentQuote  *pricing.Quote
	productQuote *pricing.Quote
	err          error
}

func (r *fakePricingResolver) QuoteForParent(_ context.Context, _ *domain.Product) (*pricing.Quote, error) {
	return r.parentQuote, r.err
}

func (r *fakePricingResolver) QuoteForProduct(_ context.Context, _ *domain.Product) (*pricing.Quote, error) {
	return r.productQuote, r.err
}

type fakeOptionLookup struct {
	values map[string]string // attribute code -> value
	err    error
}

func (l *fakeOptionLookup) OptionValue(_ context.Context, _, attributeCode string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	v, ok := l.values[attributeCode]
	if !ok {
		return "", apperrors.NotFound("option value", attributeCode)
	}
	return v, nil
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func standaloneProduct() *domain.Product {
	return &domain.Product{
		ID:              "prod-1",
		UPC:             strPtr("1234567890"),
		Title:           "Trail Running Shoe",
		Description:     "Lightweight shoe for rough terrain",
		ProductClass:    "Footwear",
		Structure:       domain.StructureStandalone,
		Rating:          floatPtr(4.6),
		HasStockRecords: true,
		Categories: []domain.Category{
			{ID: "cat-1", Name: "Shoes", FullName: "Clothing > Womens > Shoes"},
		},
		DateCreated: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		DateUpdated: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuilder_Build_Standalone(t *testing.T) {
	resolver := &fakePricingResolver{
		productQuote: &pricing.Quote{PriceExclTax: 55, StockLevel: intPtr(7)},
	}
	b := NewBuilder(resolver, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

	doc := b.Build(context.Background(), standaloneProduct())

	assert.Equal(t, "prod-1", doc[domain.FieldID])
	assert.Equal(t, "Trail Running Shoe", doc[domain.FieldTitle])
	assert.Equal(t, "1234567890", doc[domain.FieldUPC])
	assert.Equal(t, "Footwear", doc[domain.FieldProductClass])
	assert.Equal(t, []string{"Clothing > Womens > Shoes"}, doc[domain.FieldCategory])
	assert.Equal(t, 4, doc[domain.FieldRating]) // truncated, not rounded
	assert.Equal(t, 55.0, doc[domain.FieldPrice])
	assert.Equal(t, 7, doc[domain.FieldNumInStock])
	assert.Equal(t, "40-60", doc[domain.FieldPriceRange])
	assert.Equal(t, "Trail Running Shoe", doc[domain.FieldTitleExact])

	text, ok := doc.GetString(domain.FieldText)
	require.True(t, ok)
	assert.Contains(t, text, "1234567890")
	assert.Contains(t, text, "Trail Running Shoe")
	assert.Contains(t, text, "Lightweight shoe for rough terrain")
	assert.Contains(t, text, "Clothing > Womens > Shoes")
	assert.Equal(t, text, doc[domain.FieldSuggestions])
}

func TestBuilder_Build_ParentHasPriceButNoStock(t *testing.T) {
	resolver := &fakePricingResolver{
		// Parent quotes carry no stock level by contract, but even one that
		// did must not surface as num_in_stock.
		parentQuote: &pricing.Quote{PriceExclTax: 25, StockLevel: intPtr(99)},
	}
	b := NewBuilder(resolver, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

	p := standaloneProduct()
	p.Structure = domain.StructureParent
	p.HasStockRecords = false

	doc := b.Build(context.Background(), p)

	assert.Equal(t, 25.0, doc[domain.FieldPrice])
	assert.Equal(t, "20-40", doc[domain.FieldPriceRange])
	assert.NotContains(t, doc, domain.FieldNumInStock)
}

func TestBuilder_Build_PriceAndBucketShareTaxBranch(t *testing.T) {
	tests := []struct {
		name       string
		quote      *pricing.Quote
		wantPrice  float64
		wantBucket string
	}{
		{
			name:       "tax known uses inclusive price",
			quote:      &pricing.Quote{TaxKnown: true, PriceInclTax: 66, PriceExclTax: 55},
			wantPrice:  66,
			wantBucket: "60+",
		},
		{
			name:       "tax unknown falls back to exclusive price",
			quote:      &pricing.Quote{PriceInclTax: 66, PriceExclTax: 55},
			wantPrice:  55,
			wantBucket: "40-60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakePricingResolver{productQuote: tt.quote}
			b := NewBuilder(resolver, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

			doc := b.Build(context.Background(), standaloneProduct())

			assert.Equal(t, tt.wantPrice, doc[domain.FieldPrice])
			assert.Equal(t, tt.wantBucket, doc[domain.FieldPriceRange])
		})
	}
}

func TestBuilder_Build_NoStockRecordsNoPrice(t *testing.T) {
	resolver := &fakePricingResolver{productQuote: &pricing.Quote{PriceExclTax: 10}}
	b := NewBuilder(resolver, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

	p := standaloneProduct()
	p.HasStockRecords = false

	doc := b.Build(context.Background(), p)

	assert.NotContains(t, doc, domain.FieldPrice)
	assert.NotContains(t, doc, domain.FieldNumInStock)
	assert.NotContains(t, doc, domain.FieldPriceRange)
}

func TestBuilder_Build_PricingErrorNarrowsDocument(t *testing.T) {
	resolver := &fakePricingResolver{err: assert.AnError}
	b := NewBuilder(resolver, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

	doc := b.Build(context.Background(), standaloneProduct())

	assert.NotContains(t, doc, domain.FieldPrice)
	assert.Equal(t, "prod-1", doc[domain.FieldID])
	assert.Contains(t, doc, domain.FieldText)
}

func TestBuilder_Build_OptionFacets(t *testing.T) {
	schema := NewSchema([]domain.AttributeOptionGroup{
		{Code: "color", Name: "Color"},
		{Code: "size", Name: "Size"},
	})
	options := &fakeOptionLookup{values: map[string]string{
		"shoe_color": "Red",
		"shoe_size":  "38",
	}}
	b := NewBuilder(&fakePricingResolver{}, options, schema, nil, newTestLogger())

	p := standaloneProduct()
	p.HasStockRecords = false
	p.Attributes = []domain.ProductAttribute{
		{Code: "shoe_color", Name: "Color", IsOption: true, OptionGroupCode: "color"},
		{Code: "shoe_size", Name: "Size", IsOption: true, OptionGroupCode: "size"},
		{Code: "weight", Name: "Weight", IsOption: false},
	}

	doc := b.Build(context.Background(), p)

	assert.Equal(t, "Red", doc["color"])
	assert.Equal(t, "38", doc["size"])
	assert.NotContains(t, doc, "weight")
}

func TestBuilder_Build_OptionFacetNotInSchema(t *testing.T) {
	// An attribute whose group was added after the schema was built does not
	// produce a field the engine has no mapping for.
	schema := NewSchema([]domain.AttributeOptionGroup{{Code: "color", Name: "Color"}})
	options := &fakeOptionLookup{values: map[string]string{"shoe_material": "Leather"}}
	b := NewBuilder(&fakePricingResolver{}, options, schema, nil, newTestLogger())

	p := standaloneProduct()
	p.HasStockRecords = false
	p.Attributes = []domain.ProductAttribute{
		{Code: "shoe_material", Name: "Material", IsOption: true, OptionGroupCode: "material"},
	}

	doc := b.Build(context.Background(), p)

	assert.NotContains(t, doc, "material")
}

func TestBuilder_Build_FailedOptionLookupSkipsOnlyThatField(t *testing.T) {
	schema := NewSchema([]domain.AttributeOptionGroup{
		{Code: "color", Name: "Color"},
		{Code: "size", Name: "Size"},
	})
	options := &fakeOptionLookup{values: map[string]string{"shoe_size": "38"}}
	b := NewBuilder(&fakePricingResolver{}, options, schema, nil, newTestLogger())

	p := standaloneProduct()
	p.HasStockRecords = false
	p.Attributes = []domain.ProductAttribute{
		{Code: "shoe_color", Name: "Color", IsOption: true, OptionGroupCode: "color"},
		{Code: "shoe_size", Name: "Size", IsOption: true, OptionGroupCode: "size"},
	}

	doc := b.Build(context.Background(), p)

	assert.NotContains(t, doc, "color")
	assert.Equal(t, "38", doc["size"])
	assert.Equal(t, "prod-1", doc[domain.FieldID])
}

func TestBuilder_Build_OmitsEmptyFields(t *testing.T) {
	b := NewBuilder(&fakePricingResolver{}, &fakeOptionLookup{}, NewSchema(nil), nil, newTestLogger())

	p := &domain.Product{
		ID:        "prod-2",
		Title:     "Bare Product",
		Structure: domain.StructureStandalone,
	}

	doc := b.Build(context.Background(), p)

	assert.NotContains(t, doc, domain.FieldUPC)
	assert.NotContains(t, doc, domain.FieldProductClass)
	assert.NotContains(t, doc, domain.FieldCategory)
	assert.NotContains(t, doc, domain.FieldRating)
	assert.NotContains(t, doc, domain.FieldPrice)
}
