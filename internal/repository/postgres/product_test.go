package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/pkg/database"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func productTestColumns() []string {
	return []string{
		"id", "upc", "title", "description", "product_class",
		"structure", "parent_id", "rating", "has_stock_records",
		"date_created", "date_updated",
	}
}

func productRows(products ...*domain.Product) *pgxmock.Rows {
	rows := pgxmock.NewRows(productTestColumns())
	for _, p := range products {
		rows.AddRow(
			p.ID, p.UPC, p.Title, p.Description, p.ProductClass,
			p.Structure, p.ParentID, p.Rating, p.HasStockRecords,
			p.DateCreated, p.DateUpdated,
		)
	}
	return rows
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	upc := "1234567890"
	return &domain.Product{
		ID:              "prod-1",
		UPC:             &upc,
		Title:           "Trail Running Shoe",
		Description:     "Lightweight shoe",
		ProductClass:    "Footwear",
		Structure:       domain.StructureStandalone,
		HasStockRecords: true,
		DateCreated:     now,
		DateUpdated:     now,
	}
}

// expectAssociations queues the category and attribute lookups loadAssociations runs.
func expectAssociations(mock pgxmock.PgxPoolIface, productID string) {
	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs(productID).
		WillReturnRows(categoryRows())
	mock.ExpectQuery("FROM product_attributes").
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"code", "name", "is_option", "option_group_code"}))
}

func TestProductRepository_GetByID_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	want := sampleProduct()

	mock.ExpectQuery("FROM products p WHERE p.id").
		WithArgs(want.ID).
		WillReturnRows(productRows(want))
	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs(want.ID).
		WillReturnRows(categoryRow(sampleCategory()))
	mock.ExpectQuery("FROM product_attributes").
		WithArgs(want.ID).
		WillReturnRows(pgxmock.NewRows([]string{"code", "name", "is_option", "option_group_code"}).
			AddRow("shoe_color", "Color", true, "color"))

	got, err := repo.GetByID(context.Background(), want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "clothing/shoes", got.Categories[0].FullSlug)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, domain.ProductAttribute{
		Code: "shoe_color", Name: "Color", IsOption: true, OptionGroupCode: "color",
	}, got.Attributes[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM products p WHERE p.id").
		WithArgs("missing").
		WillReturnRows(productRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListBrowsable_Full(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p1 := sampleProduct()
	p2 := sampleProduct()
	p2.ID = "prod-2"
	p2.Structure = domain.StructureParent

	mock.ExpectQuery("FROM products p WHERE p.structure").
		WithArgs(domain.StructureChild).
		WillReturnRows(productRows(p1, p2))
	expectAssociations(mock, p1.ID)
	expectAssociations(mock, p2.ID)

	got, err := repo.ListBrowsable(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "prod-1", got[0].ID)
	assert.Equal(t, "prod-2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListBrowsable_Delta(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := sampleProduct()

	mock.ExpectQuery("AND p.date_updated >").
		WithArgs(domain.StructureChild, since).
		WillReturnRows(productRows(p))
	expectAssociations(mock, p.ID)

	got, err := repo.ListBrowsable(context.Background(), &since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListOptionGroups(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM attribute_option_groups").
		WillReturnRows(pgxmock.NewRows([]string{"code", "name"}).
			AddRow("color", "Color").
			AddRow("size", "Size"))

	got, err := repo.ListOptionGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.AttributeOptionGroup{
		{Code: "color", Name: "Color"},
		{Code: "size", Name: "Size"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_OptionValue(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM product_attribute_options").
		WithArgs("prod-1", "shoe_color").
		WillReturnRows(pgxmock.NewRows([]string{"option_value"}).AddRow("Red"))

	got, err := repo.OptionValue(context.Background(), "prod-1", "shoe_color")
	require.NoError(t, err)
	assert.Equal(t, "Red", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_OptionValue_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM product_attribute_options").
		WithArgs("prod-1", "shoe_size").
		WillReturnRows(pgxmock.NewRows([]string{"option_value"}))

	_, err := repo.OptionValue(context.Background(), "prod-1", "shoe_size")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRecordRepository_ListForProduct(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockRecordRepository(mock)

	mock.ExpectQuery("FROM stock_records WHERE product_id").
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"product_id", "partner_sku", "price_excl_tax", "num_in_stock", "num_allocated",
		}).
			AddRow("prod-1", "SKU-A", 19.99, 5, 1).
			AddRow("prod-1", "SKU-B", 25.00, 3, 0))

	got, err := repo.ListForProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 19.99, got[0].PriceExclTax)
	assert.Equal(t, 4, got[0].NetStock())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRecordRepository_ListForChildren(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewStockRecordRepository(mock)

	mock.ExpectQuery("SELECT id FROM products WHERE parent_id").
		WithArgs("parent-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"product_id", "partner_sku", "price_excl_tax", "num_in_stock", "num_allocated",
		}).AddRow("child-1", "SKU-C", 12.50, 8, 2))

	got, err := repo.ListForChildren(context.Background(), "parent-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "child-1", got[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
