package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/CatalogueGo/internal/pricing"
	"github.com/utafrali/CatalogueGo/pkg/database"
)

const stockRecordColumns = `product_id, partner_sku, price_excl_tax, num_in_stock, num_allocated`

// StockRecordRepository implements pricing.StockRecordStore using PostgreSQL.
type StockRecordRepository struct {
	pool database.DBTX
}

// NewStockRecordRepository creates a new PostgreSQL-backed stock record store.
func NewStockRecordRepository(pool database.DBTX) *StockRecordRepository {
	return &StockRecordRepository{pool: pool}
}

// ListForProduct returns the product's own stock records.
func (r *StockRecordRepository) ListForProduct(ctx context.Context, productID string) ([]pricing.StockRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_records WHERE product_id = $1 ORDER BY partner_sku`, stockRecordColumns)
	return r.list(ctx, query, productID)
}

// ListForChildren returns the stock records of every child of the given
// parent product.
func (r *StockRecordRepository) ListForChildren(ctx context.Context, parentID string) ([]pricing.StockRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_records
		WHERE product_id IN (SELECT id FROM products WHERE parent_id = $1)
		ORDER BY product_id, partner_sku`, stockRecordColumns)
	return r.list(ctx, query, parentID)
}

func (r *StockRecordRepository) list(ctx context.Context, query string, arg any) ([]pricing.StockRecord, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var records []pricing.StockRecord
	for rows.Next() {
		var rec pricing.StockRecord
		if err := rows.Scan(&rec.ProductID, &rec.PartnerSKU, &rec.PriceExclTax, &rec.NumInStock, &rec.NumAllocated); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock records: %w", err)
	}
	return records, nil
}
