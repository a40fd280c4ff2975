package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/pkg/database"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
)

const productColumns = `p.id, p.upc, p.title, p.description, p.product_class,
	p.structure, p.parent_id, p.rating,
	EXISTS (SELECT 1 FROM stock_records sr WHERE sr.product_id = p.id),
	p.date_created, p.date_updated`

// ProductRepository implements domain.ProductStore, domain.CatalogStore and
// domain.OptionLookup using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product store.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product with its categories and attributes loaded.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if err := r.loadAssociations(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListBrowsable returns browsable (non-child) products, newest update first.
// When updatedSince is non-nil only products updated after that instant are
// returned.
func (r *ProductRepository) ListBrowsable(ctx context.Context, updatedSince *time.Time) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.structure != $1`, productColumns)
	args := []any{domain.StructureChild}

	if updatedSince != nil {
		query += ` AND p.date_updated > $2`
		args = append(args, *updatedSince)
	}
	query += ` ORDER BY p.date_updated DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list browsable products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	for i := range products {
		if err := r.loadAssociations(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// ListOptionGroups returns every attribute option group in the catalogue.
func (r *ProductRepository) ListOptionGroups(ctx context.Context) ([]domain.AttributeOptionGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, name FROM attribute_option_groups ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list option groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.AttributeOptionGroup
	for rows.Next() {
		var g domain.AttributeOptionGroup
		if err := rows.Scan(&g.Code, &g.Name); err != nil {
			return nil, fmt.Errorf("scan option group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate option groups: %w", err)
	}
	return groups, nil
}

// OptionValue returns the display text of the option selected for the given
// product and attribute.
func (r *ProductRepository) OptionValue(ctx context.Context, productID, attributeCode string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT option_value FROM product_attribute_options
		 WHERE product_id = $1 AND attribute_code = $2`,
		productID, attributeCode,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("option value", productID+"/"+attributeCode)
		}
		return "", fmt.Errorf("get option value: %w", err)
	}
	return value, nil
}

// loadAssociations fills in the product's categories and attributes.
func (r *ProductRepository) loadAssociations(ctx context.Context, p *domain.Product) error {
	categories, err := r.productCategories(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Categories = categories

	attributes, err := r.productAttributes(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Attributes = attributes
	return nil
}

func (r *ProductRepository) productCategories(ctx context.Context, productID string) ([]domain.Category, error) {
	query := fmt.Sprintf(`%s
		SELECT %s FROM tree
		JOIN product_categories pc ON pc.category_id = tree.id
		WHERE pc.product_id = $1
		ORDER BY full_slug`, categoryTreeCTE, categoryColumns)

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product categories: %w", err)
	}
	return categories, nil
}

func (r *ProductRepository) productAttributes(ctx context.Context, productID string) ([]domain.ProductAttribute, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, name, is_option, COALESCE(option_group_code, '')
		 FROM product_attributes
		 WHERE product_id = $1
		 ORDER BY code`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list product attributes: %w", err)
	}
	defer rows.Close()

	var attributes []domain.ProductAttribute
	for rows.Next() {
		var a domain.ProductAttribute
		if err := rows.Scan(&a.Code, &a.Name, &a.IsOption, &a.OptionGroupCode); err != nil {
			return nil, fmt.Errorf("scan product attribute: %w", err)
		}
		attributes = append(attributes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product attributes: %w", err)
	}
	return attributes, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.UPC,
		&p.Title,
		&p.Description,
		&p.ProductClass,
		&p.Structure,
		&p.ParentID,
		&p.Rating,
		&p.HasStockRecords,
		&p.DateCreated,
		&p.DateUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
