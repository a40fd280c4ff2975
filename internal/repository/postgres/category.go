package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/pkg/database"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
)

// categoryTreeCTE walks the category tree from the roots down, accumulating
// each node's full slug and full name from its ancestor chain. Both separators
// are injected once at construction.
var categoryTreeCTE = fmt.Sprintf(`
	WITH RECURSIVE tree AS (
		SELECT id, name, slug, parent_id,
		       name::text AS full_name, slug::text AS full_slug,
		       0 AS level, is_active, created_at, updated_at
		FROM categories
		WHERE parent_id IS NULL
		UNION ALL
		SELECT c.id, c.name, c.slug, c.parent_id,
		       tree.full_name || '%s' || c.name,
		       tree.full_slug || '%s' || c.slug,
		       tree.level + 1, c.is_active, c.created_at, c.updated_at
		FROM categories c
		JOIN tree ON c.parent_id = tree.id
	)`, domain.FullNameSeparator, domain.SlugSeparator)

const categoryColumns = `id, name, slug, parent_id, full_name, full_slug, level,
	is_active, created_at, updated_at`

// CategoryRepository implements domain.CategoryStore using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category store.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category by its unique identifier, with full slug and
// full name computed from the current hierarchy.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := fmt.Sprintf(`%s SELECT %s FROM tree WHERE id = $1`, categoryTreeCTE, categoryColumns)

	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves every category whose own slug equals the given slug,
// regardless of tree position.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) ([]domain.Category, error) {
	query := fmt.Sprintf(`%s SELECT %s FROM tree WHERE slug = $1 ORDER BY full_slug`, categoryTreeCTE, categoryColumns)

	rows, err := r.pool.Query(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("find categories by slug: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.ParentID,
		&c.FullName,
		&c.FullSlug,
		&c.Level,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
