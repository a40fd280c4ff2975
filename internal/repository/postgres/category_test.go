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

func newCategoryTestFixture(t *testing.T) (*CategoryRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCategoryRepository(mock)
	return repo, mock
}

func categoryTestColumns() []string {
	return []string{
		"id", "name", "slug", "parent_id", "full_name", "full_slug", "level",
		"is_active", "created_at", "updated_at",
	}
}

func categoryRow(c *domain.Category) *pgxmock.Rows {
	return categoryRows(c)
}

func categoryRows(categories ...*domain.Category) *pgxmock.Rows {
	rows := pgxmock.NewRows(categoryTestColumns())
	for _, c := range categories {
		rows.AddRow(
			c.ID, c.Name, c.Slug, c.ParentID, c.FullName, c.FullSlug, c.Level,
			c.IsActive, c.CreatedAt, c.UpdatedAt,
		)
	}
	return rows
}

func sampleCategory() *domain.Category {
	now := time.Now().UTC().Truncate(time.Microsecond)
	parentID := "cat-clothing"
	return &domain.Category{
		ID:        "cat-shoes",
		Name:      "Shoes",
		Slug:      "shoes",
		ParentID:  &parentID,
		FullName:  "Clothing > Shoes",
		FullSlug:  "clothing/shoes",
		Level:     1,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCategoryRepository_GetByID_Success(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	want := sampleCategory()

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs(want.ID).
		WillReturnRows(categoryRow(want))

	got, err := repo.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs("missing").
		WillReturnRows(categoryRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_FindBySlug_MultipleMatches(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	womens := sampleCategory()
	womens.FullSlug = "clothing/womens/shoes"
	sale := sampleCategory()
	sale.ID = "cat-sale-shoes"
	sale.FullSlug = "sale/shoes"

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs("shoes").
		WillReturnRows(categoryRows(womens, sale))

	got, err := repo.FindBySlug(context.Background(), "shoes")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "clothing/womens/shoes", got[0].FullSlug)
	assert.Equal(t, "sale/shoes", got[1].FullSlug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_FindBySlug_NoMatches(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs("nothing").
		WillReturnRows(categoryRows())

	got, err := repo.FindBySlug(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_FindBySlug_QueryError(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("WITH RECURSIVE tree").
		WithArgs("shoes").
		WillReturnError(assert.AnError)

	_, err := repo.FindBySlug(context.Background(), "shoes")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
