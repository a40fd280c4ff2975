package domain

import (
	"context"
	"time"
)

// SlugSeparator joins the slugs of a category's ancestors into its full slug.
// It doubles as the segment separator of legacy concatenated slug URLs.
const SlugSeparator = "/"

// FullNameSeparator joins ancestor names into a category's full display name.
const FullNameSeparator = " > "

// Category represents a node in the category tree. FullSlug and FullName are
// computed from the node's ancestor chain when the category is loaded; they are
// snapshots of the hierarchy at read time, not stored truth. Resolution by ID
// stays correct even when an ancestor's slug has changed since the snapshot.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *string   `json:"parent_id,omitempty"`
	FullName  string    `json:"full_name"`
	FullSlug  string    `json:"full_slug"`
	Level     int       `json:"level"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AbsoluteURL returns the canonical browse path for the category. It is a pure
// function of the current hierarchy state.
func (c *Category) AbsoluteURL() string {
	return "/catalogue/category/" + c.FullSlug + SlugSeparator + c.ID
}

// CategoryStore defines read access to the category hierarchy.
type CategoryStore interface {
	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*Category, error)

	// FindBySlug retrieves every category whose own (leaf) slug equals the
	// given slug. Several categories at different tree positions may share
	// a leaf slug.
	FindBySlug(ctx context.Context, slug string) ([]Category, error)
}
