package domain

import (
	"context"
	"time"
)

// Product structure constants. A parent product groups child variants and has
// no stock records of its own; a child is an individual variant and is not
// indexed directly.
const (
	StructureStandalone = "standalone"
	StructureParent     = "parent"
	StructureChild      = "child"
)

// Product represents a catalogue product with the associations the document
// builder needs already loaded (categories, attributes).
type Product struct {
	ID              string             `json:"id"`
	UPC             *string            `json:"upc,omitempty"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	ProductClass    string             `json:"product_class"`
	Structure       string             `json:"structure"`
	ParentID        *string            `json:"parent_id,omitempty"`
	Rating          *float64           `json:"rating,omitempty"`
	Categories      []Category         `json:"categories,omitempty"`
	Attributes      []ProductAttribute `json:"attributes,omitempty"`
	HasStockRecords bool               `json:"has_stock_records"`
	DateCreated     time.Time          `json:"date_created"`
	DateUpdated     time.Time          `json:"date_updated"`
}

// IsParent reports whether the product groups child variants.
func (p *Product) IsParent() bool { return p.Structure == StructureParent }

// IsChild reports whether the product is an individual variant.
func (p *Product) IsChild() bool { return p.Structure == StructureChild }

// IsBrowsable reports whether the product is a candidate for indexing.
// Child variants are excluded; their data feeds the parent document.
func (p *Product) IsBrowsable() bool { return !p.IsChild() }

// ProductAttribute describes one attribute attached to a product. Option
// attributes draw their value from a catalogue-wide option group and surface
// as a dynamic facet named after the group's code.
type ProductAttribute struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	IsOption        bool   `json:"is_option"`
	OptionGroupCode string `json:"option_group_code,omitempty"`
}

// AttributeOptionGroup is a catalogue-wide enumerable facet dimension
// (e.g. "Color"). The set of groups at schema-build time determines the
// dynamic facet fields of the document schema.
type AttributeOptionGroup struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ProductStore defines read access to the product catalogue for indexing.
type ProductStore interface {
	// GetByID retrieves a product with categories and attributes loaded.
	GetByID(ctx context.Context, id string) (*Product, error)

	// ListBrowsable returns browsable (non-child) products, newest update
	// first. When updatedSince is non-nil only products updated after that
	// instant are returned (incremental delta selection).
	ListBrowsable(ctx context.Context, updatedSince *time.Time) ([]Product, error)
}

// CatalogStore exposes catalogue-wide metadata needed at schema-build time.
type CatalogStore interface {
	// ListOptionGroups returns every attribute option group in the catalogue.
	ListOptionGroups(ctx context.Context) ([]AttributeOptionGroup, error)
}

// OptionLookup resolves a product's option-attribute value to its display text.
type OptionLookup interface {
	// OptionValue returns the display text of the option selected for the
	// given product and attribute code. Returns an error wrapping
	// errors.ErrNotFound when no value is recorded.
	OptionValue(ctx context.Context, productID, attributeCode string) (string, error)
}
