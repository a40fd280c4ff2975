package indexer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/utafrali/CatalogueGo/internal/domain"
	"github.com/utafrali/CatalogueGo/pkg/slug"
)

// staticFacetFields are the facet fields present in every schema.
var staticFacetFields = []string{
	domain.FieldProductClass,
	domain.FieldCategory,
	domain.FieldPrice,
	domain.FieldNumInStock,
	domain.FieldRating,
	domain.FieldPriceRange,
}

// Schema is the document shape contract handed to the search engine. Its
// dynamic facet field set is exactly the set of attribute option group codes
// present in the catalogue when the schema was built; it is fixed for the
// lifetime of the index build, independent of which products get indexed.
type Schema struct {
	dynamicFacets []string
	dynamicSet    map[string]struct{}
}

// BuildSchema enumerates the catalogue's attribute option groups once and
// derives the dynamic facet fields from them.
func BuildSchema(ctx context.Context, store domain.CatalogStore) (*Schema, error) {
	groups, err := store.ListOptionGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list option groups: %w", err)
	}
	return NewSchema(groups), nil
}

// NewSchema constructs a schema from an already-loaded option group set.
func NewSchema(groups []domain.AttributeOptionGroup) *Schema {
	set := make(map[string]struct{}, len(groups))
	fields := make([]string, 0, len(groups))
	for _, g := range groups {
		field := FacetFieldName(g.Code)
		if field == "" {
			continue
		}
		if _, dup := set[field]; dup {
			continue
		}
		set[field] = struct{}{}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return &Schema{dynamicFacets: fields, dynamicSet: set}
}

// FacetFieldName normalizes an option group code into an index field name.
// Group codes are operator-entered catalogue data; field names must be
// stable lowercase identifiers in the style of the static fields.
func FacetFieldName(code string) string {
	return strings.ReplaceAll(slug.Generate(code), "-", "_")
}

// DynamicFacetFields returns the dynamic facet field names, sorted.
func (s *Schema) DynamicFacetFields() []string {
	out := make([]string, len(s.dynamicFacets))
	copy(out, s.dynamicFacets)
	return out
}

// FacetFields returns every facet field name, static then dynamic.
func (s *Schema) FacetFields() []string {
	out := make([]string, 0, len(staticFacetFields)+len(s.dynamicFacets))
	out = append(out, staticFacetFields...)
	out = append(out, s.dynamicFacets...)
	return out
}

// HasDynamicFacet reports whether the named dynamic facet field exists in the
// schema.
func (s *Schema) HasDynamicFacet(name string) bool {
	_, ok := s.dynamicSet[name]
	return ok
}

// FacetField maps an option group code to its schema field name. The second
// return is false when the group was not part of the catalogue at schema
// build time.
func (s *Schema) FacetField(code string) (string, bool) {
	field := FacetFieldName(code)
	_, ok := s.dynamicSet[field]
	return field, ok
}
