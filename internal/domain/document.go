package domain

// Field names shared by every product document. Dynamic facet fields (one per
// attribute option group) come on top of these.
const (
	FieldID           = "id"
	FieldText         = "text"
	FieldUPC          = "upc"
	FieldTitle        = "title"
	FieldTitleExact   = "title_s"
	FieldProductClass = "product_class"
	FieldCategory     = "category"
	FieldPrice        = "price"
	FieldNumInStock   = "num_in_stock"
	FieldRating       = "rating"
	FieldSuggestions  = "suggestions"
	FieldPriceRange   = "price_range"
	FieldDateCreated  = "date_created"
	FieldDateUpdated  = "date_updated"
)

// ProductDocument is the flat field-name to value(s) mapping indexed for one
// product. Values are scalars except FieldCategory, which is multi-valued.
// A document is rebuilt wholesale on every indexing pass; absent fields are
// simply missing keys, never sentinels.
type ProductDocument map[string]any

// ID returns the document's product identifier, or "" when unset.
func (d ProductDocument) ID() string {
	if id, ok := d[FieldID].(string); ok {
		return id
	}
	return ""
}

// GetString returns the named field as a string when present.
func (d ProductDocument) GetString(field string) (string, bool) {
	v, ok := d[field].(string)
	return v, ok
}

// GetFloat returns the named field as a float64 when present.
func (d ProductDocument) GetFloat(field string) (float64, bool) {
	v, ok := d[field].(float64)
	return v, ok
}

// GetStrings returns the named multi-valued field when present.
func (d ProductDocument) GetStrings(field string) ([]string, bool) {
	switch v := d[field].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
