package catalogue

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/CatalogueGo/internal/domain"
	apperrors "github.com/utafrali/CatalogueGo/pkg/errors"
)

// legacySlugResolutions tracks successful resolutions through the deprecated
// slug-chain path, so the remaining legacy traffic can be watched during the
// migration to id-based URLs.
var legacySlugResolutions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "catalogue_legacy_slug_resolutions_total",
	Help: "Category resolutions served via the deprecated concatenated-slug path",
})

// ResolveParams identifies the category a browse request is asking for.
// Exactly one of ID and SlugChain is expected; ID wins when both are set.
type ResolveParams struct {
	// ID is the category's unique identifier.
	ID string

	// SlugChain is the legacy form: the slugs of the category and its
	// ancestors concatenated with the hierarchy separator.
	SlugChain string
}

// Resolver resolves browse request paths to categories and decides redirects.
// It is stateless and safe for concurrent use.
type Resolver struct {
	store  domain.CategoryStore
	sep    string
	logger *slog.Logger
}

// NewResolver creates a category resolver over the given store.
func NewResolver(store domain.CategoryStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, sep: domain.SlugSeparator, logger: logger}
}

// WithSeparator overrides the hierarchy separator used to split legacy slug
// chains. Returns the resolver for chaining.
func (r *Resolver) WithSeparator(sep string) *Resolver {
	r.sep = sep
	return r
}

// Resolve turns request parameters into a category.
//
// Lookup by ID is authoritative: it keeps working even when slugs have changed
// since the URL was generated (Canonicalize then issues the redirect). The
// slug-chain form is deprecated and kept for backward compatibility only; it
// picks the leaf segment, fetches all categories sharing that slug and selects
// the one whose full slug equals the entire chain.
func (r *Resolver) Resolve(ctx context.Context, params ResolveParams) (*domain.Category, error) {
	if params.ID != "" {
		category, err := r.store.GetByID(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		return category, nil
	}

	if params.SlugChain != "" {
		return r.resolveSlugChain(ctx, params.SlugChain)
	}

	return nil, apperrors.NotFound("category", "")
}

func (r *Resolver) resolveSlugChain(ctx context.Context, chain string) (*domain.Category, error) {
	slugs := strings.Split(chain, r.sep)
	leaf := slugs[len(slugs)-1]
	if leaf == "" {
		return nil, apperrors.NotFound("category", chain)
	}

	// Slug uniqueness is not enforced across tree positions, so fetch every
	// category with the leaf slug and compare full slugs, rewritten into the
	// chain's separator.
	candidates, err := r.store.FindBySlug(ctx, leaf)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		fullSlug := candidates[i].FullSlug
		if r.sep != domain.SlugSeparator {
			fullSlug = strings.ReplaceAll(fullSlug, domain.SlugSeparator, r.sep)
		}
		if fullSlug == chain {
			r.logger.WarnContext(ctx, "category resolved via deprecated slug chain",
				slog.String("slug_chain", chain),
				slog.String("category_id", candidates[i].ID),
			)
			legacySlugResolutions.Inc()
			return &candidates[i], nil
		}
	}

	return nil, apperrors.NotFound("category", chain)
}

// Canonicalize compares the current request path against the category's
// canonical URL. When they differ it returns the canonical URL as a
// permanent-redirect target and true; otherwise it returns "" and false.
// Requesting the returned target again yields no further redirect.
//
// This must run before any downstream query execution so a stale path is
// never served.
func (r *Resolver) Canonicalize(currentPath string, category *domain.Category) (string, bool) {
	expected := category.AbsoluteURL()
	current := (&url.URL{Path: currentPath}).EscapedPath()
	if expected != current {
		return expected, true
	}
	return "", false
}
