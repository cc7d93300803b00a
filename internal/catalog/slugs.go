package catalog

import (
	"context"

	"github.com/yanizio/catalog-console/internal/slug"
)

var _ slug.Source = (*Client)(nil)

// Slugs lists the persisted slugs of kind.  The service has no existence
// endpoint, so categories are read as one large page and products from the
// admin list.
func (c *Client) Slugs(ctx context.Context, kind slug.Kind) ([]slug.Entry, error) {
	switch kind {
	case slug.KindCategory:
		page, err := c.ListCategories(ctx, ListParams{Page: 1, Limit: c.scanLimit})
		if err != nil {
			return nil, err
		}
		out := make([]slug.Entry, 0, len(page.Items))
		for _, cat := range page.Items {
			out = append(out, slug.Entry{ID: cat.ID, Slug: cat.Slug})
		}
		return out, nil
	case slug.KindProduct:
		products, err := c.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]slug.Entry, 0, len(products))
		for _, p := range products {
			out = append(out, slug.Entry{ID: p.ID, Slug: p.Slug})
		}
		return out, nil
	default:
		return nil, slug.ErrUnknownKind
	}
}
