package catalog

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
)

// Dashboard holds the entity counters shown on the landing page.
type Dashboard struct {
	Categories     int `json:"categories"`
	Products       int `json:"products"`
	Branches       int `json:"branches"`
	BranchProducts int `json:"branchProducts"`
}

// handleDashboard fetches the four counters concurrently.  The category
// total comes from a one-item page's meta.
func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var d Dashboard
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		page, err := c.cat.ListCategories(ctx, catalog.ListParams{Page: 1, Limit: 1})
		d.Categories = page.Meta.Total
		return err
	})
	g.Go(func() error {
		ps, err := c.cat.ListProducts(ctx)
		d.Products = len(ps)
		return err
	})
	g.Go(func() error {
		bs, err := c.cat.ListBranches(ctx)
		d.Branches = len(bs)
		return err
	})
	g.Go(func() error {
		bps, err := c.cat.ListBranchProducts(ctx)
		d.BranchProducts = len(bps)
		return err
	})

	if err := g.Wait(); err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, d)
}
