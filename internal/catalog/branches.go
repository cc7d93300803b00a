package catalog

import (
	"context"
	"net/http"
)

const (
	branchesPath       = "/branches"
	branchProductsPath = "/branch-products"
)

func branchID(b Branch) int64               { return b.ID }
func branchProductID(b BranchProduct) int64 { return b.ID }

// ListBranches returns every branch.
func (c *Client) ListBranches(ctx context.Context) ([]Branch, error) {
	raw, err := c.call(ctx, http.MethodGet, branchesPath, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeList[Branch](raw)
}

// GetBranch returns branch id.
func (c *Client) GetBranch(ctx context.Context, id int64) (Branch, error) {
	raw, err := c.call(ctx, http.MethodGet, idPath(branchesPath, id), nil, nil, false)
	if err != nil {
		return Branch{}, err
	}
	return decodeEntity(raw, branchID)
}

// CreateBranch creates a branch.
func (c *Client) CreateBranch(ctx context.Context, in BranchInput) (Branch, error) {
	raw, err := c.write(ctx, "branch", http.MethodPost, branchesPath, in, false)
	if err != nil {
		return Branch{}, err
	}
	return decodeEntity(raw, branchID)
}

// UpdateBranch patches branch id.
func (c *Client) UpdateBranch(ctx context.Context, id int64, in BranchInput) (Branch, error) {
	raw, err := c.write(ctx, "branch", http.MethodPatch, idPath(branchesPath, id), in, false)
	if err != nil {
		return Branch{}, err
	}
	return decodeEntity(raw, branchID)
}

// DeleteBranch removes branch id.
func (c *Client) DeleteBranch(ctx context.Context, id int64) error {
	_, err := c.write(ctx, "branch", http.MethodDelete, idPath(branchesPath, id), nil, false)
	return err
}

// ListBranchProducts returns every binding.
func (c *Client) ListBranchProducts(ctx context.Context) ([]BranchProduct, error) {
	raw, err := c.call(ctx, http.MethodGet, branchProductsPath, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeList[BranchProduct](raw)
}

// CreateBranchProduct binds a product to a branch.  An existing binding of
// the same pair fails with ErrConflict.
func (c *Client) CreateBranchProduct(ctx context.Context, in BranchProductInput) (BranchProduct, error) {
	raw, err := c.write(ctx, "branch_product", http.MethodPost, branchProductsPath, in, false)
	if err != nil {
		return BranchProduct{}, err
	}
	return decodeEntity(raw, branchProductID)
}

// UpdateBranchProduct patches binding id.
func (c *Client) UpdateBranchProduct(ctx context.Context, id int64, p BranchProductPatch) (BranchProduct, error) {
	raw, err := c.write(ctx, "branch_product", http.MethodPatch, idPath(branchProductsPath, id), p, false)
	if err != nil {
		return BranchProduct{}, err
	}
	return decodeEntity(raw, branchProductID)
}

// DeleteBranchProduct removes binding id.
func (c *Client) DeleteBranchProduct(ctx context.Context, id int64) error {
	_, err := c.write(ctx, "branch_product", http.MethodDelete, idPath(branchProductsPath, id), nil, false)
	return err
}
