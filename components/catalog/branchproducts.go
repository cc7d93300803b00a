package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
)

func filterBindings(all []catalog.BranchProduct, branchID, productID int64) []catalog.BranchProduct {
	out := make([]catalog.BranchProduct, 0, len(all))
	for _, b := range all {
		if branchID != 0 && b.BranchID != branchID {
			continue
		}
		if productID != 0 && b.ProductID != productID {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Component) handleBindingList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	branchID, _ := strconv.ParseInt(q.Get("branchId"), 10, 64)
	productID, _ := strconv.ParseInt(q.Get("productId"), 10, 64)

	all, err := c.cat.ListBranchProducts(r.Context())
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, filterBindings(all, branchID, productID))
}

func bindingExists(w http.ResponseWriter, r *http.Request) {
	component.Error(w, r, http.StatusConflict, "binding_exists",
		"This product is already bound to the selected branch.", nil)
}

// handleBindingCreate checks the pair against existing bindings first; the
// backend's own 409 covers the race.
func (c *Component) handleBindingCreate(w http.ResponseWriter, r *http.Request) {
	v, ok := submit(w, r, "catalog/branch-product")
	if !ok {
		return
	}
	in := catalog.BranchProductInput{
		BranchID:  v.Int("branchId"),
		ProductID: v.Int("productId"),
		Price:     v.Float("price"),
		Stock:     v.IntPtr("stock"),
		IsActive:  v.BoolPtr("isActive"),
	}

	existing, err := c.cat.ListBranchProducts(r.Context())
	if err != nil {
		backendError(w, r, err, "save_failed")
		return
	}
	if len(filterBindings(existing, in.BranchID, in.ProductID)) > 0 {
		bindingExists(w, r)
		return
	}

	out, err := c.cat.CreateBranchProduct(r.Context(), in)
	if errors.Is(err, catalog.ErrConflict) {
		bindingExists(w, r)
		return
	}
	if err != nil {
		backendError(w, r, err, "save_failed")
		return
	}
	c.record(r, audit.ActionCreate, "branch_product", out.ID, "")
	component.JSON(w, r, http.StatusCreated, out)
}

func (c *Component) handleBindingUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := submit(w, r, "catalog/branch-product-edit")
	if !ok {
		return
	}
	out, err := c.cat.UpdateBranchProduct(r.Context(), id, catalog.BranchProductPatch{
		Price:    v.FloatPtr("price"),
		Stock:    v.IntPtr("stock"),
		IsActive: v.BoolPtr("isActive"),
	})
	if err != nil {
		backendError(w, r, err, "save_failed")
		return
	}
	if out.ID == 0 {
		out.ID = id
	}
	c.record(r, audit.ActionUpdate, "branch_product", id, "")
	component.JSON(w, r, http.StatusOK, out)
}

func (c *Component) handleBindingDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.cat.DeleteBranchProduct(r.Context(), id); err != nil {
		backendError(w, r, err, "delete_failed")
		return
	}
	c.record(r, audit.ActionDelete, "branch_product", id, "")
	w.WriteHeader(http.StatusNoContent)
}
