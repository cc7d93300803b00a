package catalog

import (
	"net/http"

	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
)

func (c *Component) handleBranchList(w http.ResponseWriter, r *http.Request) {
	out, err := c.cat.ListBranches(r.Context())
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, out)
}

func (c *Component) handleBranchGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := c.cat.GetBranch(r.Context(), id)
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, b)
}

// handleBranchSave serves POST (create) and PUT /{id} (update).
func (c *Component) handleBranchSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := submit(w, r, "catalog/branch")
	if !ok {
		return
	}
	in := catalog.BranchInput{
		Name:        v.String("name"),
		Address:     v.String("address"),
		Description: v.String("description"),
		City:        v.String("city"),
		Region:      v.String("region"),
		Phone:       v.String("phone"),
		IsActive:    v.BoolPtr("isActive"),
	}

	var (
		out    catalog.Branch
		err    error
		action = audit.ActionCreate
		status = http.StatusCreated
	)
	if id == 0 {
		out, err = c.cat.CreateBranch(r.Context(), in)
	} else {
		action, status = audit.ActionUpdate, http.StatusOK
		out, err = c.cat.UpdateBranch(r.Context(), id, in)
	}
	if err != nil {
		backendError(w, r, err, "save_failed")
		return
	}
	if out.ID == 0 {
		out.ID = id
	}
	c.record(r, action, "branch", out.ID, "")
	component.JSON(w, r, status, out)
}

func (c *Component) handleBranchDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.cat.DeleteBranch(r.Context(), id); err != nil {
		backendError(w, r, err, "delete_failed")
		return
	}
	c.record(r, audit.ActionDelete, "branch", id, "")
	w.WriteHeader(http.StatusNoContent)
}
