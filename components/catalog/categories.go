package catalog

import (
	"net/http"
	"strconv"

	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/slug"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (c *Component) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	out, err := c.cat.ListCategories(r.Context(), catalog.ListParams{Page: page, Limit: limit, Name: q.Get("name")})
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	if out.Meta.Page == 0 {
		out.Meta.Page, out.Meta.Limit = page, limit
	}
	component.JSON(w, r, http.StatusOK, out)
}

// handleCategorySave serves POST (create) and PUT /{id} (update).
func (c *Component) handleCategorySave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := submit(w, r, "catalog/category")
	if !ok {
		return
	}

	name := v.String("name")
	s, ok := c.slugFor(w, r, slug.KindCategory, v.String("slug"), name, id)
	if !ok || !gate(w, r, slug.KindCategory, id, s) {
		return
	}

	in := catalog.CategoryInput{
		Name:        name,
		Slug:        s,
		FullName:    v.String("fullName"),
		Description: v.String("description"),
		ParentID:    v.Int64Ptr("parentId"),
		SortOrder:   v.IntPtr("sortOrder"),
	}

	var (
		out    catalog.Category
		err    error
		action = audit.ActionCreate
		status = http.StatusCreated
	)
	if id == 0 {
		out, err = c.cat.CreateCategory(r.Context(), in)
	} else {
		action, status = audit.ActionUpdate, http.StatusOK
		out, err = c.cat.UpdateCategory(r.Context(), id, in)
	}
	if err != nil {
		backendError(w, r, err, "save_failed")
		return
	}
	if out.ID == 0 {
		out.ID = id
	}
	if out.Slug == "" {
		out.Slug = s
	}
	c.record(r, action, "category", out.ID, s)
	component.JSON(w, r, status, out)
}

func (c *Component) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.cat.DeleteCategory(r.Context(), id); err != nil {
		backendError(w, r, err, "delete_failed")
		return
	}
	c.record(r, audit.ActionDelete, "category", id, "")
	w.WriteHeader(http.StatusNoContent)
}
