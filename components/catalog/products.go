package catalog

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/image"
	"github.com/yanizio/catalog-console/internal/slug"
)

// maxSearchResults caps the product picker used when binding to a branch.
const maxSearchResults = 50

// matchProducts filters by name, full name, or slug, case-insensitively.
// limit ≤ 0 means unlimited.
func matchProducts(all []catalog.Product, q string, limit int) []catalog.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]catalog.Product, 0)
	for _, p := range all {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.FullName), q) &&
			!strings.Contains(strings.ToLower(p.Slug), q) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (c *Component) handleProductList(w http.ResponseWriter, r *http.Request) {
	all, err := c.cat.ListProducts(r.Context())
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, matchProducts(all, r.URL.Query().Get("q"), 0))
}

func (c *Component) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		component.JSON(w, r, http.StatusOK, []catalog.Product{})
		return
	}
	all, err := c.cat.ListProducts(r.Context())
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, matchProducts(all, q, maxSearchResults))
}

func (c *Component) handleProductGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := c.cat.GetProduct(r.Context(), id)
	if err != nil {
		backendError(w, r, err, "load_failed")
		return
	}
	component.JSON(w, r, http.StatusOK, p)
}

type productSaved struct {
	Product catalog.Product `json:"product"`
	Images  []image.Result  `json:"images,omitempty"`
}

// handleProductSave serves POST (create) and PUT /{id} (update).  Multipart
// bodies may carry files under "images"; "mainImage" is the index of the
// main one.
func (c *Component) handleProductSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := submit(w, r, "catalog/product")
	if !ok {
		return
	}

	name := v.String("name")
	s, ok := c.slugFor(w, r, slug.KindProduct, v.String("slug"), name, id)
	if !ok || !gate(w, r, slug.KindProduct, id, s) {
		return
	}

	in := catalog.ProductInput{
		Name:        name,
		Slug:        s,
		Price:       v.Float("price"),
		CategoryID:  v.Int("categoryId"),
		FullName:    v.String("fullName"),
		Description: v.String("description"),
		SortOrder:   v.IntPtr("sortOrder"),
	}

	var (
		out    catalog.Product
		err    error
		action = audit.ActionCreate
		status = http.StatusCreated
	)
	if id == 0 {
		out, err = c.cat.CreateProduct(r.Context(), in)
	} else {
		action, status = audit.ActionUpdate, http.StatusOK
		out, err = c.cat.UpdateProduct(r.Context(), id, in)
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
	c.record(r, action, "product", out.ID, s)

	res := productSaved{Product: out}
	if files := form.Files(r, "images"); len(files) > 0 {
		res.Images = c.uploadStaged(r, files, out.ID)
	}
	component.JSON(w, r, status, res)
}

// uploadStaged sends the request's files for product id.  When the create
// response carried no id nothing can be linked, and every file is reported
// as skipped.
func (c *Component) uploadStaged(r *http.Request, files []*multipart.FileHeader, id int64) []image.Result {
	if id == 0 {
		out := make([]image.Result, len(files))
		for i, fh := range files {
			out[i] = image.Result{Name: fh.Filename, Error: "product id unknown, upload skipped"}
		}
		return out
	}

	main, err := strconv.Atoi(r.FormValue("mainImage"))
	if err != nil {
		main = 0
	}

	staged := make([]image.Staged, 0, len(files))
	var failed []image.Result
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, image.Result{Name: fh.Filename, Error: err.Error()})
			continue
		}
		defer f.Close()
		staged = append(staged, image.Staged{
			File: image.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f},
			Main: i == main,
		})
	}
	return append(c.images.UploadStaged(r.Context(), staged, id), failed...)
}

func (c *Component) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.cat.DeleteProduct(r.Context(), id); err != nil {
		backendError(w, r, err, "delete_failed")
		return
	}
	c.record(r, audit.ActionDelete, "product", id, "")
	w.WriteHeader(http.StatusNoContent)
}
