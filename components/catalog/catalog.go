// components/catalog/catalog.go
//
// Catalog component – the console's JSON API over the catalog service.
//
// Context
// -------
// Every route here requires a logged-in user (and an allowed role when
// auth.allowed_roles is set).  Reads and writes go through catalog.Client,
// whose transport attaches the session's bearer token.  The slug subsystem
// is exposed under /api/slugs for generation, one-shot checks, and live
// watches bound to the session.
//
// Routes
// ------
//
//	GET    /api/dashboard
//	GET    /api/categories?page&limit&name      POST /api/categories
//	PUT    /api/categories/{id}                 DELETE /api/categories/{id}
//	GET    /api/products?q                      GET /api/products/search?q
//	GET    /api/products/{id}                   POST /api/products
//	PUT    /api/products/{id}                   DELETE /api/products/{id}
//	GET    /api/branches                        GET /api/branches/{id}
//	POST   /api/branches                        PUT|DELETE /api/branches/{id}
//	GET    /api/branch-products?branchId&productId
//	POST   /api/branch-products                 PUT|DELETE /api/branch-products/{id}
//	POST   /api/slugs/{kind}/generate           GET /api/slugs/{kind}/check
//	POST   /api/slugs/{kind}/watches            GET|PUT|DELETE /api/slugs/watches/{id}
//	GET    /api/audit?limit
//
//------------------------------------------------------------------------------

package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/catalog-console/internal/acl"
	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/image"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/slug"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the catalog API.
type Component struct {
	cat      *catalog.Client
	images   *image.Client
	resolver *slug.Resolver
	audit    audit.Recorder
	roles    []string

	debounce     time.Duration
	checkTimeout time.Duration
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "catalog" }

// Init captures the clients and slug settings.
func (c *Component) Init(d component.Deps) error {
	if d.Catalog == nil || d.Images == nil || d.Resolver == nil {
		return errors.New("catalog component needs Catalog, Images, and Resolver")
	}
	c.cat, c.images, c.resolver = d.Catalog, d.Images, d.Resolver
	c.audit = d.Audit
	if c.audit == nil {
		c.audit = audit.Nop{}
	}
	if d.Config != nil {
		c.roles = d.Config.Auth.AllowedRoles
		c.debounce = d.Config.Slug.Debounce
		c.checkTimeout = d.Config.Slug.CheckTimeout
	}
	return nil
}

// Routes registers every catalog endpoint behind the session gate.
func (c *Component) Routes(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(acl.RequireSession, acl.RequireRole(c.roles...))

		g.Get("/api/dashboard", c.handleDashboard)
		g.Get("/api/audit", c.handleAudit)

		g.Route("/api/categories", func(cr chi.Router) {
			cr.Get("/", c.handleCategoryList)
			cr.Post("/", c.handleCategorySave)
			cr.Put("/{id}", c.handleCategorySave)
			cr.Delete("/{id}", c.handleCategoryDelete)
		})
		g.Route("/api/products", func(pr chi.Router) {
			pr.Get("/", c.handleProductList)
			pr.Get("/search", c.handleProductSearch)
			pr.Get("/{id}", c.handleProductGet)
			pr.Post("/", c.handleProductSave)
			pr.Put("/{id}", c.handleProductSave)
			pr.Delete("/{id}", c.handleProductDelete)
		})
		g.Route("/api/branches", func(br chi.Router) {
			br.Get("/", c.handleBranchList)
			br.Get("/{id}", c.handleBranchGet)
			br.Post("/", c.handleBranchSave)
			br.Put("/{id}", c.handleBranchSave)
			br.Delete("/{id}", c.handleBranchDelete)
		})
		g.Route("/api/branch-products", func(bp chi.Router) {
			bp.Get("/", c.handleBindingList)
			bp.Post("/", c.handleBindingCreate)
			bp.Put("/{id}", c.handleBindingUpdate)
			bp.Delete("/{id}", c.handleBindingDelete)
		})
		g.Route("/api/slugs", func(sr chi.Router) {
			sr.Post("/{kind}/generate", c.handleSlugGenerate)
			sr.Get("/{kind}/check", c.handleSlugCheck)
			sr.Post("/{kind}/watches", c.handleWatchCreate)
			sr.Route("/watches/{watchID}", func(wr chi.Router) {
				wr.Get("/", c.handleWatchGet)
				wr.Put("/", c.handleWatchSubmit)
				wr.Delete("/", c.handleWatchDelete)
			})
		})
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── helpers ──────────────────────────────────────*/

// pathID parses {id}.  ok is false after a 400 was written.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		component.Error(w, r, http.StatusBadRequest, "bad_id", "Invalid id.", nil)
		return 0, false
	}
	return id, true
}

// backendError maps catalog and auth failures onto responses.  fallback is
// the code used for anything unexpected ("save_failed" for writes).
func backendError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		component.Error(w, r, http.StatusUnauthorized, "session_expired", "Your session has expired.  Please sign in again.", nil)
	case errors.Is(err, catalog.ErrDuplicateSlug):
		component.Error(w, r, http.StatusConflict, "slug_duplicate", "This slug is already in use.  Choose another.", nil)
	case errors.Is(err, catalog.ErrNotFound):
		component.Error(w, r, http.StatusNotFound, "not_found", "", nil)
	case errors.Is(err, catalog.ErrConflict):
		component.Error(w, r, http.StatusConflict, "conflict", "", nil)
	case r.Context().Err() != nil:
		log.Debugw("request cancelled", "err", err)
	default:
		log.Errorw("catalog backend failed", "err", err)
		component.Error(w, r, http.StatusBadGateway, fallback, "The catalog service rejected the request.", nil)
	}
}

// record writes an audit entry for a successful mutation.
func (c *Component) record(r *http.Request, action, entity string, id int64, s string) {
	c.audit.Record(r.Context(), audit.NewEntry(r.Context(), action, entity, id, s))
}

func (c *Component) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := c.audit.Recent(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("audit read failed", "err", err)
		component.Error(w, r, http.StatusInternalServerError, "audit_unavailable", "", nil)
		return
	}
	component.JSON(w, r, http.StatusOK, entries)
}
