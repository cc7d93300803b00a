// internal/component/deps.go
package component

import (
	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/config"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/image"
	"github.com/yanizio/catalog-console/internal/session"
	"github.com/yanizio/catalog-console/internal/slug"
)

// Deps exposes process-wide resources to Components during Init.
type Deps struct {
	Config   *config.Config
	Auth     *auth.Client
	Catalog  *catalog.Client
	Images   *image.Client
	Sessions *session.Manager
	Resolver *slug.Resolver
	CSRF     *form.CSRF
	Audit    audit.Recorder
}
