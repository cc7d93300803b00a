// internal/cli/root.go
//
// catalogctl – operator CLI for the catalog console's backends.
//
// Context
// -------
// The CLI talks to the auth and catalog services directly, with the same
// clients the web console uses.  Credentials from `login` persist in a JSON
// file (auth.FileStore) and are attached to every catalog call by
// auth.Transport, which also refreshes them once on 401.
//
// Flags and environment
// ---------------------
//
//	--catalog-url   CATALOGCTL_CATALOG_URL   (default http://localhost:3000)
//	--auth-url      CATALOGCTL_AUTH_URL      (default http://localhost:3001)
//	--credentials   CATALOGCTL_CREDENTIALS   (default <user config dir>/catalogctl/credentials.json)
//	--timeout       per-call timeout         (default 10s)
//	--verbose       debug logging to stderr
package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/slug"
)

const envPrefix = "CATALOGCTL_"

// globals carries the persistent flags shared by every subcommand.
type globals struct {
	catalogURL  string
	authURL     string
	credentials string
	timeout     time.Duration
	verbose     bool
}

func envOr(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func defaultCredentials() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "catalogctl", "credentials.json")
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Catalog console operator CLI",
		Long:          "catalogctl signs in to the auth service and works with catalog slugs from the shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if g.verbose {
				logger.Bootstrap()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.catalogURL, "catalog-url", envOr("CATALOG_URL", "http://localhost:3000"), "catalog service base URL")
	pf.StringVar(&g.authURL, "auth-url", envOr("AUTH_URL", "http://localhost:3001"), "auth service base URL")
	pf.StringVar(&g.credentials, "credentials", envOr("CREDENTIALS", defaultCredentials()), "credentials file")
	pf.DurationVar(&g.timeout, "timeout", 10*time.Second, "per-call timeout")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(newLoginCmd(g), newLogoutCmd(g), newSlugCmd(g))
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

/*──────────────────────────── wiring helpers ──────────────────────────────*/

func (g *globals) store() *auth.FileStore { return auth.NewFileStore(g.credentials) }

func (g *globals) authClient() *auth.Client { return auth.NewClient(g.authURL, g.timeout) }

// catalogClient returns a client whose calls carry the stored credentials.
func (g *globals) catalogClient() *catalog.Client {
	hc := &http.Client{
		Timeout:   g.timeout,
		Transport: &auth.Transport{Store: g.store(), Refresher: g.authClient()},
	}
	return catalog.New(g.catalogURL, hc)
}

func (g *globals) resolver() *slug.Resolver {
	cat := g.catalogClient()
	log := zap.S()
	return slug.NewResolver([]*slug.Oracle{
		slug.NewOracle(slug.KindCategory, cat, log),
		slug.NewOracle(slug.KindProduct, cat, log),
	}, slug.WithLogger(log))
}
