// cmd/web/main.go
//
// Catalog console – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Bootstrap console logger (until the log directory is known).
//
//  2. Vault client when VAULT_ADDR is set, then config.Load (which resolves
//     vault: references).
//
//  3. Daily rotating file logger (tees to console when running in a TTY).
//
//  4. Embedded form definitions.
//
//  5. Backend clients.  Calls the console makes on its own behalf go through
//     auth.Transport, which attaches the session's bearer token and
//     refreshes it once on 401.
//
//  6. Slug oracles + resolver, session manager + janitor, CSRF, audit.
//
//  7. Router:
//
//     • RequestID → Recoverer → request info → access log
//     • security headers → ForceHTTPS → session → CSRF
//     • /metrics, /healthz
//     • /api/catalog|auth|images/*  – same-origin proxies
//     • components                  – /api/session, /api/…
//
//  8. Serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/catalog-console/internal/audit"
	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/catalog"
	"github.com/yanizio/catalog-console/internal/component"
	"github.com/yanizio/catalog-console/internal/config"
	"github.com/yanizio/catalog-console/internal/database"
	"github.com/yanizio/catalog-console/internal/form"
	"github.com/yanizio/catalog-console/internal/image"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/middleware"
	"github.com/yanizio/catalog-console/internal/proxy"
	"github.com/yanizio/catalog-console/internal/requestinfo"
	"github.com/yanizio/catalog-console/internal/server"
	"github.com/yanizio/catalog-console/internal/session"
	"github.com/yanizio/catalog-console/internal/slug"
	"github.com/yanizio/catalog-console/internal/vault"

	_ "github.com/yanizio/catalog-console/components/auth"    // /api/session
	_ "github.com/yanizio/catalog-console/components/catalog" // /api/…
)

const janitorInterval = time.Minute

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	boot := logger.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration (Vault first, when configured) ────────────────
	//
	var secrets config.Secrets
	if vault.Enabled() {
		vc, err := vault.New(ctx, boot)
		if err != nil {
			boot.Fatalw("vault init failed", "err", err)
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		boot.Fatalw("config load failed", "err", err)
	}

	logDir := cfg.Log.Dir
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(cfg.Paths.Root, logDir)
	}
	log, err := logger.New(logDir, cfg.Log.Level, runningInTTY())
	if err != nil {
		boot.Fatalw("start logger", "err", err)
	}
	defer func() { _ = log.Sync() }()

	if err := form.LoadEmbedded(); err != nil {
		log.Fatalw("form definitions invalid", "err", err)
	}
	log.Infow("forms registered", "ids", form.IDs())

	//
	// ── 2.  Backend clients ─────────────────────────────────────────────
	//
	authClient := auth.NewClient(cfg.Backends.AuthURL, cfg.Backends.Timeout)
	backendHTTP := &http.Client{
		Timeout:   cfg.Backends.Timeout,
		Transport: &auth.Transport{Refresher: authClient},
	}
	cat := catalog.New(cfg.Backends.CatalogURL, backendHTTP, catalog.WithScanLimit(cfg.Slug.ScanLimit))
	images := image.New(cfg.Backends.ImageURL, backendHTTP)

	resolver := slug.NewResolver([]*slug.Oracle{
		slug.NewOracle(slug.KindCategory, cat, log),
		slug.NewOracle(slug.KindProduct, cat, log),
	}, slug.WithMaxAttempts(cfg.Slug.MaxAttempts), slug.WithLogger(log))

	//
	// ── 3.  Sessions, CSRF, audit, request info ─────────────────────────
	//
	sessions := session.NewManager(cfg.Session)
	go sessions.Janitor(ctx, janitorInterval)

	csrf := form.NewCSRF(cfg.Session.Secret)

	var recorder audit.Recorder = audit.Nop{}
	if cfg.Audit.DSN != "" {
		db, err := database.Open(ctx, cfg.Audit.DSN)
		if err != nil {
			log.Fatalw("audit DB connect failed", "err", err)
		}
		defer db.Close()
		recorder = audit.NewSQL(db)
		log.Infow("audit trail online")
	}

	enricher, err := requestinfo.New(cfg.RequestInfo.GeoIPDB)
	if err != nil {
		log.Fatalw("request info init failed", "err", err)
	}
	defer enricher.Close()

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.Recoverer,
		enricher.Middleware,
		middleware.RequestLog(log),
		middleware.Security,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
		sessions.Middleware,
		csrf.Middleware(component.CSRFBinding),
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	proxyRT := http.DefaultTransport
	if err := proxy.Mount(r, proxyRT,
		proxy.Upstream{Name: "catalog", Prefix: "/api/catalog", Target: cfg.Backends.CatalogURL},
		proxy.Upstream{Name: "auth", Prefix: "/api/auth", Target: cfg.Backends.AuthURL},
		proxy.Upstream{Name: "images", Prefix: image.ProxyPrefix, Target: cfg.Backends.ImageURL},
	); err != nil {
		log.Fatalw("proxy setup failed", "err", err)
	}

	if err := component.Mount(r, component.Deps{
		Config:   cfg,
		Auth:     authClient,
		Catalog:  cat,
		Images:   images,
		Sessions: sessions,
		Resolver: resolver,
		CSRF:     csrf,
		Audit:    recorder,
	}); err != nil {
		log.Fatalw("component init failed", "err", err)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP, r)
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout); err != nil {
		zap.S().Errorw("http server", "err", err)
		os.Exit(1)
	}
	log.Infow("console stopped")
}
