// internal/config/model.go
//
// Typed configuration model for the catalog console.
//
// Context
// -------
// These structs define the shape of the tree that loader.go assembles from
// `.env`, `conf/global.yaml`, and `CONSOLE_`-prefixed environment overrides.
// Values written as `vault:<mount/path>#<key>` are replaced with the Vault
// secret before unmarshalling, so the model only ever holds plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`.  Durations accept Go syntax ("400ms").
//   • Zero values are filled by applyDefaults; YAML only needs to name what
//     differs from the defaults.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Backends section
//

// Backends locates the three services the console fronts.  Timeout bounds
// every call the console itself makes; proxied browser calls are not
// limited beyond the server's write timeout.
type Backends struct {
	CatalogURL string        `koanf:"catalog_url" validate:"required,url"`
	AuthURL    string        `koanf:"auth_url"    validate:"required,url"`
	ImageURL   string        `koanf:"image_url"   validate:"required,url"`
	Timeout    time.Duration `koanf:"timeout"     validate:"gte=0"`
}

//
// Session section
//

// Session configures the signed session cookie and the in-memory store.
// Secret normally comes from Vault.
type Session struct {
	Secret     string        `koanf:"secret"      validate:"required,min=32"`
	CookieName string        `koanf:"cookie_name" validate:"required"`
	TTL        time.Duration `koanf:"ttl"         validate:"gte=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

//
// Slug section
//

// Slug tunes the slug subsystem.  ScanLimit is the page size used when the
// catalog is scanned for existing slugs.
type Slug struct {
	Debounce     time.Duration `koanf:"debounce"      validate:"gte=0"`
	CheckTimeout time.Duration `koanf:"check_timeout" validate:"gte=0"`
	MaxAttempts  int           `koanf:"max_attempts"  validate:"gte=0"`
	ScanLimit    int           `koanf:"scan_limit"    validate:"gte=0"`
}

//
// Auth, audit, request-info, and log sections
//

// Auth restricts console access to backend-issued roles.  Empty means any
// authenticated user.
type Auth struct {
	AllowedRoles []string `koanf:"allowed_roles"`
}

// Audit enables the MySQL audit trail when DSN is set.
type Audit struct {
	DSN string `koanf:"dsn"`
}

// RequestInfo points at an optional GeoLite2 database.
type RequestInfo struct {
	GeoIPDB string `koanf:"geoip_db" validate:"omitempty,file"`
}

// Log controls the file logger.  Dir is relative to Paths.Root unless
// absolute.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // CONSOLE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP        HTTP        `koanf:"http"`
	Backends    Backends    `koanf:"backends"`
	Session     Session     `koanf:"session"`
	Slug        Slug        `koanf:"slug"`
	Auth        Auth        `koanf:"auth"`
	Audit       Audit       `koanf:"audit"`
	RequestInfo RequestInfo `koanf:"requestinfo"`
	Log         Log         `koanf:"log"`
	Paths       Paths       `koanf:"-"`
}

// applyDefaults fills zero values.  Called after unmarshal, before
// validation.
func applyDefaults(c *Config) {
	setDur := func(d *time.Duration, def time.Duration) {
		if *d == 0 {
			*d = def
		}
	}
	setInt := func(n *int, def int) {
		if *n == 0 {
			*n = def
		}
	}

	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	setDur(&c.HTTP.ReadTimeout, 10*time.Second)
	setDur(&c.HTTP.WriteTimeout, 30*time.Second)
	setDur(&c.HTTP.IdleTimeout, 60*time.Second)
	setDur(&c.HTTP.ShutdownTimeout, 15*time.Second)

	setDur(&c.Backends.Timeout, 10*time.Second)

	if c.Session.CookieName == "" {
		c.Session.CookieName = "console_session"
	}
	setDur(&c.Session.TTL, 12*time.Hour)
	setInt(&c.Session.MaxEntries, 1000)

	setDur(&c.Slug.Debounce, 400*time.Millisecond)
	setDur(&c.Slug.CheckTimeout, 5*time.Second)
	setInt(&c.Slug.MaxAttempts, 1000)
	setInt(&c.Slug.ScanLimit, 5000)

	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
