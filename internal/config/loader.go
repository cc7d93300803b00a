// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `CONSOLE_`, where `__` maps to “.”
     (e.g., `CONSOLE_BACKENDS__CATALOG_URL → backends.catalog_url`).

After merging, every string leaf of the form `vault:<mount/path>#<key>` is
swapped for the secret it names.  The tree is then unmarshalled, given
defaults, validated, and cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans for root discovery, YAML read, and each Vault reference.
  • ERROR spans for parse, overlay, Vault, unmarshal, and validation
    failures.
  • Logs use `zap.S()` so early boot problems surface on the bootstrap
    logger before the file logger exists.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "CONSOLE_"

const vaultPrefix = "vault:"

// secretTTL is how long a resolved secret stays in the Vault client's cache.
const secretTTL = 10 * time.Minute

var current atomic.Pointer[Config]

// Secrets resolves a KV-v2 reference.  *vault.Client satisfies it.
type Secrets interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves CONSOLE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable heuristic for the bin/ layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides, resolves Vault references
// through secrets, validates, and caches the result.  secrets may be nil
// when no value uses the vault: prefix.
func Load(ctx context.Context, secrets Secrets) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"catalog_url", cfg.Backends.CatalogURL,
		"audit", cfg.Audit.DSN != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets rewrites vault:<path>#<key> leaves in place.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets Secrets) error {
	for _, key := range k.Keys() {
		raw, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(raw, vaultPrefix) {
			continue
		}
		path, field, ok := parseRef(raw)
		if !ok {
			return fmt.Errorf("config %s: malformed vault reference %q", key, raw)
		}
		if secrets == nil {
			return fmt.Errorf("config %s: vault reference but no vault client (set VAULT_ADDR)", key)
		}
		val, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		zap.S().Debugw("config vault reference resolved", "key", key, "path", path)
	}
	return nil
}

// parseRef splits "vault:secret/console#session_secret".
func parseRef(raw string) (path, key string, ok bool) {
	ref := strings.TrimPrefix(raw, vaultPrefix)
	path, key, ok = strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", "", false
	}
	return path, key, true
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }
