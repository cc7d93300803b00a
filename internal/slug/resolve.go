// internal/slug/resolve.go
//
// Unique slug resolution.
//
// ResolveUnique normalises a display name and, when the base is occupied,
// probes base-2, base-3, … one at a time until the oracle reports a free
// candidate.  Probes are sequential on purpose: each check sees every
// entity created before it, and the loop usually ends after 0–2 probes.
//
// The suffix search is capped.  An oracle that always answers “taken”
// (a bug, or a backend gone mad) would otherwise spin forever, so after
// MaxAttempts probes the resolver returns base plus a random 8-hex suffix
// without asking again.

package slug

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/catalog-console/internal/metrics"
)

// Fallback replaces an empty base so the resolver never returns "".
const Fallback = "slug"

// DefaultMaxAttempts bounds the number of oracle probes per resolution.
const DefaultMaxAttempts = 1000

type resolveOptions struct {
	maxAttempts int
	log         *zap.SugaredLogger
	randSuffix  func() string
}

// Option tunes ResolveUnique.
type Option func(*resolveOptions)

// WithMaxAttempts overrides DefaultMaxAttempts.  n < 1 is ignored.
func WithMaxAttempts(n int) Option {
	return func(o *resolveOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithLogger routes resolver diagnostics to log.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *resolveOptions) {
		if log != nil {
			o.log = log
		}
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ResolveUnique returns the first free candidate among base, base-2,
// base-3, ….  The only error it returns is ctx.Err() when the caller
// cancels mid-search.
func ResolveUnique(ctx context.Context, name string, exists Exists, opts ...Option) (string, error) {
	o := resolveOptions{
		maxAttempts: DefaultMaxAttempts,
		log:         zap.S(),
		randSuffix:  randomSuffix,
	}
	for _, fn := range opts {
		fn(&o)
	}

	base := Normalize(name)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !exists(ctx, candidate) {
			metrics.ResolverAttempts.Observe(float64(attempt))
			return candidate, nil
		}
		// attempt 1 probed the bare base, so the next suffix is attempt+1.
		candidate = base + Separator + strconv.Itoa(attempt+1)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	metrics.ResolverAttempts.Observe(float64(o.maxAttempts))
	out := base + Separator + o.randSuffix()
	o.log.Warnw("slug suffix search exhausted, using random suffix",
		"base", base, "attempts", o.maxAttempts, "slug", out)
	return out, nil
}

// Resolver bundles an oracle with resolver options so handlers do not
// repeat them on every call.
type Resolver struct {
	oracles map[Kind]*Oracle
	opts    []Option
}

// NewResolver indexes oracles by kind.
func NewResolver(oracles []*Oracle, opts ...Option) *Resolver {
	m := make(map[Kind]*Oracle, len(oracles))
	for _, o := range oracles {
		m[o.Kind()] = o
	}
	return &Resolver{oracles: m, opts: opts}
}

// Oracle returns the oracle for kind, or nil.
func (r *Resolver) Oracle(kind Kind) *Oracle { return r.oracles[kind] }

// Resolve runs ResolveUnique for kind, excluding excludeID from collisions.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, name string, excludeID ID) (string, error) {
	o := r.oracles[kind]
	if o == nil {
		return "", ErrUnknownKind
	}
	return ResolveUnique(ctx, name, o.For(excludeID), r.opts...)
}

// Check is a one-shot, non-debounced existence query.
func (r *Resolver) Check(ctx context.Context, kind Kind, candidate string, excludeID ID) (bool, error) {
	o := r.oracles[kind]
	if o == nil {
		return false, ErrUnknownKind
	}
	return o.Exists(ctx, candidate, excludeID), nil
}
