// internal/slug/oracle.go
//
// Existence oracle.
//
// Context
// -------
// The catalog backend owns the uniqueness constraint.  The console only
// asks “is this slug already used by some other entity of the same kind?”
// to warn the user early.  The answer is advisory: a failed lookup reports
// false (not taken) so a flaky backend never blocks editing, and the
// backend rejects real duplicates at save time.
//
// Workflow
// --------
//  1. Blank candidate → false, no I/O.
//  2. Source.Slugs(kind) returns the persisted {ID, Slug} set.  Concurrent
//     fetches for the same kind share one request (singleflight); nothing
//     is cached past the call.
//  3. Case-insensitive match whose ID differs from excludeID → true.

package slug

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/catalog-console/internal/metrics"
)

// Kind scopes uniqueness.  Products and categories have separate slug
// namespaces.
type Kind string

const (
	KindCategory Kind = "category"
	KindProduct  Kind = "product"
)

// ErrUnknownKind is returned for a Kind without a configured oracle.
var ErrUnknownKind = errors.New("slug: unknown entity kind")

// ParseKind accepts the singular or plural spelling used in URLs.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "category", "categories":
		return KindCategory, true
	case "product", "products":
		return KindProduct, true
	default:
		return "", false
	}
}

// ID identifies a persisted entity.  NoID means the entity is being created.
type ID = int64

const NoID ID = 0

// Entry is one persisted slug.
type Entry struct {
	ID   ID
	Slug string
}

// Source lists the persisted slugs of a kind.
type Source interface {
	Slugs(ctx context.Context, kind Kind) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, kind Kind) ([]Entry, error)

func (f SourceFunc) Slugs(ctx context.Context, kind Kind) ([]Entry, error) { return f(ctx, kind) }

// Exists is an oracle already bound to a kind and an excluded id.
type Exists func(ctx context.Context, candidate string) bool

// Oracle answers existence queries for one kind.
type Oracle struct {
	kind Kind
	src  Source
	log  *zap.SugaredLogger
	sfg  singleflight.Group
}

// NewOracle returns an Oracle for kind backed by src.  A nil log falls back
// to the global sugared logger.
func NewOracle(kind Kind, src Source, log *zap.SugaredLogger) *Oracle {
	if log == nil {
		log = zap.S()
	}
	return &Oracle{kind: kind, src: src, log: log.With("kind", string(kind))}
}

// Kind reports the namespace this oracle covers.
func (o *Oracle) Kind() Kind { return o.kind }

// Exists reports whether candidate is used by an entity other than
// excludeID.  It never fails; lookup errors report false.
func (o *Oracle) Exists(ctx context.Context, candidate string, excludeID ID) bool {
	want := strings.ToLower(strings.TrimSpace(candidate))
	if want == "" {
		return false
	}

	metrics.OracleLookups.WithLabelValues(string(o.kind)).Inc()

	ch := o.sfg.DoChan(string(o.kind), func() (any, error) {
		// Detached from the first caller so its cancellation does not fail
		// the callers that joined the flight.
		return o.src.Slugs(context.WithoutCancel(ctx), o.kind)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		o.log.Debugw("slug lookup abandoned", "slug", want, "err", ctx.Err())
		return false
	case res = <-ch:
	}
	if res.Err != nil {
		metrics.OracleFailures.WithLabelValues(string(o.kind)).Inc()
		o.log.Warnw("slug lookup failed, treating as free", "slug", want, "err", res.Err)
		return false
	}

	for _, e := range res.Val.([]Entry) {
		if e.ID == excludeID && excludeID != NoID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(e.Slug)) == want {
			return true
		}
	}
	return false
}

// For binds excludeID, producing the Exists closure the resolver and the
// live validator consume.
func (o *Oracle) For(excludeID ID) Exists {
	return func(ctx context.Context, candidate string) bool {
		return o.Exists(ctx, candidate, excludeID)
	}
}
