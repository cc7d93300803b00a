//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client metadata: user-agent fingerprint, client IP with an
//  optional GeoLite2 country/city, and the arrival timestamp.  The structs
//  are inert, so they are safe to log or to copy into audit entries.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string
	Browser     string // "Chrome", "Firefox", …
	Version     string // "124.0.6367"
	OS          string
	OSVersion   string
	Device      string // "Desktop", "Mobile", "Tablet", "Other"
	IsBot       bool
	PrimaryLang string // first Accept-Language tag
}

// Geo holds IP-based location hints.  Empty when no database is loaded.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// RequestInfo is attached to the request context by Enricher.Middleware.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Enricher
//  -----------------------------
//

// Enricher owns the optional MaxMind handle.  The reader is safe for
// concurrent lookups.
type Enricher struct {
	geo *geoip2.Reader
}

// New opens dbPath when non-empty.  An empty path disables geo lookups.
func New(dbPath string) (*Enricher, error) {
	if dbPath == "" {
		return &Enricher{}, nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	return &Enricher{geo: r}, nil
}

// Close releases the MaxMind database.
func (e *Enricher) Close() error {
	if e.geo == nil {
		return nil
	}
	return e.geo.Close()
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{}

// WithInfo returns ctx carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the info stored by the middleware, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into UA.
func parseUA(raw, acceptLang string) UA {
	u := surfer.Parse(raw)

	out := UA{
		Raw:         raw,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionString(u.Browser.Version),
		OS:          strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion:   versionString(u.OS.Version),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
	switch u.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	parts := []int{int(v.Major), int(v.Minor), int(v.Patch)}
	for len(parts) > 1 && parts[len(parts)-1] == 0 {
		parts = parts[:len(parts)-1]
	}
	if parts[0] == 0 && len(parts) == 1 {
		return ""
	}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

// lookupGeo returns best-effort Geo data.
func (e *Enricher) lookupGeo(ip net.IP) Geo {
	if e.geo == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := e.geo.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
