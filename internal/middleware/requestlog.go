// internal/middleware/requestlog.go
//
// Request logging.
//
// RequestLog must sit after chi's RequestID (and after requestinfo.Enrich
// when client details are wanted).  It attaches a request-scoped sugared
// logger to the context, so handlers log through logger.FromContext and
// every line carries the request id, and writes one access line per
// request when the handler returns.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/requestinfo"
)

// RequestLog logs one line per request through base (zap.S() when nil).
func RequestLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := base
			if b == nil {
				b = zap.S()
			}
			log := b.With(
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

			fields := []any{
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields, "ip", info.Geo.IP.String(), "browser", info.UA.Browser)
			}
			switch status := ww.Status(); {
			case status >= 500:
				log.Errorw("request", fields...)
			case status >= 400:
				log.Warnw("request", fields...)
			default:
				log.Infow("request", fields...)
			}
		})
	}
}
