package shield

import (
	"log/slog"
	"net/http"

	"github.com/hazyhaar/rwd/idgen"
	"github.com/hazyhaar/rwd/kit"
)

// RequestHeader carries the request id in both directions.
const RequestHeader = "X-Request-ID"

var newRequestID = idgen.Prefixed("req_", idgen.UUIDv7())

// RequestID tags each request with an id, kept from the X-Request-ID header
// when the caller sent a usable one. The id is stored with kit.WithRequestID,
// echoed in the response and logged at debug level.
func RequestID(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestHeader)
			if id == "" || len(id) > 128 {
				id = newRequestID()
			}
			w.Header().Set(RequestHeader, id)

			ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), "http")
			logger.Debug("request", "request_id", id, "method", r.Method, "path", r.URL.Path)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
