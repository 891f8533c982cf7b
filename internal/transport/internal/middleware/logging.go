package middleware

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// requestIDPattern bounds what an incoming X-Request-ID may contain before
// it is echoed and logged.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.:]{1,128}$`)

// NewLoggingMiddleware creates middleware that assigns a request id and
// logs each request with its status and duration. An incoming
// X-Request-ID is kept when well formed; otherwise a UUID is generated.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) transportcore.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(pkgoauth.HeaderRequestID)
			if !requestIDPattern.MatchString(requestID) {
				requestID = uuid.NewString()
			}

			tw := transportcore.Track(w)
			tw.Header().Set(pkgoauth.HeaderRequestID, requestID)

			next.ServeHTTP(tw, r.WithContext(transportcore.ContextWithRequestID(r.Context(), requestID)))

			logger.Info("http request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", tw.Status(),
				"bytes", tw.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
