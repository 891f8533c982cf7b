package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-resource-auth/pkg/oauth"
)

// NewRecoveryMiddleware creates middleware that recovers from panics,
// logs them with a stack trace and answers 500 if nothing was sent yet.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder transportcore.ErrorResponder, logger *slog.Logger) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := transportcore.Track(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logger.Error("panic recovered",
					"panic", recovered,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", tw.Header().Get(pkgoauth.HeaderRequestID),
					"stack", string(debug.Stack()),
				)
				responder.InternalError(tw, fmt.Errorf("panic: %v", recovered))
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
