package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// healthProbeTimeout bounds a single probe run.
const healthProbeTimeout = 3 * time.Second

// HealthProbe checks one dependency. A nil error means healthy.
type HealthProbe func(ctx context.Context) error

// healthResponse represents the JSON response for health checks.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports liveness and, when probes are configured, the
// state of the dependencies token validation relies on.
type healthHandler struct {
	probes  map[string]HealthProbe
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a handler for the /health endpoint. Each probe
// is run on every request; any failure turns the answer into 503. A probe
// that outlives its deadline is reported unavailable even if it ignores ctx.
// If logger is nil, it uses the default slog logger.
func NewHealthHandler(probes map[string]HealthProbe, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthHandler{probes: probes, timeout: healthProbeTimeout, logger: logger}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if len(h.probes) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.probes))
		for name, probe := range h.probes {
			if err := runProbe(ctx, probe); err != nil {
				h.logger.Warn("health probe failed", "probe", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, h.logger, status, resp)
}

// runProbe returns when probe does or when ctx is done, whichever is first.
// The key-set fetch behind the jwks probe is detached from ctx, so the
// deadline has to be enforced here.
func runProbe(ctx context.Context, probe HealthProbe) error {
	done := make(chan error, 1)
	go func() { done <- probe(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
