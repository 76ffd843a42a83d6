package httpx

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports 200 when every check passes and 503 otherwise.
// Without checks it is a plain liveness probe.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			body.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					body.Checks[name] = err.Error()
					body.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				body.Checks[name] = "ok"
			}
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(status)
			return
		}
		WriteJSON(w, status, body)
	}
}
