package http

import (
	"net/http"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
)

type healthChecks struct {
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

// LivezHandler always reports ok while the process is serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler verifies the critical dependencies: the durable store and
// the key-value store.
func ReadyzHandler(startTime time.Time, version string, st store.Store, kvStore kv.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{Database: "ok", Cache: "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := kvStore.Ping(r.Context()); err != nil {
			checks.Cache = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
