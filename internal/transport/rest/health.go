package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger is anything that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe is a named dependency checked by /ready and /health. A failing
// optional probe degrades /health but never fails readiness.
type Probe struct {
	Name     string
	Pinger   Pinger
	Optional bool
}

const pingTimeout = 3 * time.Second

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDegraded = "degraded"
)

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	version string
	probes  []Probe
}

// NewHealthHandler checks db as the required "database" component plus any
// extra probes.
func NewHealthHandler(version string, db Pinger, extra ...Probe) *HealthHandler {
	probes := append([]Probe{{Name: "database", Pinger: db}}, extra...)
	return &HealthHandler{version: version, probes: probes}
}

// Routes mounts the probes on r.
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/live", h.Live)
	r.Get("/ready", h.Ready)
	r.Get("/health", h.Health)
}

// HealthResponse is the JSON body of every probe endpoint.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live always answers 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready answers 503 when a required component is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, _ := h.check(r.Context())
	code := http.StatusOK
	if status == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Timestamp: time.Now()})
}

// Health reports every component with its ping latency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, components := h.check(r.Context())
	code := http.StatusOK
	if status == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

// check pings all probes concurrently.
func (h *HealthHandler) check(ctx context.Context) (string, map[string]CompStatus) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		components = make(map[string]CompStatus, len(h.probes))
		overall    = statusOK
	)

	for _, p := range h.probes {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			err := p.Pinger.Ping(ctx)
			latency := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				components[p.Name] = CompStatus{Status: statusDown}
				switch {
				case !p.Optional:
					overall = statusDown
				case overall == statusOK:
					overall = statusDegraded
				}
				return
			}
			components[p.Name] = CompStatus{Status: statusOK, Latency: latency.String()}
		}()
	}
	wg.Wait()

	return overall, components
}
