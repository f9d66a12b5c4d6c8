package core

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// healthCheckTimeout bounds the time all probes get together.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one dependency of the relay, such as the outbound
// circuit breaker.
type HealthProbe interface {
	Name() string
	// Check returns an error when the dependency is degraded. It must honour
	// the context deadline.
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Service    string                     `json:"service"`
	Endpoints  map[string]string          `json:"endpoints"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every probe concurrently and reports the result. The
// relay keeps accepting events while a dependency is degraded, so the
// endpoint always answers 200 and signals trouble through the status field
// ("healthy" or "degraded").
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Endpoints: s.endpoints(),
	}

	if len(s.HealthProbes) > 0 {
		resp.Components = runProbes(ctx, s.HealthProbes)
		for _, c := range resp.Components {
			if c.Status != "healthy" {
				resp.Status = "degraded"
				break
			}
		}
	}

	JSON(w, r, http.StatusOK, resp)
}

func (s *Server) endpoints() map[string]string {
	path := "/webhook"
	if s.Config != nil && s.Config.Server.Path != "" {
		path = s.Config.Server.Path
	}
	return map[string]string{
		"webhook": "POST " + path,
		"health":  "GET /health",
	}
}

// runProbes executes probes in parallel. Probes still running when ctx
// expires are reported as timed out; a panicking probe is reported as
// unhealthy.
func runProbes(ctx context.Context, probes []HealthProbe) map[string]componentStatus {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]error, len(probes))
	)

	for _, probe := range probes {
		wg.Add(1)
		go func(p HealthProbe) {
			defer wg.Done()

			var err error
			func() {
				defer func() {
					if rvr := recover(); rvr != nil {
						err = fmt.Errorf("probe panicked: %v", rvr)
					}
				}()
				err = p.Check(ctx)
			}()

			mu.Lock()
			results[p.Name()] = err
			mu.Unlock()
		}(probe)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	components := make(map[string]componentStatus, len(probes))
	for _, probe := range probes {
		name := probe.Name()
		err, ok := results[name]
		switch {
		case !ok:
			components[name] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		case err != nil:
			components[name] = componentStatus{Status: "unhealthy", Message: err.Error()}
		default:
			components[name] = componentStatus{Status: "healthy"}
		}
	}
	return components
}
