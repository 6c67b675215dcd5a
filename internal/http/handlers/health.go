package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/database"
	"github.com/okarabulut/xtivi/pkg/httpclient"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        *database.DB
	breakers  *httpclient.Manager
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database used for the readiness component.
func (h *HealthHandler) WithDB(db *database.DB) *HealthHandler {
	h.db = db
	return h
}

// WithBreakerManager sets the circuit breaker manager reported on.
func (h *HealthHandler) WithBreakerManager(m *httpclient.Manager) *HealthHandler {
	h.breakers = m
	return h
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status          string            `json:"status" doc:"healthy or degraded"`
	Version         string            `json:"version"`
	Uptime          string            `json:"uptime"`
	Components      map[string]string `json:"components"`
	CircuitBreakers map[string]string `json:"circuit_breakers,omitempty"`
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// Register registers the health route.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns service health including database and upstream circuit breaker state",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth returns the health status.
func (h *HealthHandler) GetHealth(ctx context.Context, input *HealthInput) (*HealthOutput, error) {
	resp := HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: make(map[string]string),
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Components["database"] = "unreachable"
			resp.Status = "degraded"
		} else {
			resp.Components["database"] = "ok"
		}
	} else {
		resp.Components["database"] = "not_configured"
	}

	if h.breakers != nil {
		resp.CircuitBreakers = make(map[string]string)
		for name, state := range h.breakers.States() {
			resp.CircuitBreakers[name] = state.String()
			if state == httpclient.StateOpen {
				resp.Status = "degraded"
			}
		}
	}

	return &HealthOutput{Body: resp}, nil
}
