package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/face"
)

const version = "0.1.0"

// CapabilityReporter exposes model load state for readiness checks
type CapabilityReporter interface {
	Resolved() bool
	Status() map[string]face.CapabilityStatus
}

// Pinger checks a backing store. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	capabilities CapabilityReporter
	db           Pinger
}

// NewHealthHandler creates the handler. db may be nil when no store is configured.
func NewHealthHandler(capabilities CapabilityReporter, db Pinger) *HealthHandler {
	return &HealthHandler{
		capabilities: capabilities,
		db:           db,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status       string                           `json:"status"`
	Capabilities map[string]face.CapabilityStatus `json:"capabilities,omitempty"`
	Database     string                           `json:"database,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: version,
	})
}

// Ready reports 503 until both model load attempts resolved. An unavailable
// capability is still ready: the service degrades instead of failing.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := ReadyResponse{Status: "ready"}
	status := fiber.StatusOK

	if h.capabilities != nil {
		resp.Capabilities = h.capabilities.Status()
		if !h.capabilities.Resolved() {
			resp.Status = "loading"
			status = fiber.StatusServiceUnavailable
		}
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		resp.Database = "ok"
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = "unreachable"
			resp.Status = "degraded"
			status = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(status).JSON(resp)
}
