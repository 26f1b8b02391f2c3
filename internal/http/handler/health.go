package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2025-03-01T14:30:00.000Z"`
}

// HealthCheck godoc
// @Summary      Readiness check
// @Description  Reports ok when the document store answers a ping.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  errorPayload
// @Router       /api/health [get]
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := store.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.JSON(healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
