package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/health"
)

type statusResponse struct {
	Status string `json:"status"`
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	svc     health.ReadinessUseCase
	timeout time.Duration
}

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler {
	return &HealthHandler{svc: svc, timeout: 2 * time.Second}
}

// Health answers as long as the process serves requests.
// @Summary Liveness
// @Tags    health
// @Produce json
// @Success 200 {object} handlers.statusResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, statusResponse{Status: "ok"})
}

// Ready reports every check. Storage failures make the engine unready; a
// missing or silent wallet is reported without failing.
// @Summary Readiness
// @Tags    health
// @Produce json
// @Success 200 {object} health.Report
// @Failure 503 {object} health.Report
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()
	rep := h.svc.Ready(ctx)
	if !rep.Ready {
		return presenter.JSON(c, http.StatusServiceUnavailable, rep)
	}
	return presenter.JSON(c, http.StatusOK, rep)
}
