package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"odoo-leads/internal/services"
)

type HealthController struct {
	healthService services.HealthServiceInterface
}

func NewHealthController(healthService services.HealthServiceInterface) *HealthController {
	return &HealthController{healthService: healthService}
}

// Health всегда отвечает 200, состояние Odoo - в теле.
func (c *HealthController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.healthService.Ping(ctx.Request().Context()))
}
