package routes

import (
	"github.com/labstack/echo/v4"

	"odoo-leads/internal/controllers"
	"odoo-leads/internal/services"
)

func RUN_HEALTH_ROUTER(e *echo.Echo, healthService services.HealthServiceInterface) {
	healthCtrl := controllers.NewHealthController(healthService)

	e.GET("/health", healthCtrl.Health)
}
