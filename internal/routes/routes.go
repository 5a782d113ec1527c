package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"odoo-leads/internal/controllers"
	"odoo-leads/internal/services"
)

// Services - зависимости HTTP API.
type Services struct {
	Invoices services.InvoiceServiceInterface
	Health   services.HealthServiceInterface
	// Dedup - общий для сервера; nil - создаётся свой.
	Dedup *controllers.RequestDeduplicator
}

func InitRouter(e *echo.Echo, svc Services, logger *zap.Logger) {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	if svc.Dedup == nil {
		svc.Dedup = controllers.NewRequestDeduplicator()
	}

	RUN_HEALTH_ROUTER(e, svc.Health)
	RUN_INVOICE_ROUTER(api, svc.Invoices, svc.Dedup, logger)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	logger.Info("InitRouter: Все маршруты успешно созданы")
}
