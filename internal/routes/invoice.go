package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"odoo-leads/internal/controllers"
	"odoo-leads/internal/services"
)

func RUN_INVOICE_ROUTER(api *echo.Group, invoiceService services.InvoiceServiceInterface, dedup *controllers.RequestDeduplicator, logger *zap.Logger) {
	invoiceCtrl := controllers.NewInvoiceController(invoiceService, dedup, logger.Named("invoice_api"))

	api.POST("/create_invoice", invoiceCtrl.CreateInvoice)
	api.POST("/mark_invoice_paid", invoiceCtrl.MarkPaid)
	api.GET("/invoices/:id", invoiceCtrl.GetInvoice)
	api.GET("/invoices/by-stripe/:session", invoiceCtrl.GetByStripeSession)
}
