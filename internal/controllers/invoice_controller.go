package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/services"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/utils"
)

// odooRequestTimeout - секунд на все вызовы Odoo одного запроса.
const odooRequestTimeout = 60

// InvoiceController - REST-обёртка над счетами Odoo для вебхуков n8n.
// Успешные ответы отдаются как есть, без конверта HttpResponse.
type InvoiceController struct {
	invoiceService services.InvoiceServiceInterface
	dedup          *RequestDeduplicator
	logger         *zap.Logger
}

func NewInvoiceController(invoiceService services.InvoiceServiceInterface, dedup *RequestDeduplicator, logger *zap.Logger) *InvoiceController {
	return &InvoiceController{invoiceService: invoiceService, dedup: dedup, logger: logger}
}

func (c *InvoiceController) CreateInvoice(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, odooRequestTimeout)
	defer cancel()

	var req dto.CreateInvoiceDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err))
	}
	if err := ctx.Validate(&req); err != nil {
		c.logger.Warn("CreateInvoice: ошибка валидации", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}

	lockKey := "create_invoice:" + req.StripeSessionID
	if !c.dedup.TryAcquire(lockKey, odooRequestTimeout*time.Second) {
		c.logger.Warn("CreateInvoice: повторный запрос по сессии уже обрабатывается", zap.String("session", req.StripeSessionID))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusConflict, "Invoice creation already in progress", nil))
	}
	defer c.dedup.Release(lockKey)

	res, err := c.invoiceService.CreateInvoice(reqCtx, req)
	if err != nil {
		c.logger.Error("CreateInvoice: не удалось создать счёт", zap.String("session", req.StripeSessionID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *InvoiceController) MarkPaid(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, odooRequestTimeout)
	defer cancel()

	var req dto.MarkPaidDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err))
	}
	if err := ctx.Validate(&req); err != nil {
		c.logger.Warn("MarkPaid: ошибка валидации", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.invoiceService.MarkPaid(reqCtx, req)
	if err != nil {
		c.logger.Error("MarkPaid: не удалось зарегистрировать платёж", zap.String("payment_id", req.PaymentID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *InvoiceController) GetInvoice(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, odooRequestTimeout)
	defer cancel()
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid invoice id"))
	}

	res, err := c.invoiceService.GetInvoice(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *InvoiceController) GetByStripeSession(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, odooRequestTimeout)
	defer cancel()

	res, err := c.invoiceService.GetByStripeSession(reqCtx, ctx.Param("session"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}
