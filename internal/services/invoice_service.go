package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/utils"
)

const (
	stripeProductCode   = "STRIPE-PAYMENT"
	stripeProductName   = "Stripe Payment"
	defaultInvoiceLabel = "Stripe Payment"
)

type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, in dto.CreateInvoiceDTO) (*dto.CreateInvoiceResponseDTO, error)
	MarkPaid(ctx context.Context, in dto.MarkPaidDTO) (*dto.MarkPaidResponseDTO, error)
	GetInvoice(ctx context.Context, id int64) (*dto.InvoiceDTO, error)
	GetByStripeSession(ctx context.Context, sessionID string) (*dto.InvoiceDTO, error)
}

type InvoiceService struct {
	customers PartnerServiceInterface
	partners  repositories.PartnerRepositoryInterface
	products  repositories.ProductRepositoryInterface
	invoices  repositories.InvoiceRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewInvoiceService(
	customers PartnerServiceInterface,
	partners repositories.PartnerRepositoryInterface,
	products repositories.ProductRepositoryInterface,
	invoices repositories.InvoiceRepositoryInterface,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		customers: customers,
		partners:  partners,
		products:  products,
		invoices:  invoices,
		logger:    logger.Named("invoices"),
		now:       time.Now,
	}
}

// CreateInvoice создаёт и проводит счёт по оплаченной сессии Stripe.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in dto.CreateInvoiceDTO) (*dto.CreateInvoiceResponseDTO, error) {
	partnerID, _, err := s.customers.FindOrCreateCustomer(ctx, in.CustomerEmail, "", "")
	if err != nil {
		return nil, err
	}
	productID, err := s.resolveProduct(ctx, utils.SafeDeref(in.ProductCode))
	if err != nil {
		return nil, err
	}

	label := utils.SafeDeref(in.Description)
	if label == "" {
		label = defaultInvoiceLabel
	}
	invoiceID, err := s.invoices.CreateInvoice(ctx, odoo.Values{
		"move_type":    "out_invoice",
		"partner_id":   partnerID,
		"invoice_date": s.now().Format("2006-01-02"),
		"ref":          in.StripeSessionID,
		"narration":    "Stripe Session: " + in.StripeSessionID,
		"invoice_line_ids": []interface{}{odoo.CreateLine(odoo.Values{
			"product_id": productID,
			"name":       label,
			"quantity":   1,
			"price_unit": in.Amount,
		})},
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать счёт: %w", err)
	}
	if err := s.invoices.PostInvoice(ctx, invoiceID); err != nil {
		return nil, fmt.Errorf("не удалось провести счёт %d: %w", invoiceID, err)
	}
	invoice, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Счёт создан", zap.Int64("invoice_id", invoiceID), zap.String("number", invoice.Name), zap.String("session", in.StripeSessionID))
	return &dto.CreateInvoiceResponseDTO{
		Success:       true,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoice.Name,
		Message:       fmt.Sprintf("Invoice %s created and posted", invoice.Name),
	}, nil
}

// resolveProduct: товар по коду, иначе общий товар STRIPE-PAYMENT (создаётся при первом счёте).
func (s *InvoiceService) resolveProduct(ctx context.Context, code string) (int64, error) {
	if code != "" {
		p, err := s.products.FindVariantByCode(ctx, code)
		if err == nil {
			return p.ID, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return 0, err
		}
	}

	p, err := s.products.FindVariantByCode(ctx, stripeProductCode)
	if err == nil {
		return p.ID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, err
	}

	templateID, err := s.products.CreateTemplate(ctx, odoo.Values{
		"name":           stripeProductName,
		"type":           "service",
		"default_code":   stripeProductCode,
		"list_price":     0,
		"invoice_policy": "order",
	})
	if err != nil {
		return 0, fmt.Errorf("не удалось создать товар %s: %w", stripeProductCode, err)
	}
	p, err = s.products.FindVariantByTemplate(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("нет варианта товара %s: %w", stripeProductCode, err)
	}
	return p.ID, nil
}

// MarkPaid регистрирует платёж по счёту и сверяет дебиторку.
func (s *InvoiceService) MarkPaid(ctx context.Context, in dto.MarkPaidDTO) (*dto.MarkPaidResponseDTO, error) {
	invoiceID := utils.SafeDeref(in.InvoiceID)
	if invoiceID == 0 && utils.SafeDeref(in.StripeSessionID) != "" {
		found, err := s.invoices.FindByStripeSession(ctx, *in.StripeSessionID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if found != nil {
			invoiceID = found.ID
		}
	}
	if invoiceID == 0 {
		return nil, apperrors.NewNotFoundError("Invoice not found")
	}

	invoice, err := s.invoices.Get(ctx, invoiceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Invoice not found")
	}
	if err != nil {
		return nil, err
	}

	if invoice.PaymentState == "paid" {
		return &dto.MarkPaidResponseDTO{
			Success:   true,
			InvoiceID: invoiceID,
			Message:   fmt.Sprintf("Invoice %s is already paid", invoice.Name),
		}, nil
	}
	if invoice.State != "posted" {
		return nil, apperrors.NewHttpError(http.StatusBadRequest,
			fmt.Sprintf("Invoice is not posted (state: %s)", invoice.State), apperrors.ErrInvoiceNotPosted)
	}

	paymentID, err := s.registerPayment(ctx, invoice, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Платёж зарегистрирован", zap.Int64("invoice_id", invoiceID), zap.Int64("payment_id", paymentID), zap.String("stripe_payment", in.PaymentID))
	return &dto.MarkPaidResponseDTO{
		Success:   true,
		InvoiceID: invoiceID,
		PaymentID: paymentID,
		Message:   fmt.Sprintf("Payment registered for invoice %s", invoice.Name),
	}, nil
}

func (s *InvoiceService) registerPayment(ctx context.Context, invoice *entities.Invoice, in dto.MarkPaidDTO) (int64, error) {
	journalID, err := s.invoices.BankJournal(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return 0, apperrors.NewHttpError(http.StatusInternalServerError, "No bank journal found", err)
	}
	if err != nil {
		return 0, err
	}
	methodLineID, err := s.invoices.InboundMethodLine(ctx, journalID)
	if err != nil {
		return 0, err
	}

	amount := utils.SafeDeref(in.Amount)
	if amount == 0 {
		amount = invoice.AmountResidual
	}
	values := odoo.Values{
		"payment_type": "inbound",
		"partner_type": "customer",
		"partner_id":   invoice.PartnerID,
		"amount":       amount,
		"journal_id":   journalID,
		"ref":          in.PaymentID,
	}
	if invoice.CurrencyID > 0 {
		values["currency_id"] = invoice.CurrencyID
	}
	if methodLineID > 0 {
		values["payment_method_line_id"] = methodLineID
	}

	paymentID, err := s.invoices.CreatePayment(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать платёж: %w", err)
	}
	// состояние проверяется чтением платежа ниже
	if err := s.invoices.PostPayment(ctx, paymentID); err != nil {
		if !odoo.IsFault(err) {
			return 0, err
		}
		s.logger.Warn("action_post платежа вернул ошибку", zap.Int64("payment_id", paymentID), zap.Error(err))
	}

	payment, err := s.invoices.GetPayment(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	if payment.State != "posted" {
		return 0, apperrors.NewHttpError(http.StatusInternalServerError, "Failed to post payment", nil)
	}

	s.reconcile(ctx, invoice.ID, payment.MoveID)
	return paymentID, nil
}

// reconcile сверяет строки дебиторки счёта и платежа; ошибки только логируются.
func (s *InvoiceService) reconcile(ctx context.Context, invoiceID, paymentMoveID int64) {
	invoiceLines, err := s.invoices.ReceivableLines(ctx, invoiceID)
	if err != nil {
		s.logger.Warn("Не удалось получить строки счёта", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return
	}
	paymentLines, err := s.invoices.ReceivableLines(ctx, paymentMoveID)
	if err != nil {
		s.logger.Warn("Не удалось получить строки платежа", zap.Int64("move_id", paymentMoveID), zap.Error(err))
		return
	}
	if len(invoiceLines) == 0 || len(paymentLines) == 0 {
		return
	}
	if err := s.invoices.Reconcile(ctx, append(invoiceLines, paymentLines...)); err != nil {
		s.logger.Warn("Сверка не выполнена", zap.Int64("invoice_id", invoiceID), zap.Error(err))
	}
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*dto.InvoiceDTO, error) {
	invoice, err := s.invoices.Get(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Invoice not found")
	}
	if err != nil {
		return nil, err
	}
	return s.toInvoiceDTO(ctx, invoice)
}

func (s *InvoiceService) GetByStripeSession(ctx context.Context, sessionID string) (*dto.InvoiceDTO, error) {
	invoice, err := s.invoices.FindByStripeSession(ctx, sessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Invoice not found")
	}
	if err != nil {
		return nil, err
	}
	return s.toInvoiceDTO(ctx, invoice)
}

func (s *InvoiceService) toInvoiceDTO(ctx context.Context, invoice *entities.Invoice) (*dto.InvoiceDTO, error) {
	res := &dto.InvoiceDTO{
		ID:             invoice.ID,
		Name:           invoice.Name,
		PartnerName:    invoice.PartnerName,
		AmountTotal:    invoice.AmountTotal,
		AmountResidual: invoice.AmountResidual,
		State:          invoice.State,
		PaymentState:   invoice.PaymentState,
	}
	if invoice.InvoiceDate != "" {
		res.InvoiceDate = utils.ToPtr(invoice.InvoiceDate)
	}
	if invoice.Ref != "" {
		res.StripeSessionID = utils.ToPtr(invoice.Ref)
	}
	if invoice.PartnerID > 0 {
		partner, err := s.partners.FindByID(ctx, invoice.PartnerID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if partner != nil {
			res.PartnerEmail = partner.Email
			if res.PartnerName == "" {
				res.PartnerName = partner.Name
			}
		}
	}
	return res, nil
}
