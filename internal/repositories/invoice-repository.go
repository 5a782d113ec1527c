package repositories

import (
	"context"

	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
)

var invoiceFields = []string{
	"id", "name", "partner_id", "currency_id", "amount_total", "amount_residual",
	"state", "payment_state", "invoice_date", "ref",
}

type InvoiceRepositoryInterface interface {
	CreateInvoice(ctx context.Context, values odoo.Values) (int64, error)
	PostInvoice(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*entities.Invoice, error)
	FindByStripeSession(ctx context.Context, sessionID string) (*entities.Invoice, error)

	BankJournal(ctx context.Context) (int64, error)
	InboundMethodLine(ctx context.Context, journalID int64) (int64, error)
	CreatePayment(ctx context.Context, values odoo.Values) (int64, error)
	PostPayment(ctx context.Context, id int64) error
	GetPayment(ctx context.Context, id int64) (*entities.Payment, error)
	ReceivableLines(ctx context.Context, moveID int64) ([]int64, error)
	Reconcile(ctx context.Context, lineIDs []int64) error
}

type InvoiceRepository struct {
	odooStore
}

func NewInvoiceRepository(exec odoo.Executor, filter ValueFilter) InvoiceRepositoryInterface {
	return &InvoiceRepository{odooStore{exec: exec, filter: filter}}
}

func (r *InvoiceRepository) CreateInvoice(ctx context.Context, values odoo.Values) (int64, error) {
	return r.create(ctx, odoo.ModelMove, values)
}

func (r *InvoiceRepository) PostInvoice(ctx context.Context, id int64) error {
	return r.call(ctx, odoo.ModelMove, "action_post", []int64{id})
}

func (r *InvoiceRepository) Get(ctx context.Context, id int64) (*entities.Invoice, error) {
	rec, err := r.readOne(ctx, odoo.ModelMove, id, invoiceFields)
	if err != nil {
		return nil, err
	}
	return toInvoice(rec), nil
}

// FindByStripeSession ищет клиентский счёт, у которого ref = id сессии Stripe.
func (r *InvoiceRepository) FindByStripeSession(ctx context.Context, sessionID string) (*entities.Invoice, error) {
	rec, err := r.first(ctx, odoo.ModelMove,
		odoo.Where(odoo.Eq("ref", sessionID), odoo.Eq("move_type", "out_invoice")), invoiceFields)
	if err != nil {
		return nil, err
	}
	return toInvoice(rec), nil
}

func (r *InvoiceRepository) BankJournal(ctx context.Context) (int64, error) {
	rec, err := r.first(ctx, odoo.ModelJournal, odoo.Where(odoo.Eq("type", "bank")), []string{"id", "name"})
	if err != nil {
		return 0, err
	}
	return rec.ID(), nil
}

// InboundMethodLine возвращает 0, если у журнала нет входящего способа оплаты.
func (r *InvoiceRepository) InboundMethodLine(ctx context.Context, journalID int64) (int64, error) {
	rec, err := r.first(ctx, odoo.ModelPaymentLine,
		odoo.Where(odoo.Eq("journal_id", journalID), odoo.Eq("payment_type", "inbound")), []string{"id", "name"})
	if err != nil {
		return 0, ignoreNotFound(err)
	}
	return rec.ID(), nil
}

func (r *InvoiceRepository) CreatePayment(ctx context.Context, values odoo.Values) (int64, error) {
	return r.create(ctx, odoo.ModelPayment, values)
}

func (r *InvoiceRepository) PostPayment(ctx context.Context, id int64) error {
	return r.call(ctx, odoo.ModelPayment, "action_post", []int64{id})
}

func (r *InvoiceRepository) GetPayment(ctx context.Context, id int64) (*entities.Payment, error) {
	rec, err := r.readOne(ctx, odoo.ModelPayment, id, []string{"id", "state", "move_id"})
	if err != nil {
		return nil, err
	}
	moveID, _ := rec.Many2One("move_id")
	return &entities.Payment{ID: rec.ID(), State: rec.String("state"), MoveID: moveID}, nil
}

// ReceivableLines - неразнесённые строки дебиторки проводки.
func (r *InvoiceRepository) ReceivableLines(ctx context.Context, moveID int64) ([]int64, error) {
	return r.exec.Search(ctx, odoo.ModelMoveLine, odoo.Where(
		odoo.Eq("move_id", moveID),
		odoo.Eq("account_type", "asset_receivable"),
		odoo.Eq("reconciled", false),
	), 0)
}

func (r *InvoiceRepository) Reconcile(ctx context.Context, lineIDs []int64) error {
	return r.call(ctx, odoo.ModelMoveLine, "reconcile", lineIDs)
}

func toInvoice(rec odoo.Record) *entities.Invoice {
	partnerID, partnerName := rec.Many2One("partner_id")
	currencyID, _ := rec.Many2One("currency_id")
	return &entities.Invoice{
		ID:             rec.ID(),
		Name:           rec.String("name"),
		PartnerID:      partnerID,
		PartnerName:    partnerName,
		CurrencyID:     currencyID,
		AmountTotal:    rec.Float("amount_total"),
		AmountResidual: rec.Float("amount_residual"),
		State:          rec.String("state"),
		PaymentState:   rec.String("payment_state"),
		InvoiceDate:    rec.String("invoice_date"),
		Ref:            rec.String("ref"),
	}
}
