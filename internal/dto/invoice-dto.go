package dto

type CreateInvoiceDTO struct {
	CustomerEmail   string  `json:"customer_email" validate:"required,email"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	StripeSessionID string  `json:"stripe_session_id" validate:"required"`
	Description     *string `json:"description,omitempty"`
	ProductCode     *string `json:"product_code,omitempty"`
}

type CreateInvoiceResponseDTO struct {
	Success       bool   `json:"success"`
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Message       string `json:"message"`
}

type MarkPaidDTO struct {
	InvoiceID       *int64   `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
	StripeSessionID *string  `json:"stripe_session_id,omitempty"`
	PaymentID       string   `json:"payment_id" validate:"required"`
	Amount          *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type MarkPaidResponseDTO struct {
	Success   bool   `json:"success"`
	InvoiceID int64  `json:"invoice_id"`
	PaymentID int64  `json:"payment_id"`
	Message   string `json:"message"`
}

type InvoiceDTO struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	PartnerName     string  `json:"partner_name"`
	PartnerEmail    string  `json:"partner_email"`
	AmountTotal     float64 `json:"amount_total"`
	AmountResidual  float64 `json:"amount_residual"`
	State           string  `json:"state"`
	PaymentState    string  `json:"payment_state"`
	InvoiceDate     *string `json:"invoice_date"`
	StripeSessionID *string `json:"stripe_session_id"`
}
