package dto

// InvitePortalDTO - приглашение клиента в портал.
type InvitePortalDTO struct {
	Email   string `validate:"required,custom_email"`
	Name    string `validate:"required"`
	Company string
}

type InvitePortalResultDTO struct {
	PartnerID int64
	Created   bool
}

type CheckStatus string

const (
	CheckOK   CheckStatus = "OK"
	CheckWarn CheckStatus = "WARN"
	CheckFail CheckStatus = "FAIL"
)

// CheckResultDTO - результат одной проверки health.
type CheckResultDTO struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

type HealthStatusDTO struct {
	Status    string `json:"status"`
	Odoo      string `json:"odoo"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

type ProductResultDTO struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	ID     int64   `json:"id"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

// StripeSetupDTO - ключи Stripe для провайдера оплаты Odoo.
type StripeSetupDTO struct {
	SecretKey      string `validate:"required,startswith=sk_"`
	PublishableKey string `validate:"required,startswith=pk_"`
	CompanyID      int64  `validate:"gt=0"`
}

type StripeSetupResultDTO struct {
	ProviderID     int64
	AlreadyEnabled bool
}
