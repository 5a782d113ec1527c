package entities

// Записи Odoo, с которыми работают сервисы. Заполняются из odoo.Record в репозиториях.

type Partner struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	IsCompany bool
	ParentID  int64
}

type Category struct {
	ID       int64
	Name     string
	ParentID int64
	Color    int64
}

type Lead struct {
	ID          int64
	Name        string
	EmailFrom   string
	Phone       string
	PartnerName string
	Description string
}

type Invoice struct {
	ID             int64
	Name           string
	PartnerID      int64
	PartnerName    string
	CurrencyID     int64
	AmountTotal    float64
	AmountResidual float64
	State          string
	PaymentState   string
	InvoiceDate    string
	Ref            string
}

type Payment struct {
	ID     int64
	State  string
	MoveID int64
}

type Product struct {
	ID          int64
	Name        string
	DefaultCode string
	ListPrice   float64
}

type PaymentProvider struct {
	ID    int64
	Name  string
	Code  string
	State string
}
