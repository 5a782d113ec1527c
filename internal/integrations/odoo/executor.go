// Файл: internal/integrations/odoo/executor.go
package odoo

import (
	"context"
)

// Executor - набор операций execute_kw, от которого зависят все сервисы.
// Реализуется XML-RPC клиентом и in-memory заглушкой для тестов.
type Executor interface {
	SearchRead(ctx context.Context, model string, domain Domain, fields []string, limit int) ([]Record, error)
	Search(ctx context.Context, model string, domain Domain, limit int) ([]int64, error)
	SearchCount(ctx context.Context, model string, domain Domain) (int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error)
	Create(ctx context.Context, model string, values Values) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values Values) error
	FieldsGet(ctx context.Context, model string) ([]string, error)
	// Call вызывает метод-действие модели (action_post, action_apply, reconcile).
	Call(ctx context.Context, model, method string, ids []int64) (interface{}, error)
}

// Session - служебные вызовы сервиса common.
type Session interface {
	Version(ctx context.Context) (map[string]interface{}, error)
	Authenticate(ctx context.Context) (int64, error)
}

// Models, которые используют скрипты.
const (
	ModelPartner         = "res.partner"
	ModelPartnerCategory = "res.partner.category"
	ModelLead            = "crm.lead"
	ModelProductTemplate = "product.template"
	ModelProduct         = "product.product"
	ModelMove            = "account.move"
	ModelMoveLine        = "account.move.line"
	ModelJournal         = "account.journal"
	ModelPayment         = "account.payment"
	ModelPaymentLine     = "account.payment.method.line"
	ModelPaymentProvider = "payment.provider"
	ModelModule          = "ir.module.module"
	ModelPortalWizard    = "portal.wizard"
)
