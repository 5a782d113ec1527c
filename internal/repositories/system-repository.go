package repositories

import (
	"context"

	"odoo-leads/internal/integrations/odoo"
)

// SystemRepositoryInterface - служебные проверки установки Odoo.
type SystemRepositoryInterface interface {
	ModuleInstalled(ctx context.Context, name string) (bool, error)
	// PaymentProviderState возвращает state провайдера или "" если его нет.
	PaymentProviderState(ctx context.Context, code string) (string, error)
}

type SystemRepository struct {
	odooStore
}

func NewSystemRepository(exec odoo.Executor) SystemRepositoryInterface {
	return &SystemRepository{odooStore{exec: exec}}
}

func (r *SystemRepository) ModuleInstalled(ctx context.Context, name string) (bool, error) {
	_, err := r.first(ctx, odoo.ModelModule,
		odoo.Where(odoo.Eq("name", name), odoo.Eq("state", "installed")), []string{"name", "state"})
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return true, nil
}

func (r *SystemRepository) PaymentProviderState(ctx context.Context, code string) (string, error) {
	rec, err := r.first(ctx, odoo.ModelPaymentProvider, odoo.Where(odoo.Eq("code", code)), []string{"state", "name"})
	if err != nil {
		return "", ignoreNotFound(err)
	}
	return rec.String("state"), nil
}
