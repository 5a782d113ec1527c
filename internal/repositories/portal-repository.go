package repositories

import (
	"context"

	"odoo-leads/internal/integrations/odoo"
)

type PortalRepositoryInterface interface {
	CreateWizard(ctx context.Context, partnerIDs []int64) (int64, error)
	// Apply отправляет приглашения; None в ответе Odoo ошибкой не считается.
	Apply(ctx context.Context, wizardID int64) error
}

type PortalRepository struct {
	odooStore
}

func NewPortalRepository(exec odoo.Executor, filter ValueFilter) PortalRepositoryInterface {
	return &PortalRepository{odooStore{exec: exec, filter: filter}}
}

func (r *PortalRepository) CreateWizard(ctx context.Context, partnerIDs []int64) (int64, error) {
	return r.create(ctx, odoo.ModelPortalWizard, odoo.Values{
		"partner_ids": []interface{}{odoo.ReplaceAll(partnerIDs)},
	})
}

func (r *PortalRepository) Apply(ctx context.Context, wizardID int64) error {
	return r.call(ctx, odoo.ModelPortalWizard, "action_apply", []int64{wizardID})
}
