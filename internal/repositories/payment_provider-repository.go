package repositories

import (
	"context"

	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
)

var paymentProviderFields = []string{"id", "name", "code", "state"}

type PaymentProviderRepositoryInterface interface {
	// FindByCode возвращает ErrNotFound, если модуль провайдера не установлен.
	FindByCode(ctx context.Context, code string) (*entities.PaymentProvider, error)
	Update(ctx context.Context, id int64, values odoo.Values) error
}

type PaymentProviderRepository struct {
	odooStore
}

func NewPaymentProviderRepository(exec odoo.Executor, filter ValueFilter) PaymentProviderRepositoryInterface {
	return &PaymentProviderRepository{odooStore{exec: exec, filter: filter}}
}

func (r *PaymentProviderRepository) FindByCode(ctx context.Context, code string) (*entities.PaymentProvider, error) {
	rec, err := r.first(ctx, odoo.ModelPaymentProvider, odoo.Where(odoo.Eq("code", code)), paymentProviderFields)
	if err != nil {
		return nil, err
	}
	return &entities.PaymentProvider{
		ID:    rec.ID(),
		Name:  rec.String("name"),
		Code:  rec.String("code"),
		State: rec.String("state"),
	}, nil
}

func (r *PaymentProviderRepository) Update(ctx context.Context, id int64, values odoo.Values) error {
	return r.write(ctx, odoo.ModelPaymentProvider, id, values)
}
