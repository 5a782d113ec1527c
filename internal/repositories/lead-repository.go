package repositories

import (
	"context"
	"fmt"

	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
)

var leadFields = []string{"id", "name", "email_from", "phone", "partner_name", "description"}

type LeadRepositoryInterface interface {
	FindByPermit(ctx context.Context, permitNumber string) (*entities.Lead, error)
	Description(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, values odoo.Values) (int64, error)
	Update(ctx context.Context, id int64, values odoo.Values) error
}

type LeadRepository struct {
	odooStore
}

func NewLeadRepository(exec odoo.Executor, filter ValueFilter) LeadRepositoryInterface {
	return &LeadRepository{odooStore{exec: exec, filter: filter}}
}

// PermitTag - метка разрешения в имени лида: "[номер]".
func PermitTag(permitNumber string) string {
	return fmt.Sprintf("[%s]", permitNumber)
}

// FindByPermit ищет лид, в имени которого есть "[номер]".
func (r *LeadRepository) FindByPermit(ctx context.Context, permitNumber string) (*entities.Lead, error) {
	rec, err := r.first(ctx, odoo.ModelLead, odoo.Where(odoo.ILike("name", PermitTag(permitNumber))), leadFields)
	if err != nil {
		return nil, err
	}
	return toLead(rec), nil
}

func (r *LeadRepository) Description(ctx context.Context, id int64) (string, error) {
	rec, err := r.readOne(ctx, odoo.ModelLead, id, []string{"description"})
	if err != nil {
		return "", err
	}
	return rec.String("description"), nil
}

func (r *LeadRepository) Create(ctx context.Context, values odoo.Values) (int64, error) {
	return r.create(ctx, odoo.ModelLead, values)
}

func (r *LeadRepository) Update(ctx context.Context, id int64, values odoo.Values) error {
	return r.write(ctx, odoo.ModelLead, id, values)
}

func toLead(rec odoo.Record) *entities.Lead {
	return &entities.Lead{
		ID:          rec.ID(),
		Name:        rec.String("name"),
		EmailFrom:   rec.String("email_from"),
		Phone:       rec.String("phone"),
		PartnerName: rec.String("partner_name"),
		Description: rec.String("description"),
	}
}
