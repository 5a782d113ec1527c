package repositories

import (
	"context"

	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
)

var partnerFields = []string{"id", "name", "email", "phone", "is_company", "parent_id"}

type PartnerRepositoryInterface interface {
	FindCompany(ctx context.Context, name string) (*entities.Partner, error)
	FindPerson(ctx context.Context, name string) (*entities.Partner, error)
	FindByEmail(ctx context.Context, email string) (*entities.Partner, error)
	FindByID(ctx context.Context, id int64) (*entities.Partner, error)
	Create(ctx context.Context, values odoo.Values) (int64, error)
	Update(ctx context.Context, id int64, values odoo.Values) error
}

type PartnerRepository struct {
	odooStore
}

func NewPartnerRepository(exec odoo.Executor, filter ValueFilter) PartnerRepositoryInterface {
	return &PartnerRepository{odooStore{exec: exec, filter: filter}}
}

func (r *PartnerRepository) FindCompany(ctx context.Context, name string) (*entities.Partner, error) {
	return r.find(ctx, odoo.Where(odoo.Eq("name", name), odoo.Eq("is_company", true)))
}

func (r *PartnerRepository) FindPerson(ctx context.Context, name string) (*entities.Partner, error) {
	return r.find(ctx, odoo.Where(odoo.Eq("name", name), odoo.Eq("is_company", false)))
}

func (r *PartnerRepository) FindByEmail(ctx context.Context, email string) (*entities.Partner, error) {
	return r.find(ctx, odoo.Where(odoo.Eq("email", email)))
}

func (r *PartnerRepository) FindByID(ctx context.Context, id int64) (*entities.Partner, error) {
	rec, err := r.readOne(ctx, odoo.ModelPartner, id, partnerFields)
	if err != nil {
		return nil, err
	}
	return toPartner(rec), nil
}

func (r *PartnerRepository) Create(ctx context.Context, values odoo.Values) (int64, error) {
	return r.create(ctx, odoo.ModelPartner, values)
}

func (r *PartnerRepository) Update(ctx context.Context, id int64, values odoo.Values) error {
	return r.write(ctx, odoo.ModelPartner, id, values)
}

func (r *PartnerRepository) find(ctx context.Context, domain odoo.Domain) (*entities.Partner, error) {
	rec, err := r.first(ctx, odoo.ModelPartner, domain, partnerFields)
	if err != nil {
		return nil, err
	}
	return toPartner(rec), nil
}

func toPartner(rec odoo.Record) *entities.Partner {
	parentID, _ := rec.Many2One("parent_id")
	return &entities.Partner{
		ID:        rec.ID(),
		Name:      rec.String("name"),
		Email:     rec.String("email"),
		Phone:     rec.String("phone"),
		IsCompany: rec.Bool("is_company"),
		ParentID:  parentID,
	}
}
