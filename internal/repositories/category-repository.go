package repositories

import (
	"context"

	"odoo-leads/internal/integrations/odoo"
)

type CategoryRepositoryInterface interface {
	Find(ctx context.Context, name string, parentID int64) (int64, error)
	Create(ctx context.Context, name string, parentID, color int64) (int64, error)
}

type CategoryRepository struct {
	odooStore
}

func NewCategoryRepository(exec odoo.Executor, filter ValueFilter) CategoryRepositoryInterface {
	return &CategoryRepository{odooStore{exec: exec, filter: filter}}
}

// Find ищет тег по имени; при parentID > 0 - только среди дочерних.
func (r *CategoryRepository) Find(ctx context.Context, name string, parentID int64) (int64, error) {
	domain := odoo.Where(odoo.Eq("name", name))
	if parentID > 0 {
		domain = append(domain, odoo.Eq("parent_id", parentID))
	}
	rec, err := r.first(ctx, odoo.ModelPartnerCategory, domain, []string{"id", "name"})
	if err != nil {
		return 0, err
	}
	return rec.ID(), nil
}

func (r *CategoryRepository) Create(ctx context.Context, name string, parentID, color int64) (int64, error) {
	values := odoo.Values{"name": name}
	if parentID > 0 {
		values["parent_id"] = parentID
	}
	if color > 0 {
		values["color"] = color
	}
	return r.create(ctx, odoo.ModelPartnerCategory, values)
}
