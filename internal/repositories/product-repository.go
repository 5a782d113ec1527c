package repositories

import (
	"context"

	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
)

var productFields = []string{"id", "name", "default_code", "list_price"}

type ProductRepositoryInterface interface {
	FindTemplateByCode(ctx context.Context, code string) (*entities.Product, error)
	FindVariantByCode(ctx context.Context, code string) (*entities.Product, error)
	FindVariantByTemplate(ctx context.Context, templateID int64) (*entities.Product, error)
	CreateTemplate(ctx context.Context, values odoo.Values) (int64, error)
	CountByCodes(ctx context.Context, codes []string) (int64, error)
	ListByCodes(ctx context.Context, codes []string) ([]entities.Product, error)
}

type ProductRepository struct {
	odooStore
}

func NewProductRepository(exec odoo.Executor, filter ValueFilter) ProductRepositoryInterface {
	return &ProductRepository{odooStore{exec: exec, filter: filter}}
}

func (r *ProductRepository) FindTemplateByCode(ctx context.Context, code string) (*entities.Product, error) {
	rec, err := r.first(ctx, odoo.ModelProductTemplate, odoo.Where(odoo.Eq("default_code", code)), productFields)
	if err != nil {
		return nil, err
	}
	return toProduct(rec), nil
}

func (r *ProductRepository) FindVariantByCode(ctx context.Context, code string) (*entities.Product, error) {
	rec, err := r.first(ctx, odoo.ModelProduct, odoo.Where(odoo.Eq("default_code", code)), productFields)
	if err != nil {
		return nil, err
	}
	return toProduct(rec), nil
}

// FindVariantByTemplate - product.product, созданный Odoo вместе с шаблоном.
func (r *ProductRepository) FindVariantByTemplate(ctx context.Context, templateID int64) (*entities.Product, error) {
	rec, err := r.first(ctx, odoo.ModelProduct, odoo.Where(odoo.Eq("product_tmpl_id", templateID)), productFields)
	if err != nil {
		return nil, err
	}
	return toProduct(rec), nil
}

func (r *ProductRepository) CreateTemplate(ctx context.Context, values odoo.Values) (int64, error) {
	return r.create(ctx, odoo.ModelProductTemplate, values)
}

func (r *ProductRepository) CountByCodes(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	return r.exec.SearchCount(ctx, odoo.ModelProductTemplate,
		odoo.Where(odoo.Cond{Field: "default_code", Op: "in", Value: codes}))
}

func (r *ProductRepository) ListByCodes(ctx context.Context, codes []string) ([]entities.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	records, err := r.exec.SearchRead(ctx, odoo.ModelProductTemplate,
		odoo.Where(odoo.Cond{Field: "default_code", Op: "in", Value: codes}), productFields, 0)
	if err != nil {
		return nil, err
	}
	products := make([]entities.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, *toProduct(rec))
	}
	return products, nil
}

func toProduct(rec odoo.Record) *entities.Product {
	return &entities.Product{
		ID:          rec.ID(),
		Name:        rec.String("name"),
		DefaultCode: rec.String("default_code"),
		ListPrice:   rec.Float("list_price"),
	}
}
