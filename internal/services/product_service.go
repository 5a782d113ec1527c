package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"odoo-leads/config"
	"odoo-leads/internal/dto"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
)

const (
	productStatusCreated = "created"
	productStatusSkipped = "skipped"
)

type ProductServiceInterface interface {
	Create(ctx context.Context) ([]dto.ProductResultDTO, error)
	List(ctx context.Context) ([]dto.ProductResultDTO, error)
}

type ProductService struct {
	repo    repositories.ProductRepositoryInterface
	catalog *config.Catalog
	logger  *zap.Logger
}

func NewProductService(repo repositories.ProductRepositoryInterface, catalog *config.Catalog, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, catalog: catalog, logger: logger.Named("products")}
}

// Create заводит товары каталога; уже существующие по default_code пропускаются.
func (s *ProductService) Create(ctx context.Context) ([]dto.ProductResultDTO, error) {
	results := make([]dto.ProductResultDTO, 0, len(s.catalog.Products))
	for _, p := range s.catalog.Products {
		result := dto.ProductResultDTO{Code: p.DefaultCode, Name: p.Name, Price: p.ListPrice}

		existing, err := s.repo.FindTemplateByCode(ctx, p.DefaultCode)
		switch {
		case err == nil:
			result.ID = existing.ID
			result.Status = productStatusSkipped
			s.logger.Info("Товар уже есть", zap.String("code", p.DefaultCode), zap.Int64("id", existing.ID))
		case errors.Is(err, apperrors.ErrNotFound):
			id, err := s.repo.CreateTemplate(ctx, odoo.Values(p.Values()))
			if err != nil {
				return results, fmt.Errorf("не удалось создать товар %s: %w", p.DefaultCode, err)
			}
			result.ID = id
			result.Status = productStatusCreated
			s.logger.Info("Создан товар", zap.String("code", p.DefaultCode), zap.Int64("id", id))
		default:
			return results, fmt.Errorf("ошибка поиска товара %s: %w", p.DefaultCode, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// List - товары каталога, которые уже есть в Odoo.
func (s *ProductService) List(ctx context.Context) ([]dto.ProductResultDTO, error) {
	products, err := s.repo.ListByCodes(ctx, s.catalog.ProductCodes())
	if err != nil {
		return nil, err
	}
	results := make([]dto.ProductResultDTO, 0, len(products))
	for _, p := range products {
		results = append(results, dto.ProductResultDTO{Code: p.DefaultCode, Name: p.Name, ID: p.ID, Price: p.ListPrice})
	}
	return results, nil
}
