package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"odoo-leads/config"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
)

const (
	CategoryRoot         = "Lead List"
	CategoryForSale      = "For Sale"
	CategoryOutreach     = "Outreach Target"
	CategoryConstruction = "Construction"
)

// ValueTiers - теги ценности в порядке убывания.
var ValueTiers = []string{"Premium", "High Value", "Medium Value", "Low Value"}

// ProjectCategories - теги типа коммерческого проекта.
var ProjectCategories = []string{"Retail", "Office", "Industrial", "Restaurant", "Medical"}

// ListCategories - id тегов, созданных для одного запуска импорта.
type ListCategories struct {
	Root     int64
	ForSale  int64
	Outreach int64
	Industry int64
	Tiers    map[string]int64
	Projects map[string]int64
}

// ListLinks - теги компании-списка: корень, отрасль (если есть), назначение.
func (c *ListCategories) ListLinks() []int64 {
	ids := []int64{c.Root}
	if c.Industry > 0 {
		ids = append(ids, c.Industry)
	}
	return append(ids, c.ForSale, c.Outreach)
}

type CategoryServiceInterface interface {
	GetOrCreate(ctx context.Context, name string, parentID int64, color int) (int64, error)
	SetupLeadList(ctx context.Context, industry string) (*ListCategories, error)
	SetupCommercial(ctx context.Context) (*ListCategories, error)
}

type CategoryService struct {
	repo    repositories.CategoryRepositoryInterface
	catalog *config.Catalog
	logger  *zap.Logger

	mu   sync.Mutex
	memo map[string]int64
}

func NewCategoryService(repo repositories.CategoryRepositoryInterface, catalog *config.Catalog, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		repo:    repo,
		catalog: catalog,
		logger:  logger.Named("categories"),
		memo:    make(map[string]int64),
	}
}

// GetOrCreate ищет тег по имени (и родителю), создаёт при отсутствии. Результат запоминается на время запуска.
func (s *CategoryService) GetOrCreate(ctx context.Context, name string, parentID int64, color int) (int64, error) {
	key := fmt.Sprintf("%s:%d", name, parentID)
	s.mu.Lock()
	if id, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	id, err := s.repo.Find(ctx, name, parentID)
	switch {
	case err == nil:
		s.logger.Debug("Тег уже есть", zap.String("name", name), zap.Int64("id", id))
	case errors.Is(err, apperrors.ErrNotFound):
		id, err = s.repo.Create(ctx, name, parentID, int64(color))
		if err != nil {
			return 0, fmt.Errorf("не удалось создать тег %q: %w", name, err)
		}
		s.logger.Info("Создан тег", zap.String("name", name), zap.Int64("id", id))
	default:
		return 0, fmt.Errorf("не удалось найти тег %q: %w", name, err)
	}

	s.mu.Lock()
	s.memo[key] = id
	s.mu.Unlock()
	return id, nil
}

func (s *CategoryService) color(name string, fallback int) int {
	if s.catalog == nil {
		return fallback
	}
	return s.catalog.Color(name, fallback)
}

// setupBase - корень, теги назначения и уровни ценности.
func (s *CategoryService) setupBase(ctx context.Context) (*ListCategories, error) {
	root, err := s.GetOrCreate(ctx, CategoryRoot, 0, s.color(CategoryRoot, 0))
	if err != nil {
		return nil, err
	}
	cats := &ListCategories{Root: root, Tiers: make(map[string]int64), Projects: make(map[string]int64)}

	if cats.ForSale, err = s.GetOrCreate(ctx, CategoryForSale, root, s.color(CategoryForSale, 0)); err != nil {
		return nil, err
	}
	if cats.Outreach, err = s.GetOrCreate(ctx, CategoryOutreach, root, s.color(CategoryOutreach, 0)); err != nil {
		return nil, err
	}
	for _, tier := range ValueTiers {
		id, err := s.GetOrCreate(ctx, tier, root, s.color(tier, 0))
		if err != nil {
			return nil, err
		}
		cats.Tiers[tier] = id
	}
	return cats, nil
}

func (s *CategoryService) SetupLeadList(ctx context.Context, industry string) (*ListCategories, error) {
	cats, err := s.setupBase(ctx)
	if err != nil {
		return nil, err
	}
	if industry != "" {
		if cats.Industry, err = s.GetOrCreate(ctx, industry, cats.Root, s.color(industry, 2)); err != nil {
			return nil, err
		}
	}
	return cats, nil
}

func (s *CategoryService) SetupCommercial(ctx context.Context) (*ListCategories, error) {
	cats, err := s.setupBase(ctx)
	if err != nil {
		return nil, err
	}
	if cats.Industry, err = s.GetOrCreate(ctx, CategoryConstruction, cats.Root, s.color(CategoryConstruction, 2)); err != nil {
		return nil, err
	}
	for _, name := range ProjectCategories {
		id, err := s.GetOrCreate(ctx, name, cats.Root, s.color(name, 0))
		if err != nil {
			return nil, err
		}
		cats.Projects[name] = id
	}
	return cats, nil
}
