package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/utils"
)

const (
	UmbrellaCompany = "Lead Lists"
	umbrellaComment = "Parent organization for all imported lead lists"
)

// ContactInput - данные контакта из строки импорта.
type ContactInput struct {
	Name        string
	Email       string
	Phone       string
	CompanyID   int64
	CategoryIDs []int64
	Comment     string
}

// ListCompanySpec - компания-список под общей компанией "Lead Lists".
type ListCompanySpec struct {
	Name         string
	Comment      string
	RootCategory int64
	Categories   []int64
	// RefreshExisting - дописывать теги уже существующим компаниям.
	RefreshExisting bool
}

type PartnerServiceInterface interface {
	GetOrCreateCompany(ctx context.Context, name string, categoryIDs []int64) (int64, error)
	GetOrCreateContact(ctx context.Context, in ContactInput) (int64, error)
	EnsureListCompany(ctx context.Context, spec ListCompanySpec) (umbrellaID, listID int64, err error)
	FindOrCreateCustomer(ctx context.Context, email, name, company string) (int64, bool, error)
}

type PartnerService struct {
	repo   repositories.PartnerRepositoryInterface
	logger *zap.Logger
}

func NewPartnerService(repo repositories.PartnerRepositoryInterface, logger *zap.Logger) *PartnerService {
	return &PartnerService{repo: repo, logger: logger.Named("partners")}
}

// GetOrCreateCompany: пустое имя даёт 0; найденной компании дописываются теги.
func (s *PartnerService) GetOrCreateCompany(ctx context.Context, name string, categoryIDs []int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	existing, err := s.repo.FindCompany(ctx, name)
	if err == nil {
		if len(categoryIDs) > 0 {
			if err := s.repo.Update(ctx, existing.ID, odoo.Values{"category_id": odoo.LinkAll(categoryIDs)}); err != nil && !errors.Is(err, apperrors.ErrEmptyValues) {
				return 0, fmt.Errorf("не удалось обновить теги компании %q: %w", name, err)
			}
		}
		return existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, fmt.Errorf("ошибка поиска компании %q: %w", name, err)
	}

	values := odoo.Values{"name": name, "is_company": true, "company_type": "company"}
	if len(categoryIDs) > 0 {
		values["category_id"] = odoo.LinkAll(categoryIDs)
	}
	id, err := s.repo.Create(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать компанию %q: %w", name, err)
	}
	s.logger.Debug("Создана компания", zap.String("name", name), zap.Int64("id", id))
	return id, nil
}

// GetOrCreateContact ищет по email, а без email - по имени среди не-компаний.
func (s *PartnerService) GetOrCreateContact(ctx context.Context, in ContactInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, nil
	}

	found, err := s.findContact(ctx, name, in.Email)
	if err == nil {
		if len(in.CategoryIDs) > 0 {
			if err := s.repo.Update(ctx, found, odoo.Values{"category_id": odoo.LinkAll(in.CategoryIDs)}); err != nil && !errors.Is(err, apperrors.ErrEmptyValues) {
				return 0, fmt.Errorf("не удалось обновить теги контакта %q: %w", name, err)
			}
		}
		return found, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, fmt.Errorf("ошибка поиска контакта %q: %w", name, err)
	}

	values := odoo.Values{"name": name, "is_company": false, "company_type": "person"}
	if in.Email != "" {
		values["email"] = in.Email
	}
	if in.Phone != "" {
		values["phone"] = in.Phone
	}
	if in.CompanyID > 0 {
		values["parent_id"] = in.CompanyID
	}
	if len(in.CategoryIDs) > 0 {
		values["category_id"] = odoo.LinkAll(in.CategoryIDs)
	}
	if in.Comment != "" {
		values["comment"] = in.Comment
	}
	id, err := s.repo.Create(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать контакт %q: %w", name, err)
	}
	return id, nil
}

func (s *PartnerService) findContact(ctx context.Context, name, email string) (int64, error) {
	if email != "" {
		p, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	}
	p, err := s.repo.FindPerson(ctx, name)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// EnsureListCompany создаёт "Lead Lists" и компанию-список под ней.
func (s *PartnerService) EnsureListCompany(ctx context.Context, spec ListCompanySpec) (int64, int64, error) {
	var rootLinks []int64
	if spec.RootCategory > 0 {
		rootLinks = []int64{spec.RootCategory}
	}

	umbrellaID, err := s.ensureCompany(ctx, odoo.Values{
		"name":         UmbrellaCompany,
		"is_company":   true,
		"company_type": "company",
		"comment":      umbrellaComment,
		"category_id":  odoo.LinkAll(rootLinks),
	}, rootLinks, spec.RefreshExisting)
	if err != nil {
		return 0, 0, err
	}

	listID, err := s.ensureCompany(ctx, odoo.Values{
		"name":         spec.Name,
		"is_company":   true,
		"company_type": "company",
		"parent_id":    umbrellaID,
		"comment":      spec.Comment,
		"category_id":  odoo.LinkAll(spec.Categories),
	}, spec.Categories, spec.RefreshExisting)
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("Компания-список готова", zap.String("name", spec.Name), zap.Int64("id", listID), zap.Int64("umbrella_id", umbrellaID))
	return umbrellaID, listID, nil
}

func (s *PartnerService) ensureCompany(ctx context.Context, values odoo.Values, links []int64, refresh bool) (int64, error) {
	name, _ := values["name"].(string)
	existing, err := s.repo.FindCompany(ctx, name)
	if err == nil {
		if refresh && len(links) > 0 {
			if err := s.repo.Update(ctx, existing.ID, odoo.Values{"category_id": odoo.LinkAll(links)}); err != nil && !errors.Is(err, apperrors.ErrEmptyValues) {
				return 0, fmt.Errorf("не удалось обновить теги компании %q: %w", name, err)
			}
		}
		return existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, fmt.Errorf("ошибка поиска компании %q: %w", name, err)
	}
	id, err := s.repo.Create(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать компанию %q: %w", name, err)
	}
	s.logger.Info("Создана компания", zap.String("name", name), zap.Int64("id", id))
	return id, nil
}

// FindOrCreateCustomer - партнёр-клиент по email для портала и счетов.
// Без имени оно берётся из локальной части адреса.
func (s *PartnerService) FindOrCreateCustomer(ctx context.Context, email, name, company string) (int64, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, false, fmt.Errorf("ошибка поиска клиента %s: %w", email, err)
	}

	if strings.TrimSpace(name) == "" {
		name = NameFromEmail(email)
	}
	values := odoo.Values{"name": name, "email": email, "customer_rank": 1}
	if company != "" {
		values["company_name"] = company
	}
	id, err := s.repo.Create(ctx, values)
	if err != nil {
		return 0, false, fmt.Errorf("не удалось создать клиента %s: %w", email, err)
	}
	s.logger.Info("Создан клиент", zap.String("email", email), zap.Int64("id", id))
	return id, true, nil
}

// NameFromEmail: "john.smith@x.com" -> "John.Smith".
func NameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	return utils.TitleCase(local)
}
