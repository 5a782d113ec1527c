package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/repositories"
	"odoo-leads/pkg/validation"
)

type PortalServiceInterface interface {
	Invite(ctx context.Context, in dto.InvitePortalDTO) (*dto.InvitePortalResultDTO, error)
}

type PortalService struct {
	partners  PartnerServiceInterface
	portal    repositories.PortalRepositoryInterface
	validator *validation.CustomValidator
	logger    *zap.Logger
}

func NewPortalService(
	partners PartnerServiceInterface,
	portal repositories.PortalRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) *PortalService {
	return &PortalService{partners: partners, portal: portal, validator: validator, logger: logger.Named("portal")}
}

// Invite находит или создаёт клиента и отправляет приглашение в портал.
func (s *PortalService) Invite(ctx context.Context, in dto.InvitePortalDTO) (*dto.InvitePortalResultDTO, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	partnerID, created, err := s.partners.FindOrCreateCustomer(ctx, in.Email, in.Name, in.Company)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Создан партнёр", zap.Int64("partner_id", partnerID))
	} else {
		s.logger.Info("Найден партнёр", zap.Int64("partner_id", partnerID))
	}

	wizardID, err := s.portal.CreateWizard(ctx, []int64{partnerID})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать мастер портала: %w", err)
	}
	if err := s.portal.Apply(ctx, wizardID); err != nil {
		return nil, fmt.Errorf("не удалось отправить приглашение: %w", err)
	}

	s.logger.Info("Приглашение в портал отправлено", zap.String("email", in.Email))
	return &dto.InvitePortalResultDTO{PartnerID: partnerID, Created: created}, nil
}
