package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/validation"
)

const (
	stripeProviderCode = "stripe"
	providerEnabled    = "enabled"
)

type StripeServiceInterface interface {
	Setup(ctx context.Context, in dto.StripeSetupDTO) (*dto.StripeSetupResultDTO, error)
}

type StripeService struct {
	providers repositories.PaymentProviderRepositoryInterface
	validator *validation.CustomValidator
	logger    *zap.Logger
}

func NewStripeService(
	providers repositories.PaymentProviderRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) *StripeService {
	return &StripeService{providers: providers, validator: validator, logger: logger.Named("stripe")}
}

// Setup включает провайдера Stripe и записывает ключи. Уже включённый провайдер не трогается.
func (s *StripeService) Setup(ctx context.Context, in dto.StripeSetupDTO) (*dto.StripeSetupResultDTO, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	provider, err := s.providers.FindByCode(ctx, stripeProviderCode)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("провайдер Stripe не найден, установите модуль payment_stripe в Odoo: %w", err)
	}
	if err != nil {
		return nil, err
	}

	if provider.State == providerEnabled {
		s.logger.Info("Провайдер Stripe уже включён", zap.Int64("provider_id", provider.ID))
		return &dto.StripeSetupResultDTO{ProviderID: provider.ID, AlreadyEnabled: true}, nil
	}

	if err := s.providers.Update(ctx, provider.ID, odoo.Values{
		"state":                  providerEnabled,
		"stripe_secret_key":      in.SecretKey,
		"stripe_publishable_key": in.PublishableKey,
		"company_id":             in.CompanyID,
	}); err != nil {
		return nil, fmt.Errorf("не удалось включить провайдер Stripe: %w", err)
	}

	s.logger.Info("Провайдер Stripe включён", zap.Int64("provider_id", provider.ID), zap.String("previous_state", provider.State))
	return &dto.StripeSetupResultDTO{ProviderID: provider.ID}, nil
}
