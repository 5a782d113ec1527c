package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"odoo-leads/config"
	"odoo-leads/internal/dto"
	"odoo-leads/internal/integrations"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
)

const n8nTimeout = 5 * time.Second

type HealthServiceInterface interface {
	// Run выполняет все проверки и возвращает их в порядке регистрации.
	Run(ctx context.Context) ([]dto.CheckResultDTO, bool)
	// Ping - короткая проверка для GET /health.
	Ping(ctx context.Context) dto.HealthStatusDTO
}

type HealthService struct {
	session  odoo.Session
	system   repositories.SystemRepositoryInterface
	products repositories.ProductRepositoryInterface
	catalog  *config.Catalog
	odooURL  string
	n8nURL   string
	http     *http.Client
	probes   integrations.RegistryInterface
	logger   *zap.Logger
	now      func() time.Time
}

func NewHealthService(
	session odoo.Session,
	system repositories.SystemRepositoryInterface,
	products repositories.ProductRepositoryInterface,
	catalog *config.Catalog,
	odooURL, n8nURL string,
	logger *zap.Logger,
) *HealthService {
	s := &HealthService{
		session:  session,
		system:   system,
		products: products,
		catalog:  catalog,
		odooURL:  odooURL,
		n8nURL:   strings.TrimRight(n8nURL, "/"),
		http:     &http.Client{Timeout: n8nTimeout},
		probes:   integrations.NewRegistry(),
		logger:   logger.Named("health"),
		now:      time.Now,
	}
	for _, p := range []integrations.Probe{
		integrations.NewProbe("Odoo Server", s.checkServer),
		integrations.NewProbe("Odoo Auth", s.checkAuth),
		integrations.NewProbe("Portal Module", s.checkPortal),
		integrations.NewProbe("Stripe Provider", s.checkStripe),
		integrations.NewProbe("n8n Automation", s.checkN8N),
		integrations.NewProbe("Product Catalog", s.checkProducts),
	} {
		_ = s.probes.Register(p)
	}
	return s
}

func (s *HealthService) Run(ctx context.Context) ([]dto.CheckResultDTO, bool) {
	probes := s.probes.All()
	results := make([]dto.CheckResultDTO, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			results[i] = p.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	passed := true
	for _, r := range results {
		if r.Status != dto.CheckOK {
			passed = false
		}
		s.logger.Debug("Проверка", zap.String("name", r.Name), zap.String("status", string(r.Status)), zap.String("message", r.Message))
	}
	return results, passed
}

func (s *HealthService) Ping(ctx context.Context) dto.HealthStatusDTO {
	if _, err := s.session.Authenticate(ctx); err != nil {
		return dto.HealthStatusDTO{Status: "unhealthy", Odoo: "disconnected", Error: err.Error()}
	}
	return dto.HealthStatusDTO{
		Status:    "healthy",
		Odoo:      "connected",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}

func (s *HealthService) checkServer(ctx context.Context) (dto.CheckStatus, string) {
	info, err := s.session.Version(ctx)
	if err != nil {
		return dto.CheckFail, fmt.Sprintf("Odoo check failed: %v", err)
	}
	version, _ := info["server_version"].(string)
	if version == "" {
		version = "unknown"
	}
	return dto.CheckOK, fmt.Sprintf("Odoo %s responding at %s", version, s.odooURL)
}

func (s *HealthService) checkAuth(ctx context.Context) (dto.CheckStatus, string) {
	uid, err := s.session.Authenticate(ctx)
	if err != nil {
		return dto.CheckFail, fmt.Sprintf("Odoo authentication failed: %v", err)
	}
	return dto.CheckOK, fmt.Sprintf("Odoo authentication successful (uid: %d)", uid)
}

func (s *HealthService) checkPortal(ctx context.Context) (dto.CheckStatus, string) {
	installed, err := s.system.ModuleInstalled(ctx, "portal")
	switch {
	case err != nil:
		return dto.CheckFail, fmt.Sprintf("Portal module check failed: %v", err)
	case !installed:
		return dto.CheckFail, "Portal module not installed"
	}
	return dto.CheckOK, "Portal module installed"
}

func (s *HealthService) checkStripe(ctx context.Context) (dto.CheckStatus, string) {
	state, err := s.system.PaymentProviderState(ctx, "stripe")
	switch {
	case err != nil:
		return dto.CheckFail, fmt.Sprintf("Stripe check failed: %v", err)
	case state == "":
		return dto.CheckFail, "Stripe provider not found - install payment_stripe module"
	case state != "enabled":
		return dto.CheckWarn, "Stripe provider exists but state is: " + state
	}
	return dto.CheckOK, "Stripe payment provider enabled"
}

func (s *HealthService) checkN8N(ctx context.Context) (dto.CheckStatus, string) {
	ctx, cancel := context.WithTimeout(ctx, n8nTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.n8nURL+"/healthz", nil)
	if err != nil {
		return dto.CheckFail, fmt.Sprintf("n8n check failed: %v", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dto.CheckFail, "n8n connection timed out"
		}
		return dto.CheckFail, fmt.Sprintf("n8n connection failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dto.CheckFail, fmt.Sprintf("n8n returned status %d", resp.StatusCode)
	}
	return dto.CheckOK, "n8n responding at " + s.n8nURL
}

func (s *HealthService) checkProducts(ctx context.Context) (dto.CheckStatus, string) {
	codes := s.catalog.ProductCodes()
	total, err := s.products.CountByCodes(ctx, codes)
	switch {
	case err != nil:
		return dto.CheckFail, fmt.Sprintf("Products check failed: %v", err)
	case total >= int64(len(codes)):
		return dto.CheckOK, fmt.Sprintf("%d catalog products found", total)
	case total > 0:
		return dto.CheckWarn, fmt.Sprintf("Only %d/%d expected products found", total, len(codes))
	}
	return dto.CheckFail, "No catalog products found - run products create"
}
