package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"odoo-leads/config"
	"odoo-leads/internal/crm"
	"odoo-leads/internal/integrations/mock"
	"odoo-leads/internal/repositories"
	"odoo-leads/pkg/validation"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// harness - сервисы поверх in-memory Odoo.
type harness struct {
	odoo       *mock.Odoo
	guard      *crm.SchemaGuard
	partners   repositories.PartnerRepositoryInterface
	categories repositories.CategoryRepositoryInterface
	leads      repositories.LeadRepositoryInterface
	products   repositories.ProductRepositoryInterface
	invoices   repositories.InvoiceRepositoryInterface
	catalog    *config.Catalog
	validator  *validation.CustomValidator
	logger     *zap.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := mock.NewOdoo()
	guard := crm.NewSchemaGuard(f, repositories.NewMemoryCacheRepository(time.Hour), zap.NewNop())
	catalog, err := config.LoadCatalog()
	require.NoError(t, err)
	return &harness{
		odoo:       f,
		guard:      guard,
		partners:   repositories.NewPartnerRepository(f, guard),
		categories: repositories.NewCategoryRepository(f, guard),
		leads:      repositories.NewLeadRepository(f, guard),
		products:   repositories.NewProductRepository(f, guard),
		invoices:   repositories.NewInvoiceRepository(f, guard),
		catalog:    catalog,
		validator:  validation.New(),
		logger:     zap.NewNop(),
	}
}

func (h *harness) categoryService() *CategoryService {
	return NewCategoryService(h.categories, h.catalog, h.logger)
}

func (h *harness) partnerService() *PartnerService {
	return NewPartnerService(h.partners, h.logger)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
