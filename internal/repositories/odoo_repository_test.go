package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"odoo-leads/internal/crm"
	"odoo-leads/internal/integrations/mock"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
)

func newGuard(f *mock.Odoo) *crm.SchemaGuard {
	return crm.NewSchemaGuard(f, nil, zap.NewNop())
}

func TestPartnerRepository_FindCompanyAndPerson(t *testing.T) {
	f := mock.NewOdoo()
	ctx := context.Background()
	company := f.Seed(odoo.ModelPartner, odoo.Values{"name": "Acme", "is_company": true})
	person := f.Seed(odoo.ModelPartner, odoo.Values{"name": "Acme", "is_company": false, "parent_id": company})

	repo := repositories.NewPartnerRepository(f, newGuard(f))

	p, err := repo.FindCompany(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, company, p.ID)
	assert.True(t, p.IsCompany)

	p, err = repo.FindPerson(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, person, p.ID)
	assert.Equal(t, company, p.ParentID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPartnerRepository_CreateDropsUnknownFields(t *testing.T) {
	f := mock.NewOdoo()
	repo := repositories.NewPartnerRepository(f, newGuard(f))

	id, err := repo.Create(context.Background(), odoo.Values{"name": "Jane", "x_legacy_code": "A1"})
	require.NoError(t, err)
	rec := f.Get(odoo.ModelPartner, id)
	assert.Equal(t, "Jane", rec["name"])
	assert.NotContains(t, rec, "x_legacy_code")
}

func TestPartnerRepository_UpdateWithOnlyUnknownFields(t *testing.T) {
	f := mock.NewOdoo()
	id := f.Seed(odoo.ModelPartner, odoo.Values{"name": "Jane"})
	repo := repositories.NewPartnerRepository(f, newGuard(f))

	err := repo.Update(context.Background(), id, odoo.Values{"x_unknown": 1})
	assert.ErrorIs(t, err, apperrors.ErrEmptyValues)
	assert.Empty(t, f.CallsTo(odoo.ModelPartner, "write"))
}

func TestCategoryRepository_FindByParent(t *testing.T) {
	f := mock.NewOdoo()
	ctx := context.Background()
	root := f.Seed(odoo.ModelPartnerCategory, odoo.Values{"name": "Lead List"})
	other := f.Seed(odoo.ModelPartnerCategory, odoo.Values{"name": "Premium"})
	child := f.Seed(odoo.ModelPartnerCategory, odoo.Values{"name": "Premium", "parent_id": root})

	repo := repositories.NewCategoryRepository(f, newGuard(f))

	id, err := repo.Find(ctx, "Premium", root)
	require.NoError(t, err)
	assert.Equal(t, child, id)

	id, err = repo.Find(ctx, "Premium", 0)
	require.NoError(t, err)
	assert.Equal(t, other, id)

	created, err := repo.Create(ctx, "Retail", root, 0)
	require.NoError(t, err)
	rec := f.Get(odoo.ModelPartnerCategory, created)
	assert.Equal(t, root, rec["parent_id"])
	assert.NotContains(t, rec, "color")
}

func TestLeadRepository_FindByPermit(t *testing.T) {
	f := mock.NewOdoo()
	ctx := context.Background()
	f.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-10] Other"})
	id := f.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-1] Acme - Jane", "email_from": "jane@acme.com", "description": "old"})

	repo := repositories.NewLeadRepository(f, newGuard(f))

	lead, err := repo.FindByPermit(ctx, "BP-1")
	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	assert.Equal(t, "jane@acme.com", lead.EmailFrom)
	assert.Equal(t, "", lead.Phone)

	desc, err := repo.Description(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "old", desc)

	_, err = repo.FindByPermit(ctx, "BP-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_CountByCodes(t *testing.T) {
	f := mock.NewOdoo()
	ctx := context.Background()
	f.Seed(odoo.ModelProductTemplate, odoo.Values{"name": "A", "default_code": "LEAD-DFW"})
	f.Seed(odoo.ModelProductTemplate, odoo.Values{"name": "B", "default_code": "OTHER"})

	repo := repositories.NewProductRepository(f, newGuard(f))

	n, err := repo.CountByCodes(ctx, []string{"LEAD-DFW", "SEO-AUDIT"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountByCodes(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInvoiceRepository_PostAndReconcileTolerateNone(t *testing.T) {
	f := mock.NewOdoo()
	ctx := context.Background()
	move := f.Seed(odoo.ModelMove, odoo.Values{"name": "/", "move_type": "out_invoice", "ref": "cs_1", "state": "draft"})
	f.Actions[odoo.ModelPayment+".action_post"] = func([]int64) (interface{}, error) { return nil, mock.NoneFault }

	repo := repositories.NewInvoiceRepository(f, newGuard(f))

	require.NoError(t, repo.PostInvoice(ctx, move))
	inv, err := repo.FindByStripeSession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "posted", inv.State)
	assert.Equal(t, "INV/2026/00001", inv.Name)

	assert.NoError(t, repo.PostPayment(ctx, 99))
	assert.NoError(t, repo.Reconcile(ctx, []int64{1, 2}))
}

func TestInvoiceRepository_InboundMethodLineMissing(t *testing.T) {
	f := mock.NewOdoo()
	repo := repositories.NewInvoiceRepository(f, newGuard(f))

	id, err := repo.InboundMethodLine(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, id)
}
