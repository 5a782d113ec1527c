package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/integrations/odoo"
)

func TestPartnerService_GetOrCreateCompany(t *testing.T) {
	h := newHarness(t)
	svc := h.partnerService()
	ctx := context.Background()

	id, err := svc.GetOrCreateCompany(ctx, "  ", []int64{1})
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = svc.GetOrCreateCompany(ctx, "Acme Builders", []int64{1, 2})
	require.NoError(t, err)
	rec := h.odoo.Get(odoo.ModelPartner, id)
	assert.Equal(t, true, rec["is_company"])
	assert.Equal(t, "company", rec["company_type"])
	assert.Equal(t, []interface{}{int64(1), int64(2)}, rec["category_id"])

	again, err := svc.GetOrCreateCompany(ctx, "Acme Builders", []int64{3})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, h.odoo.Get(odoo.ModelPartner, id)["category_id"])
	assert.Equal(t, 1, h.odoo.Count(odoo.ModelPartner))
}

func TestPartnerService_ContactDedupByEmailThenName(t *testing.T) {
	h := newHarness(t)
	svc := h.partnerService()
	ctx := context.Background()

	byEmail, err := svc.GetOrCreateContact(ctx, ContactInput{Name: "Jane Doe", Email: "jane@acme.com", Phone: "214", CompanyID: 7, Comment: "Permit: BP-1"})
	require.NoError(t, err)
	rec := h.odoo.Get(odoo.ModelPartner, byEmail)
	assert.Equal(t, "person", rec["company_type"])
	assert.Equal(t, int64(7), rec["parent_id"])
	assert.Equal(t, "Permit: BP-1", rec["comment"])

	// Тот же email под другим именем - тот же контакт
	same, err := svc.GetOrCreateContact(ctx, ContactInput{Name: "J. Doe", Email: "jane@acme.com", CategoryIDs: []int64{4}})
	require.NoError(t, err)
	assert.Equal(t, byEmail, same)
	assert.Equal(t, []interface{}{int64(4)}, h.odoo.Get(odoo.ModelPartner, byEmail)["category_id"])

	byName, err := svc.GetOrCreateContact(ctx, ContactInput{Name: "Bob Smith"})
	require.NoError(t, err)
	assert.NotContains(t, h.odoo.Get(odoo.ModelPartner, byName), "email")

	again, err := svc.GetOrCreateContact(ctx, ContactInput{Name: "Bob Smith"})
	require.NoError(t, err)
	assert.Equal(t, byName, again)
	assert.Equal(t, 2, h.odoo.Count(odoo.ModelPartner))
}

func TestPartnerService_EnsureListCompany(t *testing.T) {
	h := newHarness(t)
	svc := h.partnerService()
	ctx := context.Background()

	umbrella, list, err := svc.EnsureListCompany(ctx, ListCompanySpec{
		Name: "Lead List - fort_worth", Comment: "c", RootCategory: 1, Categories: []int64{1, 2}, RefreshExisting: true,
	})
	require.NoError(t, err)

	u := h.odoo.Get(odoo.ModelPartner, umbrella)
	assert.Equal(t, "Lead Lists", u["name"])
	assert.Equal(t, "Parent organization for all imported lead lists", u["comment"])
	assert.Equal(t, umbrella, h.odoo.Get(odoo.ModelPartner, list)["parent_id"])

	umbrella2, list2, err := svc.EnsureListCompany(ctx, ListCompanySpec{
		Name: "Lead List - fort_worth", RootCategory: 1, Categories: []int64{1, 2, 5}, RefreshExisting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, umbrella, umbrella2)
	assert.Equal(t, list, list2)
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(5)}, h.odoo.Get(odoo.ModelPartner, list)["category_id"])
	assert.Equal(t, 2, h.odoo.Count(odoo.ModelPartner))
}

func TestPartnerService_EnsureListCompanyWithoutRefresh(t *testing.T) {
	h := newHarness(t)
	svc := h.partnerService()
	ctx := context.Background()
	h.odoo.Seed(odoo.ModelPartner, odoo.Values{"name": "Lead Lists", "is_company": true})

	_, _, err := svc.EnsureListCompany(ctx, ListCompanySpec{Name: "Lead List - Dallas Commercial - Mar 2026", RootCategory: 1, Categories: []int64{1}})
	require.NoError(t, err)
	assert.Empty(t, h.odoo.CallsTo(odoo.ModelPartner, "write"))
}

func TestPartnerService_FindOrCreateCustomer(t *testing.T) {
	h := newHarness(t)
	svc := h.partnerService()
	ctx := context.Background()

	id, created, err := svc.FindOrCreateCustomer(ctx, "john.smith@example.com", "", "")
	require.NoError(t, err)
	assert.True(t, created)
	rec := h.odoo.Get(odoo.ModelPartner, id)
	assert.Equal(t, "John.Smith", rec["name"])
	assert.Equal(t, 1, rec["customer_rank"])
	assert.NotContains(t, rec, "company_name")

	again, created, err := svc.FindOrCreateCustomer(ctx, "john.smith@example.com", "John", "Acme")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)
}
