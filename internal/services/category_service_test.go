package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/integrations/odoo"
)

func TestCategoryService_SetupLeadList(t *testing.T) {
	h := newHarness(t)
	svc := h.categoryService()

	cats, err := svc.SetupLeadList(context.Background(), "Construction")
	require.NoError(t, err)

	root := h.odoo.Get(odoo.ModelPartnerCategory, cats.Root)
	assert.Equal(t, "Lead List", root["name"])
	assert.Equal(t, int64(10), root["color"])
	assert.NotContains(t, root, "parent_id")

	industry := h.odoo.Get(odoo.ModelPartnerCategory, cats.Industry)
	assert.Equal(t, "Construction", industry["name"])
	assert.Equal(t, cats.Root, industry["parent_id"])
	assert.Equal(t, int64(2), industry["color"])

	require.Len(t, cats.Tiers, 4)
	assert.Equal(t, int64(6), h.odoo.Get(odoo.ModelPartnerCategory, cats.Tiers["Premium"])["color"])
	assert.Empty(t, cats.Projects)
	assert.Equal(t, 8, h.odoo.Count(odoo.ModelPartnerCategory))
	assert.Equal(t, []int64{cats.Root, cats.Industry, cats.ForSale, cats.Outreach}, cats.ListLinks())
}

func TestCategoryService_UnknownIndustryDefaultsColor(t *testing.T) {
	h := newHarness(t)
	cats, err := h.categoryService().SetupLeadList(context.Background(), "Healthcare")
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.odoo.Get(odoo.ModelPartnerCategory, cats.Industry)["color"])
}

func TestCategoryService_ReusesExistingAndMemoises(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	existing := h.odoo.Seed(odoo.ModelPartnerCategory, odoo.Values{"name": "Lead List", "color": int64(1)})
	svc := h.categoryService()

	id, err := svc.GetOrCreate(ctx, "Lead List", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, existing, id)

	searches := len(h.odoo.CallsTo(odoo.ModelPartnerCategory, "search_read"))
	id, err = svc.GetOrCreate(ctx, "Lead List", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, existing, id)
	assert.Len(t, h.odoo.CallsTo(odoo.ModelPartnerCategory, "search_read"), searches)
	assert.Empty(t, h.odoo.CallsTo(odoo.ModelPartnerCategory, "create"))
}

func TestCategoryService_SetupCommercial(t *testing.T) {
	h := newHarness(t)
	cats, err := h.categoryService().SetupCommercial(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Construction", h.odoo.Get(odoo.ModelPartnerCategory, cats.Industry)["name"])
	require.Len(t, cats.Projects, 5)
	assert.Equal(t, int64(9), h.odoo.Get(odoo.ModelPartnerCategory, cats.Projects["Industrial"])["color"])
}
