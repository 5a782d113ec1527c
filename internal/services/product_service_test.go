package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/integrations/odoo"
)

func TestProductService_CreateIsIdempotent(t *testing.T) {
	h := newHarness(t)
	existing := h.odoo.Seed(odoo.ModelProductTemplate, odoo.Values{"name": "DFW", "default_code": "LEAD-DFW"})
	s := NewProductService(h.products, h.catalog, h.logger)
	ctx := context.Background()

	results, err := s.Create(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(h.catalog.Products))

	assert.Equal(t, "LEAD-DFW", results[0].Code)
	assert.Equal(t, "skipped", results[0].Status)
	assert.Equal(t, existing, results[0].ID)
	for _, r := range results[1:] {
		assert.Equal(t, "created", r.Status, r.Code)
	}
	assert.Equal(t, len(h.catalog.Products), h.odoo.Count(odoo.ModelProductTemplate))

	created := h.odoo.CallsTo(odoo.ModelProductTemplate, "create")
	require.NotEmpty(t, created)
	assert.Equal(t, "service", created[0].Values["type"])

	again, err := s.Create(ctx)
	require.NoError(t, err)
	for _, r := range again {
		assert.Equal(t, "skipped", r.Status, r.Code)
	}
	assert.Equal(t, len(h.catalog.Products), h.odoo.Count(odoo.ModelProductTemplate))
}

func TestProductService_List(t *testing.T) {
	h := newHarness(t)
	h.odoo.Seed(odoo.ModelProductTemplate, odoo.Values{"name": "DFW", "default_code": "LEAD-DFW", "list_price": 149.0})
	h.odoo.Seed(odoo.ModelProductTemplate, odoo.Values{"name": "Other", "default_code": "OTHER"})

	list, err := NewProductService(h.products, h.catalog, h.logger).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "LEAD-DFW", list[0].Code)
	assert.Equal(t, 149.0, list[0].Price)
}
