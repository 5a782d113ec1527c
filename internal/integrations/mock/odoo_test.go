package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/integrations/odoo"
)

func TestOdoo_DomainEvaluation(t *testing.T) {
	f := NewOdoo()
	ctx := context.Background()
	a := f.Seed(odoo.ModelPartner, odoo.Values{"name": "Acme", "is_company": true, "email": "info@acme.com"})
	b := f.Seed(odoo.ModelPartner, odoo.Values{"name": "Jane Doe", "is_company": false, "parent_id": a})

	ids, err := f.Search(ctx, odoo.ModelPartner, odoo.Where(odoo.Eq("name", "Acme"), odoo.Eq("is_company", true)), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, ids)

	ids, err = f.Search(ctx, odoo.ModelPartner, odoo.Where(odoo.OpOr, odoo.Eq("email", "nobody@x.com"), odoo.ILike("name", "jane")), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids)

	ids, err = f.Search(ctx, odoo.ModelPartner, odoo.Where(odoo.Eq("parent_id", a)), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids)

	ids, err = f.Search(ctx, odoo.ModelPartner, odoo.Where(odoo.Cond{Field: "id", Op: "in", Value: []int64{a, b}}), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, ids)

	n, err := f.SearchCount(ctx, odoo.ModelPartner, odoo.Where(odoo.Cond{Field: "is_company", Op: "!=", Value: true}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOdoo_CreateRejectsUnknownField(t *testing.T) {
	f := NewOdoo()
	_, err := f.Create(context.Background(), odoo.ModelLead, odoo.Values{"name": "x", "bogus": 1})
	require.Error(t, err)
	assert.True(t, odoo.IsFault(err))
	assert.Equal(t, 0, f.Count(odoo.ModelLead))
}

func TestOdoo_ManyToManyCommands(t *testing.T) {
	f := NewOdoo()
	ctx := context.Background()
	id, err := f.Create(ctx, odoo.ModelPartner, odoo.Values{"name": "Acme", "category_id": odoo.LinkAll([]int64{5, 6})})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(5), int64(6)}, f.Get(odoo.ModelPartner, id)["category_id"])

	require.NoError(t, f.Write(ctx, odoo.ModelPartner, []int64{id}, odoo.Values{"category_id": []interface{}{odoo.Link(6), odoo.Link(7)}}))
	assert.Equal(t, []interface{}{int64(5), int64(6), int64(7)}, f.Get(odoo.ModelPartner, id)["category_id"])

	require.NoError(t, f.Write(ctx, odoo.ModelPartner, []int64{id}, odoo.Values{"category_id": []interface{}{odoo.ReplaceAll([]int64{1})}}))
	assert.Equal(t, []interface{}{int64(1)}, f.Get(odoo.ModelPartner, id)["category_id"])

	ids, err := f.Search(ctx, odoo.ModelPartner, odoo.Where(odoo.Eq("category_id", int64(1))), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids)
}

func TestOdoo_CallDefaults(t *testing.T) {
	f := NewOdoo()
	ctx := context.Background()
	move := f.Seed(odoo.ModelMove, odoo.Values{"state": "draft", "name": "/"})

	_, err := f.Call(ctx, odoo.ModelMove, "action_post", []int64{move})
	require.NoError(t, err)
	rec := f.Get(odoo.ModelMove, move)
	assert.Equal(t, "posted", rec["state"])
	assert.NotEqual(t, "/", rec["name"])

	_, err = f.Call(ctx, odoo.ModelPortalWizard, "action_apply", []int64{1})
	assert.True(t, odoo.IsNoneFault(err))
	assert.Len(t, f.CallsTo(odoo.ModelPortalWizard, "action_apply"), 1)
}

func TestOdoo_ReadProjectsMissingFieldsAsFalse(t *testing.T) {
	f := NewOdoo()
	id := f.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-1] Roof"})
	recs, err := f.Read(context.Background(), odoo.ModelLead, []int64{id}, []string{"name", "email_from"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, false, recs[0]["email_from"])
	assert.Equal(t, "", recs[0].String("email_from"))
}
