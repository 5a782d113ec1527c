package services

import (
	"context"
	"errors"
	"net/rpc"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
)

type fakeSource struct {
	rows   []entities.EnrichedLead
	filter repositories.EnrichmentFilter
	err    error
}

func (f *fakeSource) FindEnriched(_ context.Context, filter repositories.EnrichmentFilter) ([]entities.EnrichedLead, error) {
	f.filter = filter
	return f.rows, f.err
}

type fakeLedger struct {
	started  int
	finished map[string]int
	runErr   error
}

func (f *fakeLedger) Start(context.Context, string, bool) (string, error) {
	f.started++
	return "run-1", nil
}

func (f *fakeLedger) Finish(_ context.Context, _ string, stats map[string]int, runErr error) error {
	f.finished = stats
	f.runErr = runErr
	return nil
}

func (f *fakeLedger) Recent(context.Context, uint64) ([]entities.SyncRun, error) { return nil, nil }

func enriched(permit, email string) entities.EnrichedLead {
	row := entities.EnrichedLead{PermitNumber: null.StringFrom(permit)}
	if email != "" {
		row.ContactEmail = null.StringFrom(email)
	}
	return row
}

func newSync(h *harness, src *fakeSource, ledger repositories.SyncRunRepositoryInterface) *EnrichmentSync {
	s := NewEnrichmentSync(src, h.leads, h.partners, ledger, h.validator, h.logger)
	s.now = clock
	return s
}

func TestEnrichmentNote(t *testing.T) {
	row := entities.EnrichedLead{
		ContactName: null.StringFrom("Jane Doe"),
		CompanyName: null.StringFrom("Acme"),
	}
	note := EnrichmentNote(row, fixedNow)
	assert.Equal(t, "\n\n--- Enriched 2026-03-14 09:30 ---\nContact: Jane Doe\nCompany: Acme\n", note)
	assert.True(t, EnrichedToday("Old text"+note, fixedNow))
	assert.False(t, EnrichedToday("Old text", fixedNow))
	assert.Empty(t, EnrichmentNote(entities.EnrichedLead{}, fixedNow))
}

func TestNewLeadValues(t *testing.T) {
	row := entities.EnrichedLead{
		PermitNumber:     null.StringFrom("BP-9"),
		CityName:         null.StringFrom("Dallas"),
		AddressLine1:     null.StringFrom("1 Main St"),
		ProjectValuation: null.Float64From(250000),
		PermitType:       null.StringFrom("Commercial Remodel"),
		ContactName:      null.StringFrom("Jane Doe"),
		ContactEmail:     null.StringFrom("jane@acme.com"),
		ContactPhone:     null.StringFrom("1-214-555-0100"),
		CompanyName:      null.StringFrom("Acme"),
		Score:            null.IntFrom(88),
		ValuationTier:    null.StringFrom("HIGH"),
	}
	values := NewLeadValues(row, fixedNow)
	assert.Equal(t, "[BP-9] Acme - Jane Doe", values["name"])
	assert.Equal(t, "Acme", values["partner_name"])
	assert.Equal(t, 250000.0, values["expected_revenue"])
	assert.Equal(t, "(214) 555-0100", values["phone"])
	assert.Equal(t, "1 Main St", values["street"])
	assert.Equal(t, "**Permit Type:** Commercial Remodel\n**Lead Score:** 88\n**Value Tier:** HIGH\n\n"+
		"**Source:** PostgreSQL Enrichment Sync\n**City:** Dallas\n**Synced:** 2026-03-14", values["description"])

	bare := NewLeadValues(enriched("BP-10", ""), fixedNow)
	assert.Equal(t, "[BP-10]", bare["name"])
	assert.Equal(t, "Unknown", bare["partner_name"])
	assert.NotContains(t, bare, "email_from")
}

func TestEnrichmentSync_UpdatesExistingLeads(t *testing.T) {
	h := newHarness(t)
	h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-2] Roof", "email_from": "same@x.com"})
	leadID := h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-3] Remodel", "description": "Imported"})
	bobLead := h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-4] Shell"})
	companyID := h.odoo.Seed(odoo.ModelPartner, odoo.Values{"name": "Acme", "is_company": true})
	contactID := h.odoo.Seed(odoo.ModelPartner, odoo.Values{"name": "Jane Doe", "email": "jane@acme.com", "is_company": false})

	jane := enriched("BP-3", "jane@acme.com")
	jane.ContactName = null.StringFrom("Jane Doe")
	jane.ContactPhone = null.StringFrom("214.555.0100")
	jane.CompanyName = null.StringFrom("Acme")
	jane.ContactRole = null.StringFrom("Owner")

	bob := enriched("BP-4", "")
	bob.ContactName = null.StringFrom("Bob")

	src := &fakeSource{rows: []entities.EnrichedLead{
		enriched("BP-1", "new@x.com"),
		enriched("BP-2", "same@x.com"),
		jane,
		bob,
	}}
	ledger := &fakeLedger{}

	stats, err := newSync(h, src, ledger).Sync(context.Background(), dto.SyncOptions{City: "Dallas", MinScore: 50, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStats{Synced: 2, ContactsUpdated: 1, NotFound: 1, Skipped: 1}, stats)
	assert.Equal(t, repositories.EnrichmentFilter{City: "Dallas", MinScore: 50, Limit: 10}, src.filter)

	lead := h.odoo.Get(odoo.ModelLead, leadID)
	assert.Equal(t, "jane@acme.com", lead["email_from"])
	assert.Equal(t, "(214) 555-0100", lead["phone"])
	assert.Equal(t, "Jane Doe", lead["contact_name"])
	assert.Equal(t, "Acme", lead["partner_name"])
	assert.Equal(t, "Imported\n\n--- Enriched 2026-03-14 09:30 ---\nContact: Jane Doe\nRole: Owner\nCompany: Acme\n", lead["description"])

	contact := h.odoo.Get(odoo.ModelPartner, contactID)
	assert.Equal(t, "(214) 555-0100", contact["phone"])
	assert.Equal(t, companyID, contact["parent_id"])

	assert.Equal(t, "Bob", h.odoo.Get(odoo.ModelLead, bobLead)["contact_name"])

	assert.Equal(t, 1, ledger.started)
	assert.Equal(t, 2, ledger.finished["synced"])
	assert.NoError(t, ledger.runErr)
}

func TestEnrichmentSync_PermitWithSpacesAndPunctuation(t *testing.T) {
	h := newHarness(t)
	spaced := h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP 2024-001] Remodel"})
	hashed := h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP#7] Shell"})
	src := &fakeSource{rows: []entities.EnrichedLead{
		enriched(" BP 2024-001 ", "jane@acme.com"),
		enriched("BP#7", "bob@acme.com"),
		enriched("   ", "blank@acme.com"),
	}}

	stats, err := newSync(h, src, nil).Sync(context.Background(), dto.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStats{Synced: 2, Skipped: 1}, stats)
	assert.Equal(t, "jane@acme.com", h.odoo.Get(odoo.ModelLead, spaced)["email_from"])
	assert.Equal(t, "bob@acme.com", h.odoo.Get(odoo.ModelLead, hashed)["email_from"])
}

func TestEnrichmentSync_NoteAddedOncePerDay(t *testing.T) {
	h := newHarness(t)
	leadID := h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-4] Shell", "description": "Imported"})
	row := enriched("BP-4", "")
	row.ContactName = null.StringFrom("Bob")
	s := newSync(h, &fakeSource{rows: []entities.EnrichedLead{row}}, nil)

	for i := 0; i < 2; i++ {
		stats, err := s.Sync(context.Background(), dto.SyncOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Synced)
	}
	desc := h.odoo.Get(odoo.ModelLead, leadID)["description"].(string)
	assert.Equal(t, 1, strings.Count(desc, "--- Enriched 2026-03-14"))
}

func TestEnrichmentSync_CreateNew(t *testing.T) {
	h := newHarness(t)
	good := enriched("BP-7", "jane@acme.com")
	good.CompanyName = null.StringFrom("Acme")
	src := &fakeSource{rows: []entities.EnrichedLead{
		enriched("BP-5", ""),
		enriched("BP-6", "None"),
		good,
		{},
	}}

	stats, err := newSync(h, src, nil).Sync(context.Background(), dto.SyncOptions{CreateNew: true})
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStats{Created: 1, Skipped: 3}, stats)

	leads := h.odoo.All(odoo.ModelLead)
	require.Len(t, leads, 1)
	assert.Equal(t, "[BP-7] Acme", leads[0]["name"])
	assert.Equal(t, "jane@acme.com", leads[0]["email_from"])
}

func TestEnrichmentSync_DryRun(t *testing.T) {
	h := newHarness(t)
	h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-3] Remodel"})
	src := &fakeSource{rows: []entities.EnrichedLead{
		enriched("BP-3", "jane@acme.com"),
		enriched("BP-8", "new@acme.com"),
	}}
	ledger := &fakeLedger{}

	stats, err := newSync(h, src, ledger).Sync(context.Background(), dto.SyncOptions{DryRun: true, CreateNew: true})
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStats{Created: 1, Synced: 1}, stats)
	assert.Empty(t, h.odoo.CallsTo(odoo.ModelLead, "write"))
	assert.Empty(t, h.odoo.CallsTo(odoo.ModelLead, "create"))
	assert.Zero(t, ledger.started)
}

func TestEnrichmentSync_WriteFaultSkipsRow(t *testing.T) {
	h := newHarness(t)
	h.odoo.Seed(odoo.ModelLead, odoo.Values{"name": "[BP-3] Remodel"})
	h.odoo.Fail[odoo.ModelLead+".write"] = rpc.ServerError("Fault(2): AccessError")

	stats, err := newSync(h, &fakeSource{rows: []entities.EnrichedLead{enriched("BP-3", "jane@acme.com")}}, nil).
		Sync(context.Background(), dto.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
}

func TestEnrichmentSync_TransportErrorAborts(t *testing.T) {
	h := newHarness(t)
	h.odoo.Fail[odoo.ModelLead+".search_read"] = errors.New("connection refused")
	ledger := &fakeLedger{}

	_, err := newSync(h, &fakeSource{rows: []entities.EnrichedLead{enriched("BP-3", "a@b.c")}}, ledger).
		Sync(context.Background(), dto.SyncOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, ledger.runErr, "connection refused")
}

func TestEnrichmentSync_SourceError(t *testing.T) {
	h := newHarness(t)
	_, err := newSync(h, &fakeSource{err: errors.New("db down")}, nil).Sync(context.Background(), dto.SyncOptions{})
	assert.EqualError(t, err, "db down")
}
