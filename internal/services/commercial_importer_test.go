package services

import (
	"context"
	"net/rpc"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/integrations/odoo"
)

const commercialCSV = `City,Permit Number,Full Address,Valuation,Project Category,Project Type,Property Owner,Contractor,Lead Score,Priority,Data Source,Project Description
Dallas,D-100,"123 Main St, Dallas, TX",$1.5M,Retail Remodel,Remodel,Main Street LLC,BuildCo,92,HIGH,Dallas Open Data,New storefront
Fort Worth,FW-7,"9 Oak Ave, Fort Worth, TX",80K,Office,New Construction,,Oak GC,70,MEDIUM,Fort Worth Portal,
,X-1,,100,,,,,,,,
Dallas,D-101,,TBD,,,,,,,Dallas Open Data,
Plano,P-1,1 Elm St,50000,Warehouse,,,,,,Plano,
`

func newCommercialImporter(h *harness) *CommercialImporter {
	s := NewCommercialImporter(h.categoryService(), h.partnerService(), h.leads, h.validator, h.logger)
	s.now = clock
	return s
}

func TestValueTier(t *testing.T) {
	assert.Equal(t, "Premium", ValueTier(500_000))
	assert.Equal(t, "High Value", ValueTier(100_000))
	assert.Equal(t, "Medium Value", ValueTier(25_000))
	assert.Equal(t, "Low Value", ValueTier(1))
	assert.Equal(t, "", ValueTier(0))
}

func TestProjectCategory(t *testing.T) {
	assert.Equal(t, "Retail", ProjectCategory("Retail Remodel"))
	assert.Equal(t, "Industrial", ProjectCategory("WAREHOUSE shell"))
	assert.Equal(t, "Restaurant", ProjectCategory("Fast food"))
	assert.Equal(t, "Medical", ProjectCategory("Healthcare clinic"))
	assert.Equal(t, "", ProjectCategory("Church"))
	assert.Equal(t, "", ProjectCategory(""))
}

func TestCommercialLeadName(t *testing.T) {
	assert.Equal(t, "[D-100] Retail - 123 Main St",
		CommercialLeadName(dto.CommercialRowDTO{PermitNumber: "D-100", ProjectCategory: "Retail", Address: "123 Main St, Dallas, TX"}))
	assert.Equal(t, "[D-101]", CommercialLeadName(dto.CommercialRowDTO{PermitNumber: "D-101", City: "Dallas"}))
	assert.Equal(t, "Commercial Lead - Dallas", CommercialLeadName(dto.CommercialRowDTO{City: "Dallas"}))
}

func TestCommercialDescription_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 600)
	desc := CommercialDescription(dto.CommercialRowDTO{Priority: "HIGH", Description: long, DataSource: "Dallas Open Data"}, fixedNow)

	assert.True(t, strings.HasPrefix(desc, "**Priority:** HIGH\n"))
	assert.Contains(t, desc, "\n**Description:**\n"+strings.Repeat("a", 500)+"...\n")
	assert.NotContains(t, desc, strings.Repeat("a", 501))
	assert.True(t, strings.HasSuffix(desc, "**Source:** Dallas Open Data\n**Imported:** 2026-03-14"))

	short := CommercialDescription(dto.CommercialRowDTO{Description: "Short"}, fixedNow)
	assert.Contains(t, short, "Short...")
}

func TestGroupByCity(t *testing.T) {
	rows := []dto.CommercialRowDTO{{City: "Dallas"}, {City: "Plano"}, {City: ""}, {City: "Dallas"}, {City: "Frisco"}}

	order, groups := groupByCity(rows, "", []string{"Frisco"})
	assert.Equal(t, []string{"Dallas", "Plano"}, order)
	assert.Len(t, groups["Dallas"], 2)

	order, _ = groupByCity(rows, "Plano", nil)
	assert.Equal(t, []string{"Plano"}, order)
}

func TestCommercialImporter_Import(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "commercial.csv", commercialCSV)

	stats, err := newCommercialImporter(h).Import(context.Background(), dto.CommercialOptions{
		Path:          path,
		ExcludeCities: []string{"Plano"},
		ListLabel:     "Mar 2026",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.LeadsCreated)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, []dto.CityStats{{City: "Dallas", Created: 2}, {City: "Fort Worth", Created: 1}}, stats.ByCity)

	leads := h.odoo.All(odoo.ModelLead)
	require.Len(t, leads, 3)
	assert.Equal(t, "[D-100] Retail Remodel - 123 Main St", leads[0]["name"])
	assert.Equal(t, 1_500_000.0, leads[0]["expected_revenue"])
	assert.Equal(t, "Main Street LLC", leads[0]["partner_name"])
	assert.Equal(t, "123 Main St, Dallas, TX", leads[0]["street"])
	assert.NotContains(t, leads[0], "tag_ids")

	// лиды создаются по городам в порядке первого появления города
	assert.Equal(t, "[D-101]", leads[1]["name"])
	assert.Equal(t, "Dallas", leads[1]["partner_name"])

	assert.Equal(t, "[FW-7] Office - 9 Oak Ave", leads[2]["name"])
	assert.Equal(t, "Oak GC", leads[2]["partner_name"])
	assert.Equal(t, 80_000.0, leads[2]["expected_revenue"])

	var names []string
	for _, p := range h.odoo.All(odoo.ModelPartner) {
		names = append(names, p["name"].(string))
	}
	assert.ElementsMatch(t, []string{
		"Lead Lists",
		"Lead List - Dallas Commercial - Mar 2026",
		"Lead List - Fort Worth Commercial - Mar 2026",
	}, names)
}

func TestCommercialImporter_DefaultLabelAndCityFilter(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "commercial.csv", commercialCSV)

	stats, err := newCommercialImporter(h).Import(context.Background(), dto.CommercialOptions{Path: path, City: "Plano"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LeadsCreated)

	var found bool
	for _, p := range h.odoo.All(odoo.ModelPartner) {
		if p["name"] == "Lead List - Plano Commercial - Mar 2026" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCommercialImporter_MissingCityColumn(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "commercial.csv", "Permit Number,Valuation\nD-1,100\nD-2,200\n")

	stats, err := newCommercialImporter(h).Import(context.Background(), dto.CommercialOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.LeadsCreated)
	assert.Empty(t, stats.ByCity)
	assert.Empty(t, h.odoo.Calls)
}

func TestCommercialImporter_LeadFailureCountsSkipped(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "commercial.csv", commercialCSV)
	h.odoo.Fail[odoo.ModelLead+".create"] = rpc.ServerError("Fault(2): ValidationError")

	stats, err := newCommercialImporter(h).Import(context.Background(), dto.CommercialOptions{Path: path, City: "Dallas"})
	require.NoError(t, err)
	assert.Zero(t, stats.LeadsCreated)
	assert.Equal(t, 2, stats.Skipped)
}
