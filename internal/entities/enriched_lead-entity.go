package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// EnrichedLead - строка выборки permit_leads JOIN permits.
type EnrichedLead struct {
	LeadID           int64        `db:"lead_id"`
	PermitNumber     null.String  `db:"permit_number" validate:"required,permit_number"`
	CityName         null.String  `db:"city_name"`
	AddressLine1     null.String  `db:"address_line1"`
	ProjectValuation null.Float64 `db:"project_valuation"`
	PermitType       null.String  `db:"permit_type"`
	OwnerName        null.String  `db:"owner_name"`
	ContactName      null.String  `db:"contact_name"`
	ContactEmail     null.String  `db:"contact_email"`
	ContactPhone     null.String  `db:"contact_phone"`
	CompanyName      null.String  `db:"company_name"`
	ContactRole      null.String  `db:"contact_role"`
	Score            null.Int     `db:"score"`
	ValuationTier    null.String  `db:"valuation_tier"`
	UpdatedAt        null.Time    `db:"updated_at"`
}

// SyncRun - запись журнала запусков синхронизации.
type SyncRun struct {
	ID         string         `db:"id"`
	Kind       string         `db:"kind"`
	StartedAt  time.Time      `db:"started_at"`
	FinishedAt null.Time      `db:"finished_at"`
	DryRun     bool           `db:"dry_run"`
	Stats      map[string]int `db:"stats"`
	Error      null.String    `db:"error"`
}
