package dto

// LeadListOptions - параметры импорта списка лидов.
type LeadListOptions struct {
	Path     string
	ListName string
	Industry string
	DryRun   bool
}

// LeadListRowDTO - строка списка после сопоставления колонок.
type LeadListRowDTO struct {
	Line          int
	ContactName   string `validate:"contact_name"`
	ContactEmail  string
	ContactPhone  string
	CompanyName   string
	OwnerName     string
	Valuation     float64
	ValuationTier string
	Score         string
	PermitNumber  string
	PermitType    string
	ContactRole   string
}

type LeadListStats struct {
	Companies    int `json:"companies"`
	Contacts     int `json:"contacts"`
	LeadsCreated int `json:"leads_created"`
	Skipped      int `json:"skipped"`
}

// CommercialOptions - параметры импорта коммерческих лидов.
type CommercialOptions struct {
	Path          string
	City          string
	ExcludeCities []string
	ListLabel     string
}

// CommercialRowDTO - строка многогородской выгрузки.
type CommercialRowDTO struct {
	Line            int
	City            string `validate:"required"`
	PermitNumber    string
	Address         string
	Valuation       float64
	ProjectCategory string
	ProjectType     string
	UseType         string
	SpecificUse     string
	Description     string
	Owner           string
	Contractor      string
	SquareFeet      string
	LeadScore       string
	Priority        string
	DataSource      string
}

type CityStats struct {
	City    string `json:"city"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

type CommercialStats struct {
	LeadsCreated int         `json:"leads_created"`
	Skipped      int         `json:"skipped"`
	ByCity       []CityStats `json:"by_city"`
}

// SyncOptions - параметры синхронизации обогащённых лидов.
type SyncOptions struct {
	City      string
	MinScore  int
	Limit     uint64
	DryRun    bool
	CreateNew bool
}

type SyncStats struct {
	Created         int `json:"created"`
	Synced          int `json:"synced"`
	ContactsUpdated int `json:"contacts_updated"`
	NotFound        int `json:"not_found"`
	Skipped         int `json:"skipped"`
}

// AsMap - статистика для журнала запусков.
func (s SyncStats) AsMap() map[string]int {
	return map[string]int{
		"created":          s.Created,
		"synced":           s.Synced,
		"contacts_updated": s.ContactsUpdated,
		"not_found":        s.NotFound,
		"skipped":          s.Skipped,
	}
}

// Count учитывает исход одной строки синхронизации.
func (s *SyncStats) Count(outcome string) {
	switch outcome {
	case "created":
		s.Created++
	case "synced":
		s.Synced++
	case "synced+contact":
		s.Synced++
		s.ContactsUpdated++
	case "not_found":
		s.NotFound++
	default:
		s.Skipped++
	}
}
