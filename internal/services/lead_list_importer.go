package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	"odoo-leads/pkg/metrics"
	"odoo-leads/pkg/tabular"
	"odoo-leads/pkg/utils"
	"odoo-leads/pkg/validation"
)

// contactNameColumns - псевдонимы обязательной колонки имени контакта.
var contactNameColumns = []string{"contact_name", "Contact Name"}

const (
	pipelineListImport = "list_import"
	listProgressEvery  = 25
)

// tierCategories - уровень из выгрузки -> тег ценности.
var tierCategories = map[string]string{
	"PREMIUM": "Premium",
	"HIGH":    "High Value",
	"MEDIUM":  "Medium Value",
	"LOW":     "Low Value",
}

type LeadListImporter struct {
	categories CategoryServiceInterface
	partners   PartnerServiceInterface
	leads      repositories.LeadRepositoryInterface
	validator  *validation.CustomValidator
	logger     *zap.Logger
	now        func() time.Time
}

func NewLeadListImporter(
	categories CategoryServiceInterface,
	partners PartnerServiceInterface,
	leads repositories.LeadRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) *LeadListImporter {
	return &LeadListImporter{
		categories: categories,
		partners:   partners,
		leads:      leads,
		validator:  validator,
		logger:     logger.Named("list_import"),
		now:        time.Now,
	}
}

// DefaultListName - "Lead List - <имя файла без расширения>".
func DefaultListName(path string) string {
	base := filepath.Base(path)
	return "Lead List - " + strings.TrimSuffix(base, filepath.Ext(base))
}

// MapLeadListRow сопоставляет колонки выгрузки (snake_case или заголовки отчёта) с полями строки.
func MapLeadListRow(row tabular.Row) dto.LeadListRowDTO {
	tierColumns := []string{"valuation_tier", "Value Tier"}
	tier := "UNKNOWN"
	if row.Has(tierColumns...) {
		tier = strings.ToUpper(row.Get(tierColumns...))
	}
	return dto.LeadListRowDTO{
		Line:          row.Line,
		ContactName:   row.Get(contactNameColumns...),
		ContactEmail:  row.Get("contact_email", "Email"),
		ContactPhone:  row.Get("contact_phone", "Phone"),
		CompanyName:   row.Get("company_name", "Contact Company"),
		OwnerName:     row.Get("owner_name", "Owner"),
		Valuation:     utils.ParseMoney(row.Get("project_valuation", "Valuation")),
		ValuationTier: tier,
		Score:         row.Get("score", "Score"),
		PermitNumber:  row.Get("permit_number", "Permit #"),
		PermitType:    row.Get("permit_type", "Type"),
		ContactRole:   row.Get("contact_role", "Contact Role"),
	}
}

// LeadListName: "[permit] company - contact", части без значений опускаются.
func LeadListName(r dto.LeadListRowDTO) string {
	name := r.ContactName
	if r.CompanyName != "" {
		name = r.CompanyName + " - " + r.ContactName
	}
	if r.PermitNumber != "" {
		name = repositories.PermitTag(r.PermitNumber) + " " + name
	}
	return name
}

func LeadListDescription(r dto.LeadListRowDTO, listName string, now time.Time) string {
	var parts []string
	if r.PermitType != "" {
		parts = append(parts, "**Permit Type:** "+r.PermitType)
	}
	if r.OwnerName != "" {
		parts = append(parts, "**Property Owner:** "+r.OwnerName)
	}
	if r.ContactRole != "" {
		parts = append(parts, "**Contact Role:** "+utils.TitleCase(r.ContactRole))
	}
	if r.ValuationTier != "" {
		parts = append(parts, "**Value Tier:** "+r.ValuationTier)
	}
	if r.Score != "" {
		parts = append(parts, "**Lead Score:** "+r.Score)
	}
	parts = append(parts, "\n**Source:** "+listName)
	parts = append(parts, "**Imported:** "+now.Format("2006-01-02"))
	return strings.Join(parts, "\n")
}

// ContactComment - заметка к контакту с данными разрешения.
func ContactComment(r dto.LeadListRowDTO) string {
	var lines []string
	if r.PermitNumber != "" {
		lines = append(lines, "Permit: "+r.PermitNumber)
	}
	if r.PermitType != "" {
		lines = append(lines, "Type: "+r.PermitType)
	}
	if r.ContactRole != "" {
		lines = append(lines, "Role: "+r.ContactRole)
	}
	if r.OwnerName != "" {
		lines = append(lines, "Property Owner: "+r.OwnerName)
	}
	if r.Score != "" {
		lines = append(lines, "Lead Score: "+r.Score)
	}
	return strings.Join(lines, "\n")
}

// rowCategories - корень, отрасль и тег ценности строки.
func rowCategories(cats *ListCategories, tier string) []int64 {
	ids := []int64{cats.Root}
	if cats.Industry > 0 {
		ids = append(ids, cats.Industry)
	}
	if name, ok := tierCategories[tier]; ok {
		if id, ok := cats.Tiers[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *LeadListImporter) Import(ctx context.Context, opts dto.LeadListOptions) (dto.LeadListStats, error) {
	var stats dto.LeadListStats

	rows, err := tabular.Open(opts.Path)
	if err != nil {
		return stats, err
	}
	if err := tabular.RequireColumn(rows, contactNameColumns...); err != nil {
		// каждая строка будет пропущена валидацией
		s.logger.Warn("Нет обязательной колонки, строки будут пропущены", zap.String("file", opts.Path), zap.Error(err))
	}
	listName := opts.ListName
	if listName == "" {
		listName = DefaultListName(opts.Path)
	}

	s.logger.Info("Импорт списка лидов",
		zap.String("file", opts.Path),
		zap.String("list", listName),
		zap.String("industry", utils.FirstNonEmpty(opts.Industry, "General")),
		zap.Int("rows", len(rows)),
		zap.Bool("dry_run", opts.DryRun),
	)

	if opts.DryRun {
		return s.dryRun(rows, listName), nil
	}

	cats, err := s.categories.SetupLeadList(ctx, opts.Industry)
	if err != nil {
		return stats, fmt.Errorf("не удалось подготовить теги: %w", err)
	}
	if _, _, err := s.partners.EnsureListCompany(ctx, ListCompanySpec{
		Name:            listName,
		Comment:         "Lead list imported on " + s.now().Format("2006-01-02 15:04"),
		RootCategory:    cats.Root,
		Categories:      cats.ListLinks(),
		RefreshExisting: true,
	}); err != nil {
		return stats, fmt.Errorf("не удалось подготовить компанию-список: %w", err)
	}

	companies := make(map[int64]struct{})
	contacts := make(map[int64]struct{})

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r := MapLeadListRow(row)
		if err := s.validator.Validate(r); err != nil {
			s.logger.Debug("Строка пропущена", zap.Int("line", r.Line), zap.Error(err))
			stats.Skipped++
			metrics.PipelineRecords.WithLabelValues(pipelineListImport, "skipped").Inc()
			continue
		}

		companyID, contactID, err := s.importRow(ctx, r, cats, listName)
		if err != nil {
			s.logger.Warn("Ошибка обработки строки", zap.Int("line", r.Line), zap.Error(err))
			stats.Skipped++
			metrics.PipelineRecords.WithLabelValues(pipelineListImport, "failed").Inc()
			continue
		}
		if companyID > 0 {
			companies[companyID] = struct{}{}
		}
		if contactID > 0 {
			contacts[contactID] = struct{}{}
		}
		stats.LeadsCreated++
		metrics.PipelineRecords.WithLabelValues(pipelineListImport, "created").Inc()

		if (i+1)%listProgressEvery == 0 {
			s.logger.Info("Прогресс", zap.Int("processed", i+1), zap.Int("total", len(rows)))
		}
	}

	stats.Companies = len(companies)
	stats.Contacts = len(contacts)
	s.logger.Info("Импорт завершён",
		zap.Int("companies", stats.Companies),
		zap.Int("contacts", stats.Contacts),
		zap.Int("leads_created", stats.LeadsCreated),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (s *LeadListImporter) importRow(ctx context.Context, r dto.LeadListRowDTO, cats *ListCategories, listName string) (int64, int64, error) {
	categoryIDs := rowCategories(cats, r.ValuationTier)

	companyID, err := s.partners.GetOrCreateCompany(ctx, r.CompanyName, categoryIDs)
	if err != nil {
		return 0, 0, err
	}

	contactID, err := s.partners.GetOrCreateContact(ctx, ContactInput{
		Name:        r.ContactName,
		Email:       r.ContactEmail,
		Phone:       r.ContactPhone,
		CompanyID:   companyID,
		CategoryIDs: categoryIDs,
		Comment:     ContactComment(r),
	})
	if err != nil {
		return companyID, 0, err
	}

	values := odoo.Values{
		"name":             LeadListName(r),
		"type":             "lead",
		"partner_name":     utils.FirstNonEmpty(r.CompanyName, r.ContactName),
		"expected_revenue": r.Valuation,
		"description":      LeadListDescription(r, listName, s.now()),
	}
	if r.ContactEmail != "" {
		values["email_from"] = r.ContactEmail
	}
	if r.ContactPhone != "" {
		values["phone"] = r.ContactPhone
	}
	if contactID > 0 {
		values["partner_id"] = contactID
	}
	if _, err := s.leads.Create(ctx, values); err != nil {
		return companyID, contactID, fmt.Errorf("не удалось создать лид: %w", err)
	}
	return companyID, contactID, nil
}

// dryRun считает, что было бы создано, без обращений к Odoo.
func (s *LeadListImporter) dryRun(rows []tabular.Row, listName string) dto.LeadListStats {
	var stats dto.LeadListStats
	companies := make(map[string]struct{})
	contacts := make(map[string]struct{})

	for _, row := range rows {
		r := MapLeadListRow(row)
		if err := s.validator.Validate(r); err != nil {
			s.logger.Debug("[DRY RUN] Строка пропущена", zap.Int("line", r.Line), zap.Error(err))
			stats.Skipped++
			continue
		}
		if r.CompanyName != "" {
			companies[r.CompanyName] = struct{}{}
		}
		contacts[utils.FirstNonEmpty(r.ContactEmail, r.ContactName)] = struct{}{}
		stats.LeadsCreated++
		s.logger.Info("[DRY RUN] Лид",
			zap.Int("line", r.Line),
			zap.String("name", LeadListName(r)),
			zap.String("valuation", utils.FormatMoney(r.Valuation)),
			zap.String("list", listName),
		)
	}
	stats.Companies = len(companies)
	stats.Contacts = len(contacts)
	return stats
}
