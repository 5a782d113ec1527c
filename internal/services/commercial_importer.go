package services

import (
	"context"
	"fmt"
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

const (
	pipelineCommercial      = "commercial_import"
	commercialProgressEvery = 50
	descriptionHeadLen      = 500
)

type CommercialImporter struct {
	categories CategoryServiceInterface
	partners   PartnerServiceInterface
	leads      repositories.LeadRepositoryInterface
	validator  *validation.CustomValidator
	logger     *zap.Logger
	now        func() time.Time
}

func NewCommercialImporter(
	categories CategoryServiceInterface,
	partners PartnerServiceInterface,
	leads repositories.LeadRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) *CommercialImporter {
	return &CommercialImporter{
		categories: categories,
		partners:   partners,
		leads:      leads,
		validator:  validator,
		logger:     logger.Named("commercial_import"),
		now:        time.Now,
	}
}

func MapCommercialRow(row tabular.Row) dto.CommercialRowDTO {
	return dto.CommercialRowDTO{
		Line:            row.Line,
		City:            row.Get("City"),
		PermitNumber:    row.Get("Permit Number"),
		Address:         row.Get("Full Address"),
		Valuation:       utils.ParseValuation(row.Get("Valuation")),
		ProjectCategory: row.Get("Project Category"),
		ProjectType:     row.Get("Project Type"),
		UseType:         row.Get("Use Type"),
		SpecificUse:     row.Get("Specific Use"),
		Description:     row.Get("Project Description"),
		Owner:           row.Get("Property Owner"),
		Contractor:      row.Get("Contractor"),
		SquareFeet:      row.Get("Square Feet"),
		LeadScore:       row.Get("Lead Score"),
		Priority:        row.Get("Priority"),
		DataSource:      row.Get("Data Source"),
	}
}

// ValueTier: от 500k Premium, от 100k High Value, от 25k Medium Value, иначе Low Value; 0 - без тега.
func ValueTier(valuation float64) string {
	switch {
	case valuation >= 500_000:
		return "Premium"
	case valuation >= 100_000:
		return "High Value"
	case valuation >= 25_000:
		return "Medium Value"
	case valuation > 0:
		return "Low Value"
	}
	return ""
}

// ProjectCategory сопоставляет категорию проекта с тегом по подстроке.
func ProjectCategory(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "retail"):
		return "Retail"
	case strings.Contains(s, "office"):
		return "Office"
	case strings.Contains(s, "industrial"), strings.Contains(s, "warehouse"):
		return "Industrial"
	case strings.Contains(s, "restaurant"), strings.Contains(s, "food"):
		return "Restaurant"
	case strings.Contains(s, "medical"), strings.Contains(s, "health"):
		return "Medical"
	}
	return ""
}

// CommercialLeadName: "[permit] category - короткий адрес" или "Commercial Lead - <city>".
func CommercialLeadName(r dto.CommercialRowDTO) string {
	var name string
	if r.PermitNumber != "" {
		name = repositories.PermitTag(r.PermitNumber)
	}
	if r.ProjectCategory != "" {
		name += " " + r.ProjectCategory
	}
	if r.Address != "" {
		short, _, _ := strings.Cut(r.Address, ",")
		name += " - " + short
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "Commercial Lead - " + r.City
	}
	return name
}

func CommercialDescription(r dto.CommercialRowDTO, now time.Time) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("**%s:** %s", label, value))
		}
	}
	add("Priority", r.Priority)
	add("Lead Score", r.LeadScore)
	add("Project Type", r.ProjectType)
	add("Use Type", r.UseType)
	add("Specific Use", r.SpecificUse)
	add("Square Feet", r.SquareFeet)
	add("Property Owner", r.Owner)
	add("Contractor", r.Contractor)
	add("Address", r.Address)
	if r.Description != "" {
		parts = append(parts, "\n**Description:**\n"+utils.Head(r.Description, descriptionHeadLen)+"...")
	}
	parts = append(parts, "\n**Source:** "+r.DataSource)
	parts = append(parts, "**Imported:** "+now.Format("2006-01-02"))
	return strings.Join(parts, "\n")
}

// CommercialListName - компания-список города, например "Lead List - Dallas Commercial - Oct 2026".
func CommercialListName(city, label string) string {
	return fmt.Sprintf("Lead List - %s Commercial - %s", city, label)
}

// groupByCity фильтрует строки по городу и сохраняет порядок первого появления.
func groupByCity(rows []dto.CommercialRowDTO, only string, exclude []string) ([]string, map[string][]dto.CommercialRowDTO) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		excluded[c] = struct{}{}
	}
	var order []string
	groups := make(map[string][]dto.CommercialRowDTO)
	for _, r := range rows {
		if r.City == "" {
			continue
		}
		if only != "" && r.City != only {
			continue
		}
		if _, ok := excluded[r.City]; ok {
			continue
		}
		if _, seen := groups[r.City]; !seen {
			order = append(order, r.City)
		}
		groups[r.City] = append(groups[r.City], r)
	}
	return order, groups
}

func (s *CommercialImporter) Import(ctx context.Context, opts dto.CommercialOptions) (dto.CommercialStats, error) {
	stats := dto.CommercialStats{ByCity: []dto.CityStats{}}

	raw, err := tabular.Open(opts.Path)
	if err != nil {
		return stats, err
	}
	if err := tabular.RequireColumn(raw, "City"); err != nil {
		s.logger.Warn("Нет обязательной колонки, строки пропущены", zap.String("file", opts.Path), zap.Error(err))
		stats.Skipped = len(raw)
		metrics.PipelineRecords.WithLabelValues(pipelineCommercial, "skipped").Add(float64(len(raw)))
		return stats, nil
	}
	rows := make([]dto.CommercialRowDTO, 0, len(raw))
	for _, row := range raw {
		r := MapCommercialRow(row)
		if err := s.validator.Validate(r); err != nil {
			s.logger.Debug("Строка без города", zap.Int("line", r.Line), zap.Error(err))
			continue
		}
		rows = append(rows, r)
	}
	cities, groups := groupByCity(rows, opts.City, opts.ExcludeCities)

	label := opts.ListLabel
	if label == "" {
		label = s.now().Format("Jan 2006")
	}
	s.logger.Info("Импорт коммерческих лидов",
		zap.String("file", opts.Path),
		zap.String("city", opts.City),
		zap.Strings("exclude", opts.ExcludeCities),
		zap.Strings("cities", cities),
	)

	cats, err := s.categories.SetupCommercial(ctx)
	if err != nil {
		return stats, fmt.Errorf("не удалось подготовить теги: %w", err)
	}

	for _, city := range cities {
		cityRows := groups[city]
		s.logger.Info("Импорт города", zap.String("city", city), zap.Int("rows", len(cityRows)))

		if _, _, err := s.partners.EnsureListCompany(ctx, ListCompanySpec{
			Name:         CommercialListName(city, label),
			Comment:      fmt.Sprintf("%s commercial leads imported on %s", city, s.now().Format("2006-01-02 15:04")),
			RootCategory: cats.Root,
			Categories:   cats.ListLinks(),
		}); err != nil {
			return stats, fmt.Errorf("не удалось подготовить компанию-список для %s: %w", city, err)
		}

		cityStats := dto.CityStats{City: city}
		for i, r := range cityRows {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if _, err := s.leads.Create(ctx, s.leadValues(r)); err != nil {
				s.logger.Warn("Ошибка обработки строки", zap.String("city", city), zap.Int("line", r.Line), zap.Error(err))
				cityStats.Skipped++
				metrics.PipelineRecords.WithLabelValues(pipelineCommercial, "failed").Inc()
			} else {
				cityStats.Created++
				metrics.PipelineRecords.WithLabelValues(pipelineCommercial, "created").Inc()
			}
			if (i+1)%commercialProgressEvery == 0 {
				s.logger.Info("Прогресс", zap.String("city", city), zap.Int("processed", i+1), zap.Int("total", len(cityRows)))
			}
		}

		s.logger.Info("Город импортирован", zap.String("city", city), zap.Int("created", cityStats.Created), zap.Int("skipped", cityStats.Skipped))
		stats.LeadsCreated += cityStats.Created
		stats.Skipped += cityStats.Skipped
		stats.ByCity = append(stats.ByCity, cityStats)
	}

	s.logger.Info("Импорт завершён", zap.Int("leads_created", stats.LeadsCreated), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// leadValues - поля лида. Тег ценности и категория проекта только пишутся в лог:
// tag_ids лида ссылается на crm.tag, а не на res.partner.category.
func (s *CommercialImporter) leadValues(r dto.CommercialRowDTO) odoo.Values {
	s.logger.Debug("Строка",
		zap.Int("line", r.Line),
		zap.String("valuation", utils.FormatMoney(r.Valuation)),
		zap.String("value_tier", ValueTier(r.Valuation)),
		zap.String("project_category", ProjectCategory(r.ProjectCategory)),
	)
	return odoo.Values{
		"name":             CommercialLeadName(r),
		"type":             "lead",
		"partner_name":     utils.FirstNonEmpty(r.Owner, r.Contractor, r.City),
		"expected_revenue": r.Valuation,
		"description":      CommercialDescription(r, s.now()),
		"street":           r.Address,
	}
}
