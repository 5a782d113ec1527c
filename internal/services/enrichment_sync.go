package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/entities"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/metrics"
	"odoo-leads/pkg/utils"
	"odoo-leads/pkg/validation"
)

const (
	pipelineSync      = "enrichment_sync"
	syncRunKind       = "enrichment_sync"
	syncProgressEvery = 25
	enrichedMarker    = "--- Enriched "
)

type EnrichmentSync struct {
	source    repositories.EnrichmentRepositoryInterface
	leads     repositories.LeadRepositoryInterface
	partners  repositories.PartnerRepositoryInterface
	ledger    repositories.SyncRunRepositoryInterface
	validator *validation.CustomValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrichmentSync: ledger может быть nil, тогда запуски не журналируются.
func NewEnrichmentSync(
	source repositories.EnrichmentRepositoryInterface,
	leads repositories.LeadRepositoryInterface,
	partners repositories.PartnerRepositoryInterface,
	ledger repositories.SyncRunRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) *EnrichmentSync {
	return &EnrichmentSync{
		source:    source,
		leads:     leads,
		partners:  partners,
		ledger:    ledger,
		validator: validator,
		logger:    logger.Named("sync"),
		now:       time.Now,
	}
}

func (s *EnrichmentSync) Sync(ctx context.Context, opts dto.SyncOptions) (stats dto.SyncStats, err error) {
	s.logger.Info("Синхронизация обогащённых лидов",
		zap.String("city", opts.City),
		zap.Int("min_score", opts.MinScore),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("create_new", opts.CreateNew),
	)

	started := s.now()
	runID := s.startRun(ctx, opts.DryRun)
	defer func() { s.finishRun(ctx, runID, stats, err) }()

	rows, err := s.source.FindEnriched(ctx, repositories.EnrichmentFilter{
		City:     opts.City,
		MinScore: opts.MinScore,
		Limit:    opts.Limit,
	})
	if err != nil {
		return stats, err
	}
	if len(rows) == 0 {
		s.logger.Info("Нет обогащённых лидов для синхронизации")
		return stats, nil
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		outcome, err := s.syncOne(ctx, row, opts)
		if err != nil {
			// Ошибка транспорта прерывает запуск, ошибка записи - только строку
			if !odoo.IsFault(err) && !errors.Is(err, apperrors.ErrEmptyValues) {
				return stats, err
			}
			s.logger.Warn("Ошибка синхронизации лида", zap.String("permit", row.PermitNumber.String), zap.Error(err))
			outcome = "skipped"
		}
		stats.Count(outcome)
		metrics.PipelineRecords.WithLabelValues(pipelineSync, outcome).Inc()

		if (i+1)%syncProgressEvery == 0 {
			s.logger.Info("Прогресс", zap.Int("processed", i+1), zap.Int("total", len(rows)))
		}
	}

	s.logger.Info("Синхронизация завершена",
		zap.Int("created", stats.Created),
		zap.Int("synced", stats.Synced),
		zap.Int("contacts_updated", stats.ContactsUpdated),
		zap.Int("not_found", stats.NotFound),
		zap.Int("skipped", stats.Skipped),
		zap.String("duration", utils.FormatDurationHuman(s.now().Sub(started))),
	)
	return stats, nil
}

// syncOne возвращает исход строки: created, synced, synced+contact, not_found, skipped.
func (s *EnrichmentSync) syncOne(ctx context.Context, row entities.EnrichedLead, opts dto.SyncOptions) (string, error) {
	if err := s.validator.Validate(row); err != nil {
		s.logger.Debug("Строка без номера разрешения", zap.Int64("lead_id", row.LeadID), zap.Error(err))
		return "skipped", nil
	}
	permit := strings.TrimSpace(utils.NullStringValue(row.PermitNumber))
	email := utils.NullStringValue(row.ContactEmail)

	lead, err := s.leads.FindByPermit(ctx, permit)
	if errors.Is(err, apperrors.ErrNotFound) {
		if !opts.CreateNew {
			return "not_found", nil
		}
		if email == "" || email == "None" {
			return "skipped", nil
		}
		if opts.DryRun {
			s.logger.Info("[DRY RUN] Будет создан лид", zap.String("permit", permit), zap.String("email", email))
			return "created", nil
		}
		if _, err := s.leads.Create(ctx, NewLeadValues(row, s.now())); err != nil {
			return "", fmt.Errorf("не удалось создать лид %s: %w", permit, err)
		}
		return "created", nil
	}
	if err != nil {
		return "", err
	}

	if lead.EmailFrom != "" && lead.EmailFrom == email {
		return "skipped", nil
	}
	if opts.DryRun {
		s.logger.Info("[DRY RUN] Будет обновлён лид", zap.String("permit", permit), zap.Int64("lead_id", lead.ID), zap.String("email", email))
		return "synced", nil
	}

	updated, err := s.updateLead(ctx, lead.ID, row)
	if err != nil {
		return "", err
	}
	if !updated {
		return "skipped", nil
	}
	if email == "" {
		return "synced", nil
	}

	contactUpdated, err := s.updateContact(ctx, email, row)
	if err != nil {
		s.logger.Warn("Не удалось обновить контакт", zap.String("email", email), zap.Error(err))
		return "synced", nil
	}
	if contactUpdated {
		return "synced+contact", nil
	}
	return "synced", nil
}

// EnrichmentNote - заметка об обогащении; пустая строка, если добавлять нечего.
func EnrichmentNote(row entities.EnrichedLead, now time.Time) string {
	var lines []string
	if v := utils.NullStringValue(row.ContactName); v != "" {
		lines = append(lines, "Contact: "+v)
	}
	if v := utils.NullStringValue(row.ContactRole); v != "" {
		lines = append(lines, "Role: "+v)
	}
	if v := utils.NullStringValue(row.CompanyName); v != "" {
		lines = append(lines, "Company: "+v)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + enrichedMarker + now.Format("2006-01-02 15:04") + " ---\n" + strings.Join(lines, "\n") + "\n"
}

// EnrichedToday - в описании уже есть заметка за этот день.
func EnrichedToday(description string, now time.Time) bool {
	return strings.Contains(description, enrichedMarker+now.Format("2006-01-02"))
}

func (s *EnrichmentSync) updateLead(ctx context.Context, leadID int64, row entities.EnrichedLead) (bool, error) {
	values := odoo.Values{}
	if v := utils.NullStringValue(row.ContactEmail); v != "" {
		values["email_from"] = v
	}
	if v := utils.NullStringValue(row.ContactPhone); v != "" {
		values["phone"] = utils.FormatUSPhone(v)
	}
	if v := utils.NullStringValue(row.ContactName); v != "" {
		values["contact_name"] = v
	}
	if v := utils.NullStringValue(row.CompanyName); v != "" {
		values["partner_name"] = v
	}

	now := s.now()
	if note := EnrichmentNote(row, now); note != "" {
		current, err := s.leads.Description(ctx, leadID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return false, err
		}
		if !EnrichedToday(current, now) {
			values["description"] = current + note
		}
	}

	if len(values) == 0 {
		return false, nil
	}
	if err := s.leads.Update(ctx, leadID, values); err != nil {
		if errors.Is(err, apperrors.ErrEmptyValues) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// updateContact обновляет телефон контакта и привязывает его к существующей компании.
func (s *EnrichmentSync) updateContact(ctx context.Context, email string, row entities.EnrichedLead) (bool, error) {
	contact, err := s.partners.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	values := odoo.Values{}
	if v := utils.NullStringValue(row.ContactPhone); v != "" {
		values["phone"] = utils.FormatUSPhone(v)
	}
	if v := utils.NullStringValue(row.CompanyName); v != "" {
		company, err := s.partners.FindCompany(ctx, v)
		switch {
		case err == nil:
			values["parent_id"] = company.ID
		case !errors.Is(err, apperrors.ErrNotFound):
			return false, err
		}
	}
	if len(values) == 0 {
		return false, nil
	}
	if err := s.partners.Update(ctx, contact.ID, values); err != nil {
		if errors.Is(err, apperrors.ErrEmptyValues) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewLeadValues - лид для разрешения, которого ещё нет в CRM.
func NewLeadValues(row entities.EnrichedLead, now time.Time) odoo.Values {
	permit := strings.TrimSpace(utils.NullStringValue(row.PermitNumber))
	company := utils.NullStringValue(row.CompanyName)
	contact := utils.NullStringValue(row.ContactName)
	city := utils.FirstNonEmpty(utils.NullStringValue(row.CityName), "Unknown")

	name := repositories.PermitTag(permit)
	if company != "" {
		name += " " + company
	}
	if contact != "" {
		name += " - " + contact
	}

	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("**%s:** %s", label, value))
		}
	}
	add("Permit Type", utils.NullStringValue(row.PermitType))
	add("Property Owner", utils.NullStringValue(row.OwnerName))
	add("Contact Role", utils.NullStringValue(row.ContactRole))
	if score := utils.NullIntValue(row.Score); score != 0 {
		add("Lead Score", strconv.Itoa(score))
	}
	add("Value Tier", utils.NullStringValue(row.ValuationTier))
	parts = append(parts,
		"\n**Source:** PostgreSQL Enrichment Sync",
		"**City:** "+city,
		"**Synced:** "+now.Format("2006-01-02"),
	)

	values := odoo.Values{
		"name":             name,
		"type":             "lead",
		"partner_name":     utils.FirstNonEmpty(company, contact, city),
		"expected_revenue": utils.NullFloatValue(row.ProjectValuation),
		"description":      strings.Join(parts, "\n"),
	}
	if contact != "" {
		values["contact_name"] = contact
	}
	if v := utils.NullStringValue(row.ContactEmail); v != "" {
		values["email_from"] = v
	}
	if v := utils.NullStringValue(row.ContactPhone); v != "" {
		values["phone"] = utils.FormatUSPhone(v)
	}
	if v := utils.NullStringValue(row.AddressLine1); v != "" {
		values["street"] = v
	}
	return values
}

func (s *EnrichmentSync) startRun(ctx context.Context, dryRun bool) string {
	if s.ledger == nil || dryRun {
		return ""
	}
	id, err := s.ledger.Start(ctx, syncRunKind, dryRun)
	if err != nil {
		s.logger.Warn("Не удалось записать запуск в журнал", zap.Error(err))
		return ""
	}
	return id
}

func (s *EnrichmentSync) finishRun(ctx context.Context, id string, stats dto.SyncStats, runErr error) {
	if id == "" {
		return
	}
	// запуск, прерванный отменой контекста, всё равно закрываем
	ctx = context.WithoutCancel(ctx)
	if err := s.ledger.Finish(ctx, id, stats.AsMap(), runErr); err != nil {
		s.logger.Warn("Не удалось завершить запуск в журнале", zap.String("run_id", id), zap.Error(err))
	}
}
