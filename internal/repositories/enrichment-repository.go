package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"odoo-leads/internal/entities"
)

const enrichedLeadFields = `pl.id, p.external_permit_id, p.city_name, p.address_line1, p.project_valuation,
	p.permit_type, p.owner_name, pl.contact_name, pl.contact_email, pl.contact_phone,
	pl.company_name, pl.contact_role, pl.score, pl.valuation_tier, pl.updated_at`

// EnrichmentFilter - условия выборки обогащённых лидов.
type EnrichmentFilter struct {
	City     string
	MinScore int
	Limit    uint64
}

type EnrichmentRepositoryInterface interface {
	FindEnriched(ctx context.Context, filter EnrichmentFilter) ([]entities.EnrichedLead, error)
}

type enrichmentRepository struct {
	storage Querier
	logger  *zap.Logger
}

func NewEnrichmentRepository(storage Querier, logger *zap.Logger) EnrichmentRepositoryInterface {
	return &enrichmentRepository{storage: storage, logger: logger}
}

// enrichedLeadsQuery - коммерческие лиды со скором не ниже порога и хотя бы одним контактом.
func enrichedLeadsQuery(filter EnrichmentFilter) (string, []interface{}, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	q := psql.Select(enrichedLeadFields).
		From("permit_leads pl").
		Join("permits p ON pl.permit_id = p.id").
		Where(sq.Eq{"pl.is_commercial": true}).
		Where(sq.GtOrEq{"pl.score": filter.MinScore}).
		Where(sq.Or{
			sq.And{sq.NotEq{"pl.contact_email": nil}, sq.NotEq{"pl.contact_email": ""}},
			sq.And{sq.NotEq{"pl.contact_phone": nil}, sq.NotEq{"pl.contact_phone": ""}},
		})
	if filter.City != "" {
		q = q.Where(sq.Expr("UPPER(p.city_name) = UPPER(?)", filter.City))
	}
	q = q.OrderBy("pl.updated_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return q.ToSql()
}

func (r *enrichmentRepository) FindEnriched(ctx context.Context, filter EnrichmentFilter) ([]entities.EnrichedLead, error) {
	query, args, err := enrichedLeadsQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindEnriched: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки обогащённых лидов: %w", err)
	}
	defer rows.Close()

	leads := make([]entities.EnrichedLead, 0)
	for rows.Next() {
		lead, err := scanEnrichedLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("Найдены обогащённые лиды", zap.Int("count", len(leads)), zap.String("city", filter.City))
	return leads, nil
}

func scanEnrichedLead(row pgx.Row) (entities.EnrichedLead, error) {
	var l entities.EnrichedLead
	err := row.Scan(
		&l.LeadID, &l.PermitNumber, &l.CityName, &l.AddressLine1, &l.ProjectValuation,
		&l.PermitType, &l.OwnerName, &l.ContactName, &l.ContactEmail, &l.ContactPhone,
		&l.CompanyName, &l.ContactRole, &l.Score, &l.ValuationTier, &l.UpdatedAt,
	)
	if err != nil {
		return l, fmt.Errorf("ошибка сканирования permit_leads: %w", err)
	}
	return l, nil
}
