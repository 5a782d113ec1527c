package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"odoo-leads/internal/entities"
	apperrors "odoo-leads/pkg/errors"
)

const (
	syncRunTable  = "crm_sync_runs"
	syncRunFields = "id::text, kind, started_at, finished_at, dry_run, stats, error"
)

// staleRunError - отметка для запусков, оборванных без Finish.
const staleRunError = "interrupted: superseded by a newer run"

type SyncRunRepositoryInterface interface {
	Start(ctx context.Context, kind string, dryRun bool) (string, error)
	Finish(ctx context.Context, id string, stats map[string]int, runErr error) error
	Recent(ctx context.Context, limit uint64) ([]entities.SyncRun, error)
}

type syncRunRepository struct {
	storage TxBeginner
}

func NewSyncRunRepository(storage TxBeginner) SyncRunRepositoryInterface {
	return &syncRunRepository{storage: storage}
}

// Start закрывает незавершённые запуски того же вида и открывает новый.
func (r *syncRunRepository) Start(ctx context.Context, kind string, dryRun bool) (string, error) {
	id := uuid.New()
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		query, args, err := psql.Update(syncRunTable).
			Set("finished_at", sq.Expr("NOW()")).
			Set("error", staleRunError).
			Where(sq.Eq{"kind": kind, "finished_at": nil}).
			ToSql()
		if err != nil {
			return fmt.Errorf("ошибка сборки SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("не удалось закрыть прошлые запуски: %w", err)
		}

		query, args, err = psql.Insert(syncRunTable).
			Columns("id", "kind", "started_at", "dry_run", "stats").
			Values(id.String(), kind, sq.Expr("NOW()"), dryRun, "{}").
			ToSql()
		if err != nil {
			return fmt.Errorf("ошибка сборки SQL: %w", err)
		}
		_, err = tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (r *syncRunRepository) Finish(ctx context.Context, id string, stats map[string]int, runErr error) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: некорректный id запуска %q", apperrors.ErrBadRequest, id)
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	errText := null.String{}
	if runErr != nil {
		errText = null.StringFrom(runErr.Error())
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(syncRunTable).
		Set("finished_at", sq.Expr("NOW()")).
		Set("stats", string(raw)).
		Set("error", errText).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL: %w", err)
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("не удалось завершить запуск: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *syncRunRepository) Recent(ctx context.Context, limit uint64) ([]entities.SyncRun, error) {
	if limit == 0 {
		limit = 10
	}
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(syncRunFields).
		From(syncRunTable).
		OrderBy("started_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]entities.SyncRun, 0)
	for rows.Next() {
		var run entities.SyncRun
		var rawStats []byte
		if err := rows.Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.DryRun, &rawStats, &run.Error); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("ошибка сканирования %s: %w", syncRunTable, err)
		}
		if len(rawStats) > 0 {
			if err := json.Unmarshal(rawStats, &run.Stats); err != nil {
				return nil, fmt.Errorf("повреждённая статистика запуска %s: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
