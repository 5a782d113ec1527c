package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/repositories"
	"odoo-leads/internal/services"
	"odoo-leads/pkg/config"
	"odoo-leads/pkg/database/postgresql"
	"odoo-leads/pkg/utils"
)

func (a *app) connectPostgres(cmd *cobra.Command) (*pgxpool.Pool, error) {
	if err := config.Require(a.cfg.Postgres, config.PostgresHint); err != nil {
		return nil, err
	}
	return postgresql.ConnectDB(cmd.Context(), a.cfg.Postgres.DSN(), a.logger)
}

func (a *app) syncEnrichedCmd() *cobra.Command {
	var (
		opts     dto.SyncOptions
		minScore int
	)

	cmd := &cobra.Command{
		Use:   "sync-enriched",
		Short: "Перенос обогащённых контактов из PostgreSQL в лиды Odoo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// обе конфигурации проверяются до любых удалённых вызовов
			if err := config.Require(a.cfg.Odoo, config.OdooHint); err != nil {
				return err
			}
			pool, err := a.connectPostgres(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			opts.MinScore = a.cfg.Sync.MinScore
			if minScore > 0 {
				opts.MinScore = minScore
			}

			sync := services.NewEnrichmentSync(
				repositories.NewEnrichmentRepository(pool, a.logger),
				stack.leads,
				stack.partners,
				repositories.NewSyncRunRepository(pool),
				stack.validator,
				a.logger,
			)
			stats, err := sync.Sync(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.DryRun {
				fmt.Fprintln(out, "Пробный запуск: изменения не записаны")
			}
			fmt.Fprintf(out, "  Создано:              %d\n", stats.Created)
			fmt.Fprintf(out, "  Обновлено:            %d\n", stats.Synced)
			fmt.Fprintf(out, "  Контактов обновлено:  %d\n", stats.ContactsUpdated)
			fmt.Fprintf(out, "  Не найдено в Odoo:    %d\n", stats.NotFound)
			fmt.Fprintf(out, "  Пропущено:            %d\n", stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.City, "city", "", "только лиды этого города")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "минимальный score (env SYNC_MIN_SCORE)")
	cmd.Flags().Uint64Var(&opts.Limit, "limit", 0, "ограничить число строк")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "ничего не записывать в Odoo")
	cmd.Flags().BoolVar(&opts.CreateNew, "create-new", false, "создавать лиды, которых нет в Odoo")
	return cmd
}

func (a *app) syncRunsCmd() *cobra.Command {
	var limit uint64

	cmd := &cobra.Command{
		Use:   "sync-runs",
		Short: "Последние запуски синхронизации",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := a.connectPostgres(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := repositories.NewSyncRunRepository(pool).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, run := range runs {
				status := "в процессе"
				if run.FinishedAt.Valid {
					status = "ok за " + utils.FormatDurationHuman(run.FinishedAt.Time.Sub(run.StartedAt))
				}
				if run.Error.Valid {
					status = "ошибка: " + run.Error.String
				}
				mode := ""
				if run.DryRun {
					mode = " (dry-run)"
				}
				fmt.Fprintf(out, "%s  %s%s  %s  %s  %s\n",
					run.StartedAt.Local().Format(time.DateTime), run.Kind, mode, run.ID, formatStats(run.Stats), status)
			}
			if len(runs) == 0 {
				a.logger.Info("Запусков синхронизации нет")
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&limit, "limit", 10, "сколько запусков показать")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции журнала синхронизаций",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Require(a.cfg.Postgres, config.PostgresHint); err != nil {
				return err
			}
			if err := postgresql.Migrate(cmd.Context(), a.cfg.Postgres.DSN(), a.logger); err != nil {
				a.logger.Error("Миграции не применены", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func formatStats(stats map[string]int) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, stats[k]))
	}
	return strings.Join(parts, " ")
}
