// Файл: app/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	catalogconfig "odoo-leads/config"
	"odoo-leads/internal/crm"
	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
	"odoo-leads/internal/services"
	"odoo-leads/pkg/config"
	applogger "odoo-leads/pkg/logger"
	"odoo-leads/pkg/metrics"
	"odoo-leads/pkg/validation"
)

const schemaCacheTTL = time.Hour

// app - общее состояние команд: конфиг, логгер и флаги переопределения.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	odooFlags   config.OdooOverrides
	pgFlags     config.PostgresOverrides
	metricsFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		var missing *config.MissingConfigError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, missing.Error())
		} else if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Ошибка:", err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "odoo-leads",
		Short:         "Импорт и синхронизация лидов Odoo CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.New()
			a.cfg.ApplyOdooOverrides(a.odooFlags)
			a.cfg.ApplyPostgresOverrides(a.pgFlags)
			a.logger = applogger.NewLogger(a.cfg.Log.Level, a.cfg.Log.File)
			return metrics.Register(nil)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer func() { _ = a.logger.Sync() }()
			if a.metricsFile == "" {
				return nil
			}
			if err := metrics.WriteTextfile(a.metricsFile); err != nil {
				return fmt.Errorf("не удалось записать метрики: %w", err)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.odooFlags.URL, "odoo-url", "", "URL Odoo (env ODOO_URL)")
	pf.StringVar(&a.odooFlags.DB, "odoo-db", "", "база Odoo (env ODOO_DB)")
	pf.StringVar(&a.odooFlags.Username, "odoo-user", "", "пользователь Odoo (env ODOO_USERNAME)")
	pf.StringVar(&a.odooFlags.APIKey, "odoo-api-key", "", "API-ключ Odoo (env ODOO_API_KEY)")
	pf.StringVar(&a.pgFlags.Host, "pg-host", "", "хост PostgreSQL (env POSTGRES_HOST)")
	pf.IntVar(&a.pgFlags.Port, "pg-port", 0, "порт PostgreSQL (env POSTGRES_PORT)")
	pf.StringVar(&a.pgFlags.Database, "pg-database", "", "база PostgreSQL (env POSTGRES_DB)")
	pf.StringVar(&a.pgFlags.User, "pg-user", "", "пользователь PostgreSQL (env POSTGRES_USER)")
	pf.StringVar(&a.pgFlags.Password, "pg-password", "", "пароль PostgreSQL (env POSTGRES_PASSWORD)")
	pf.StringVar(&a.metricsFile, "metrics-textfile", "", "файл для метрик в формате node_exporter textfile")

	root.AddCommand(
		a.importListCmd(),
		a.importCommercialCmd(),
		a.syncEnrichedCmd(),
		a.syncRunsCmd(),
		a.migrateCmd(),
		a.healthCmd(),
		a.invitePortalCmd(),
		a.productsCmd(),
		a.setupStripeCmd(),
		a.serveCmd(),
	)
	return root
}

// odooStack - клиент Odoo и репозитории поверх него.
type odooStack struct {
	client     *odoo.Client
	guard      *crm.SchemaGuard
	catalog    *catalogconfig.Catalog
	validator  *validation.CustomValidator
	partners   repositories.PartnerRepositoryInterface
	categories repositories.CategoryRepositoryInterface
	leads      repositories.LeadRepositoryInterface
	products   repositories.ProductRepositoryInterface
	invoices   repositories.InvoiceRepositoryInterface
	portal     repositories.PortalRepositoryInterface
	system     repositories.SystemRepositoryInterface
	providers  repositories.PaymentProviderRepositoryInterface
}

func (s *odooStack) Close() { s.client.Close() }

func (s *odooStack) partnerService(logger *zap.Logger) *services.PartnerService {
	return services.NewPartnerService(s.partners, logger)
}

func (s *odooStack) categoryService(logger *zap.Logger) *services.CategoryService {
	return services.NewCategoryService(s.categories, s.catalog, logger)
}

// connectOdoo проверяет конфиг и собирает клиента; сеть не трогает до первого вызова.
func (a *app) connectOdoo(ctx context.Context) (*odooStack, error) {
	if err := config.Require(a.cfg.Odoo, config.OdooHint); err != nil {
		return nil, err
	}
	return a.buildOdoo(ctx)
}

func (a *app) buildOdoo(ctx context.Context) (*odooStack, error) {
	catalog, err := catalogconfig.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки каталога: %w", err)
	}
	client, err := odoo.New(a.cfg.Odoo, a.logger)
	if err != nil {
		return nil, err
	}

	guard := crm.NewSchemaGuard(client, a.schemaCache(ctx), a.logger)
	return &odooStack{
		client:     client,
		guard:      guard,
		catalog:    catalog,
		validator:  validation.New(),
		partners:   repositories.NewPartnerRepository(client, guard),
		categories: repositories.NewCategoryRepository(client, guard),
		leads:      repositories.NewLeadRepository(client, guard),
		products:   repositories.NewProductRepository(client, guard),
		invoices:   repositories.NewInvoiceRepository(client, guard),
		portal:     repositories.NewPortalRepository(client, guard),
		system:     repositories.NewSystemRepository(client),
		providers:  repositories.NewPaymentProviderRepository(client, guard),
	}, nil
}

// schemaCache - Redis при заданном REDIS_ADDRESS, иначе кэш в памяти процесса.
func (a *app) schemaCache(ctx context.Context) repositories.CacheRepositoryInterface {
	if a.cfg.Redis.Address == "" {
		return repositories.NewMemoryCacheRepository(schemaCacheTTL)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		a.logger.Warn("Redis недоступен, используется кэш в памяти", zap.String("address", a.cfg.Redis.Address), zap.Error(err))
		_ = client.Close()
		return repositories.NewMemoryCacheRepository(schemaCacheTTL)
	}
	return repositories.NewRedisCacheRepository(client, "odoo-leads:")
}
