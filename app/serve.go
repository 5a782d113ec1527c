package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"odoo-leads/internal/controllers"
	"odoo-leads/internal/routes"
	"odoo-leads/internal/services"
	apperrors "odoo-leads/pkg/errors"
	applogmw "odoo-leads/pkg/middleware"
	"odoo-leads/pkg/utils"
	"odoo-leads/pkg/validation"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP API счетов для вебхуков Stripe/n8n",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			dedup := controllers.NewRequestDeduplicator()
			go dedup.Cleanup(cmd.Context(), time.Minute)

			e := a.newEcho()
			partners := stack.partnerService(a.logger)
			routes.InitRouter(e, routes.Services{
				Invoices: services.NewInvoiceService(partners, stack.partners, stack.products, stack.invoices, a.logger),
				Health: services.NewHealthService(stack.client, stack.system, stack.products, stack.catalog,
					a.cfg.Odoo.URL, a.cfg.Sync.N8NURL, a.logger),
				Dedup: dedup,
			}, a.logger)

			return a.run(cmd.Context(), e)
		},
	}
}

func (a *app) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			a.logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "Internal server error", err))
			}
			return err
		},
	}))

	e.Use(applogmw.RequestLogger(a.logger.Named("http")))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	return e
}

// run запускает сервер и останавливает его по отмене контекста.
func (a *app) run(ctx context.Context, e *echo.Echo) error {
	addr := ":" + a.cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Сервер запущен", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("Остановка сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
