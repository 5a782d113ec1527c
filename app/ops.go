package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/services"
	"odoo-leads/pkg/config"
)

// errChecksFailed - хотя бы одна проверка health не прошла; сообщение уже выведено.
var errChecksFailed = errors.New("проверки не пройдены")

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Проверка Odoo, портала, Stripe, n8n и каталога товаров",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			health := services.NewHealthService(stack.client, stack.system, stack.products, stack.catalog,
				a.cfg.Odoo.URL, a.cfg.Sync.N8NURL, a.logger)
			results, passed := health.Run(cmd.Context())

			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
			}
			if !passed {
				fmt.Fprintln(out, "Есть непройденные проверки")
				return errChecksFailed
			}
			fmt.Fprintln(out, "Все проверки пройдены")
			return nil
		},
	}
}

func (a *app) invitePortalCmd() *cobra.Command {
	var in dto.InvitePortalDTO

	cmd := &cobra.Command{
		Use:   "invite-portal",
		Short: "Пригласить клиента в портал Odoo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			portal := services.NewPortalService(stack.partnerService(a.logger), stack.portal, stack.validator, a.logger)
			res, err := portal.Invite(cmd.Context(), in)
			if err != nil {
				return err
			}

			state := "найден"
			if res.Created {
				state = "создан"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Клиент %s (id %d) %s, приглашение отправлено\n", in.Email, res.PartnerID, state)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email клиента")
	cmd.Flags().StringVar(&in.Name, "name", "", "имя клиента")
	cmd.Flags().StringVar(&in.Company, "company", "", "компания клиента")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) productsCmd() *cobra.Command {
	products := &cobra.Command{
		Use:   "products",
		Short: "Товары-услуги каталога в Odoo",
	}

	run := func(create bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			svc := services.NewProductService(stack.products, stack.catalog, a.logger)
			var results []dto.ProductResultDTO
			if create {
				results, err = svc.Create(cmd.Context())
			} else {
				results, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range results {
				fmt.Fprintf(out, "%-22s %-40s $%9.2f  id=%d %s\n", p.Code, p.Name, p.Price, p.ID, p.Status)
			}
			fmt.Fprintf(out, "Всего: %d\n", len(results))
			return nil
		}
	}

	products.AddCommand(
		&cobra.Command{Use: "create", Short: "Создать недостающие товары каталога", Args: cobra.NoArgs, RunE: run(true)},
		&cobra.Command{Use: "list", Short: "Показать товары каталога, заведённые в Odoo", Args: cobra.NoArgs, RunE: run(false)},
	)
	return products
}

func (a *app) setupStripeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-stripe",
		Short: "Включить провайдера оплаты Stripe в Odoo (STRIPE_SECRET_KEY, STRIPE_PUBLISHABLE_KEY)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Require(a.cfg.Stripe, config.StripeHint); err != nil {
				return err
			}
			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			stripe := services.NewStripeService(stack.providers, stack.validator, a.logger)
			res, err := stripe.Setup(cmd.Context(), dto.StripeSetupDTO{
				SecretKey:      a.cfg.Stripe.SecretKey,
				PublishableKey: a.cfg.Stripe.PublishableKey,
				CompanyID:      a.cfg.Stripe.CompanyID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.AlreadyEnabled {
				fmt.Fprintf(out, "Провайдер Stripe уже включён (id %d)\n", res.ProviderID)
				return nil
			}
			fmt.Fprintf(out, "Провайдер Stripe включён (id %d)\n", res.ProviderID)
			return nil
		},
	}
}
