package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"odoo-leads/internal/dto"
	"odoo-leads/internal/services"
)

func (a *app) importListCmd() *cobra.Command {
	var opts dto.LeadListOptions

	cmd := &cobra.Command{
		Use:   "import-list <file>",
		Short: "Импорт списка лидов (CSV/XLSX) в Odoo CRM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			if opts.ListName == "" {
				opts.ListName = services.DefaultListName(opts.Path)
			}

			// в dry-run удалённых вызовов нет, поэтому конфиг Odoo не обязателен
			connect := a.connectOdoo
			if opts.DryRun {
				connect = a.buildOdoo
			}
			stack, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			importer := services.NewLeadListImporter(
				stack.categoryService(a.logger),
				stack.partnerService(a.logger),
				stack.leads,
				stack.validator,
				a.logger,
			)
			stats, err := importer.Import(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Список: %s\n", opts.ListName)
			fmt.Fprintf(out, "  Компании:     %d\n", stats.Companies)
			fmt.Fprintf(out, "  Контакты:     %d\n", stats.Contacts)
			fmt.Fprintf(out, "  Лиды созданы: %d\n", stats.LeadsCreated)
			fmt.Fprintf(out, "  Пропущено:    %d\n", stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ListName, "list-name", "", `имя списка (по умолчанию "Lead List - <имя файла>")`)
	cmd.Flags().StringVar(&opts.Industry, "industry", "", "отраслевой тег (например Roofing)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "только разобрать файл, ничего не записывать")
	return cmd
}

func (a *app) importCommercialCmd() *cobra.Command {
	var opts dto.CommercialOptions

	cmd := &cobra.Command{
		Use:   "import-commercial <file>",
		Short: "Импорт коммерческих лидов по городам",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]

			stack, err := a.connectOdoo(cmd.Context())
			if err != nil {
				return err
			}
			defer stack.Close()

			importer := services.NewCommercialImporter(
				stack.categoryService(a.logger),
				stack.partnerService(a.logger),
				stack.leads,
				stack.validator,
				a.logger,
			)
			stats, err := importer.Import(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range stats.ByCity {
				fmt.Fprintf(out, "  %-20s создано: %d, пропущено: %d\n", c.City, c.Created, c.Skipped)
			}
			fmt.Fprintf(out, "Итого создано: %d, пропущено: %d\n", stats.LeadsCreated, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.City, "city", "", "импортировать только этот город")
	cmd.Flags().StringArrayVar(&opts.ExcludeCities, "exclude-city", nil, "исключить город (можно повторять)")
	cmd.Flags().StringVar(&opts.ListLabel, "list-label", "", `метка списка (по умолчанию "Mon YYYY" даты запуска)`)
	return cmd
}
