package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crm-obras-2n/crm-obras-backend/internal/acciones"
	"github.com/crm-obras-2n/crm-obras-backend/internal/bootstrap"
	"github.com/crm-obras-2n/crm-obras-backend/internal/excel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/panel"
	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import projects from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			res, err := app.Importer.Import(ctx, f, actor, app.Projects.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "creados: %d, omitidos: %d, clientes nuevos: %d\n", res.Created, res.Skipped, res.ClientsCreated)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  fila %d: %s\n", e.Line, e.Error)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Export the important projects to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			items, err := app.Projects.All(ctx)
			if err != nil {
				return err
			}
			data, err := excel.ExportImportant(items)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exportado %s\n", args[0])
			return nil
		})
	},
}

var importantesCmd = &cobra.Command{
	Use:   "importantes",
	Short: "List the important projects with their potential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			items, err := app.Projects.All(ctx)
			if err != nil {
				return err
			}
			printImportant(cmd.OutOrStdout(), panel.Important(items))
			return nil
		})
	},
}

var accionesCmd = &cobra.Command{
	Use:   "acciones",
	Short: "Print overdue, today's and upcoming actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			_, b, err := app.Projects.Actions(ctx)
			if err != nil {
				return err
			}
			printBuckets(cmd.OutOrStdout(), b)
			return nil
		})
	},
}

func printBuckets(w io.Writer, b acciones.Buckets) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sec := range []struct {
		title string
		items []acciones.Action
	}{
		{"Atrasadas", b.Overdue},
		{"Hoy", b.Today},
		{"Próximos 7 días", b.Upcoming},
	} {
		fmt.Fprintf(tw, "%s (%d)\n", sec.title, len(sec.items))
		for _, a := range sec.items {
			d := a.Date
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				domain.FormatDate(&d), a.Type, a.Project, a.Client, domain.Display(a.Description))
		}
	}
	_ = tw.Flush()
}

func printImportant(w io.Writer, items []domain.Project) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	total := 0.0
	for _, p := range items {
		total += p.Potential
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s €\n",
			domain.NameOrDefault(p.Name), domain.Display(p.Promoter), p.Phase, p.Priority, domain.FormatEUR(p.Potential))
	}
	fmt.Fprintf(tw, "Total (%d)\t\t\t\t%s €\n", len(items), domain.FormatEUR(total))
	_ = tw.Flush()
}
