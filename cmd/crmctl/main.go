// Command crmctl runs the CRM's batch operations (spreadsheet import and
// export, the actions report) against the configured backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crm-obras-2n/crm-obras-backend/config"
	"github.com/crm-obras-2n/crm-obras-backend/internal/bootstrap"
)

var (
	verbose bool
	actor   string
	logger  *zap.Logger
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "crmctl",
	Short:         "Batch tools for the construction projects CRM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.App.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = bootstrap.NewLogger(cfg.App.Environment, level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "crmctl", "uid recorded in the activity log")
	rootCmd.AddCommand(importCmd, exportCmd, importantesCmd, accionesCmd)
}

// withApp wires the backend for the duration of one command.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
