package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить фоновые задачи (напоминания, копии, чистка абонементов)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			scheduler := app.NewScheduler(a.notificationSvc, a.subscriptionSvc, a.backupSvc, a.logger)
			scheduler.Start(ctx)

			a.logger.Info("Scheduler started, waiting for shutdown signal")
			<-ctx.Done()

			scheduler.Stop()
			a.logger.Info("Shutdown complete")
			return nil
		},
	}
}
