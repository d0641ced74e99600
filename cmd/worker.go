package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/meal-scan/internal/core/events"
	"github.com/frahmantamala/meal-scan/internal/rollover"
	"github.com/frahmantamala/meal-scan/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server.`,
}

var rolloverWorkerCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Start the daily rollover notifier",
	Long:  `Start the notifier that announces each new business day at the rollover hour`,
	Run: func(cmd *cobra.Command, args []string) {
		startRolloverWorker()
	},
}

var checkInterval time.Duration

func startRolloverWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	logger := logger.LoggerWrapper()

	interval := getDurationFlag(checkInterval, config.Business.RolloverCheckInterval)
	clock := newClock(config.Business, logger)

	eventBus := events.NewEventBus(logger)
	events.RegisterAuditLog(eventBus, logger)

	notifier := rollover.NewNotifier(clock, eventBus, interval, logger)

	logger.Info("starting rollover worker",
		"timezone", clock.Location().String(),
		"rollover_hour", clock.RolloverHour(),
		"interval", interval.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("rollover worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	logger.Info("received signal, shutting down rollover worker", "signal", sig)

	notifier.Stop()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := eventBus.Drain(drainCtx); err != nil {
		logger.Warn("shutdown timeout reached, forcing exit")
	}
	logger.Info("rollover worker shutdown complete")
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	rolloverWorkerCmd.Flags().DurationVar(&checkInterval, "interval", 0, "How often to check for the rollover (overrides config)")

	workerCmd.AddCommand(rolloverWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
