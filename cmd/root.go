package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flightrecovery/app"
	"github.com/kilianp07/flightrecovery/config"
	"github.com/kilianp07/flightrecovery/core/monitoring"
	"github.com/kilianp07/flightrecovery/infra/logger"
	inframon "github.com/kilianp07/flightrecovery/infra/monitoring"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "flightrecovery",
	Short:             "Two-stage stochastic airline schedule recovery",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mon, err := inframon.NewSentryMonitor(c.Sentry)
	if err != nil {
		logger.New("main").Warnf("monitoring disabled: %v", err)
	} else {
		monitoring.Init(mon)
	}
	cfg = c
	return nil
}

// withService runs fn with a service bound to a signal-aware context.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	defer func() { monitoring.Recover(recover()) }()
	return fn(ctx, svc)
}
