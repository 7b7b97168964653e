package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/mrsim/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	logLevel    string
	logFormat   string
	metricsAddr string
)

// main registers the commands and runs the root command under a context
// cancelled by SIGINT or SIGTERM. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mrsim",
		Short:         "inertial particles in unsteady flows (Maxey–Riley with history force)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel, logFormat); err != nil {
				return err
			}
			if metricsAddr != "" {
				go func() {
					if err := telemetry.Serve(cmd.Context(), metricsAddr); err != nil {
						logrus.WithError(err).Error("metrics server stopped")
					}
				}()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mrsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(
		runCommand(),
		ensembleCommand(),
		liveCommand(),
		listCommand(),
		deleteCommand(),
		plotCommand(),
		exportCommand(),
		analyzeCommand(),
		phaseCommand(),
		coefficientsCommand(),
		convergenceCommand(),
		generateFlowCommand(),
		flowInfoCommand(),
		presetsCommand(),
		scenarioCommand(),
		sweepCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	switch format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
