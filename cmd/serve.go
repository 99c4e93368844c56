package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/config"
	"github.com/greywatch/srev/internal/daemon"
)

var (
	flagServeAddr     string
	flagServeInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trend dashboard over HTTP",
	Long: "Run a foreground server that polls the trend ledger and serves the\n" +
		"dashboard at /, ledger rows at /v1/trend, and an SSE stream of new\n" +
		"sessions at /v1/stream.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "127.0.0.1:8788", "HTTP listen address")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 15*time.Second, "Ledger polling interval")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc := daemon.New(daemon.Config{
		Ledger:   openLedger(cfg),
		Project:  flagProject,
		Interval: flagServeInterval,
		Addr:     flagServeAddr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("  Serving trend dashboard on http://%s\n", flagServeAddr)
	return svc.Run(ctx)
}
