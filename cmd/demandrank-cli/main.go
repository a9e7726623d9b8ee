package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/demandrank/internal/config"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	cfg      *config.Config
)

// rootCmd is the base command for the demandrank CLI.
var rootCmd = &cobra.Command{
	Use:   "demandrank-cli",
	Short: "Rank products by holiday-week demand stability",
	Long: `demandrank-cli scores order spreadsheets locally, generates synthetic
order workbooks and submits workbooks to a running demandrank server.

Configuration is read the same way as the server (defaults, optional
config file, DEMANDRANK_* environment); flags take precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
			return err
		}
		return logger.SetLevelString(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
