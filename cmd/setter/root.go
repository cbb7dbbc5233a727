package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/setter/internal/config"
	"github.com/aretw0/setter/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "setter",
	Short: "Setter qualifies coaching leads through a deterministic sales funnel",
	Long: `Setter decides, message by message, where a lead is in the coaching sales funnel.
Stages are chosen by phrase rules; an optional OpenAI key adds attribute extraction
and natural replies.

Configuration comes from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if f, _ := cmd.Flags().GetString("env-file"); f != "" {
			files = append(files, f)
		}

		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			cfg.Store, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger = logging.NewFromConfig(cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Load variables from this file instead of ./.env")
	rootCmd.PersistentFlags().String("store", config.StoreMemory, "Session store: memory or redis (overrides SETTER_STORE)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error (overrides SETTER_LOG_LEVEL)")
}
