package main

import (
	"fmt"
	"os"

	"fraudlens/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fraudlens",
	Short: "fraudlens - agentic fraud alert investigation",
	Long: `fraudlens investigates fraud alerts against a customer's transaction
history. A registry of transaction checks feeds analysis agents that either
consult a language model or fall back to deterministic synthesis, producing a
verdict and a recommended action for every alert.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	// Optional .env for API keys. Missing files are fine.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
