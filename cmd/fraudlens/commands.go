package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraudlens/internal/checks/transaction"
	"fraudlens/internal/config"
	"fraudlens/internal/datagen"
	"fraudlens/internal/llm"
	"fraudlens/internal/pipeline"
	"fraudlens/internal/server"
	"fraudlens/internal/store"
	"fraudlens/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	alertFile       string
	demoCustomer    string
	genCustomers    int
	genPerCustomer  int
	genVelocity     bool
	genSeed         int64
	genOut          string
	genImport       bool
	configInitForce bool
)

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Investigate a fraud alert",
	Long: `Investigate runs the full analysis pipeline for one alert and prints
the investigation report as JSON.

The alert comes from --alert-file, or with --demo-customer a synthetic
anomalous alert is generated for that customer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		alert, err := loadAlert()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := store.Open(cfg.Store.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := llm.New(ctx, cfg)
		if err != nil {
			return err
		}
		logger.Info("model provider selected", zap.String("provider", client.Name()))

		report, err := pipeline.New(cfg, st, client, logger).Investigate(ctx, alert)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func loadAlert() (types.Alert, error) {
	if alertFile != "" {
		raw, err := os.ReadFile(alertFile)
		if err != nil {
			return types.Alert{}, fmt.Errorf("read alert file: %w", err)
		}
		var alert types.Alert
		if err := json.Unmarshal(raw, &alert); err != nil {
			return types.Alert{}, fmt.Errorf("parse alert file: %w", err)
		}
		return alert, nil
	}
	if demoCustomer != "" {
		return datagen.New(time.Now().UnixNano()).AnomalousAlert(demoCustomer, time.Now().UTC()), nil
	}
	return types.Alert{}, fmt.Errorf("either --alert-file or --demo-customer is required")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate sample transaction data",
	Long: `Generate produces sample transaction data, written as CSV to --out
and optionally imported into the store with --import. With --velocity the
transactions come in rapid bursts for exercising velocity rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := datagen.New(genSeed)
		base := time.Now().UTC()

		var txs []types.Transaction
		if genVelocity {
			txs = gen.GenerateVelocityBurst(genCustomers, genPerCustomer, base)
		} else {
			txs = gen.Generate(genCustomers, genPerCustomer, base)
		}

		if genOut != "" {
			f, err := os.Create(genOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", genOut, err)
			}
			defer f.Close()
			if err := store.WriteTransactionsCSV(f, txs); err != nil {
				return err
			}
			logger.Info("wrote transactions", zap.String("path", genOut), zap.Int("count", len(txs)))
		}

		if genImport {
			st, err := store.Open(cfg.Store.DatabasePath, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.InsertTransactions(cmd.Context(), txs); err != nil {
				return err
			}
			logger.Info("imported transactions",
				zap.String("db", cfg.Store.DatabasePath), zap.Int("count", len(txs)))
		}

		if genOut == "" && !genImport {
			return store.WriteTransactionsCSV(os.Stdout, txs)
		}
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered analysis checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := transaction.NewRegistry()
		fmt.Printf("%d checks registered\n\n", registry.Count())
		for _, tool := range registry.All() {
			fmt.Printf("%-28s %-16s %s\n", tool.Name, tool.Category, tool.Description)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the investigation API server",
	Long: `Serve starts the HTTP API. The config file is watched and reloads
apply to subsequent requests where possible. SIGINT or SIGTERM shuts the
server down gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Store.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := llm.New(ctx, cfg)
		if err != nil {
			return err
		}
		logger.Info("model provider selected", zap.String("provider", client.Name()))

		p := pipeline.New(cfg, st, client, logger)
		srv := server.New(cfg, p, logger)

		watcher, err := config.NewWatcher(cfgPath, logger, func(updated *config.Config) {
			p.UpdateConfig(updated)
			logger.Info("config reloaded", zap.String("path", cfgPath))
		})
		if err != nil {
			logger.Warn("config watcher unavailable", zap.Error(err))
		} else {
			if err := watcher.Start(ctx); err != nil {
				logger.Warn("config watcher failed to start", zap.Error(err))
			} else {
				defer watcher.Stop()
			}
		}

		return srv.Start(ctx)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", cfgPath)
		}
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		fmt.Println("wrote", cfgPath)
		return nil
	},
}

func init() {
	investigateCmd.Flags().StringVarP(&alertFile, "alert-file", "f", "", "JSON file containing the alert")
	investigateCmd.Flags().StringVar(&demoCustomer, "demo-customer", "", "generate an anomalous demo alert for this customer")

	generateCmd.Flags().IntVar(&genCustomers, "customers", 10, "number of customers")
	generateCmd.Flags().IntVar(&genPerCustomer, "per-customer", 20, "transactions per customer")
	generateCmd.Flags().BoolVar(&genVelocity, "velocity", false, "generate rapid-fire velocity bursts")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 1, "random seed")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "CSV output path")
	generateCmd.Flags().BoolVar(&genImport, "import", false, "import generated data into the store")

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}
