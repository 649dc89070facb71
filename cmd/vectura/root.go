// Command vectura is a small CLI over the embeddable vector database:
// add, search, reset, and stats, in the style of sercha-cli's command
// tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vectura"
	"github.com/kailas-cloud/vectura/internal/config"
	"github.com/kailas-cloud/vectura/internal/logger"
)

var (
	env    string
	dbName string
	db     *vectura.DB
)

var rootCmd = &cobra.Command{
	Use:   "vectura",
	Short: "Embeddable vector database CLI",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "vectura" {
			return nil
		}
		return openDatabase(cmd.Context())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if db != nil {
			_ = db.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "configuration environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbName, "name", "", "database name override")
}

func openDatabase(ctx context.Context) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbName != "" {
		cfg.Name = dbName
	}

	l, err := logger.NewLogger(env)
	if err != nil {
		l = nil
	}

	opened, err := vectura.NewFromConfig(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("open database %q: %w", cfg.Name, err)
	}
	db = opened
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
