package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "assistpro",
	Short: "Marketing site and admin backend for the AI sales agent",
	Long:  "Serves the subscription and checkout API, captures and qualifies leads from the CNPJ registry, and manages the virtual agent's availability.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
