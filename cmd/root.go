package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/config"
)

var (
	cfg             *config.Config
	assumptionsPath string
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Residential investment property analyzer",
	Long:  "Estimates rent from multiple data sources, derives the standard investment metrics, and grades each property with a weighted score and deal-quality badge.",
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

func init() {
	rootCmd.PersistentFlags().StringVar(&assumptionsPath, "assumptions", "",
		"YAML file of underwriting assumption overrides (takes precedence over config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
