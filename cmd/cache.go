package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the analysis cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Store.CacheStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("entries:  %d\n", stats.Entries)
		fmt.Printf("expired:  %d\n", stats.Expired)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Store.PruneExpired(cmd.Context())
		if err != nil {
			return err
		}
		zap.L().Info("cache: pruned expired entries", zap.Int("removed", n))
		fmt.Printf("removed %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
