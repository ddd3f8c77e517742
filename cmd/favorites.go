package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

var favoritesLimit int

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved properties",
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Analyze a property and save a snapshot of the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Analyzer.Analyze(cmd.Context(), model.PropertyRecord{"street": args[0]})
		if err != nil {
			return eris.Wrap(err, "favorites: analyze")
		}

		a := result.Analysis
		fav := model.Favorite{
			Address:         args[0],
			RentEstimate:    a.RentEstimate,
			InvestmentBadge: a.InvestmentBadge,
			QuickScore:      a.InvestmentScore,
		}
		if a.CashFlow != nil {
			fav.EstimatedCashFlow = *a.CashFlow
		}

		saved, err := env.Store.SaveFavorite(cmd.Context(), fav)
		if err != nil {
			return eris.Wrap(err, "favorites: save")
		}
		fmt.Printf("saved %s (%s)\n", saved.Address, saved.ID)
		return nil
	},
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		favs, err := env.Store.ListFavorites(cmd.Context(), favoritesLimit)
		if err != nil {
			return eris.Wrap(err, "favorites: list")
		}
		if len(favs) == 0 {
			fmt.Println("no favorites saved")
			return nil
		}
		for _, f := range favs {
			fmt.Printf("%s  %-40s  score=%-3d  badge=%-17s  rent=$%.0f  cashflow=$%.0f\n",
				f.ID, f.Address, f.QuickScore, f.InvestmentBadge, f.RentEstimate, f.EstimatedCashFlow)
		}
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a saved property",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.DeleteFavorite(cmd.Context(), args[0]); err != nil {
			return eris.Wrap(err, "favorites: delete")
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	favoritesListCmd.Flags().IntVar(&favoritesLimit, "limit", 50, "maximum rows to list")
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesListCmd, favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}
