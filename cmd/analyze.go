package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/model"
	"github.com/rentfolio/analyzer-cli/pkg/homeharvest"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single property",
	Long: `Analyze one property and print its investment verdict.

The property can come from a listing lookup by address or from a raw
property record on disk:

  analyzer analyze --address "123 Main St, Austin, TX 78701"
  analyzer analyze --input property.json --format json`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("address", "", "property address to look up and analyze")
	f.String("input", "", "path to a raw property record (JSON)")
	f.String("format", "table", "output format: table or json")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	address, _ := cmd.Flags().GetString("address")
	inputPath, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")

	if address == "" && inputPath == "" {
		return eris.New("either --address or --input is required")
	}

	ctx := cmd.Context()
	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	record, err := loadRecord(cmd, env, address, inputPath)
	if err != nil {
		return err
	}

	result, err := env.Analyzer.Analyze(ctx, record)
	if err != nil {
		return eris.Wrap(err, "analyze")
	}

	return printAnalysis(cmd, result.Analysis, format)
}

// loadRecord builds the raw property record, either from a JSON file or by
// looking the address up on the listing service.
func loadRecord(cmd *cobra.Command, env *appEnv, address, inputPath string) (model.PropertyRecord, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, eris.Wrapf(err, "read record %s", inputPath)
		}
		var record model.PropertyRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, eris.Wrap(err, "parse record")
		}
		return record, nil
	}

	if env.Listings != nil {
		prop, err := env.Listings.Property(cmd.Context(), address)
		if err != nil {
			zap.L().Warn("analyze: listing lookup failed, proceeding with address only", zap.Error(err))
		} else if prop != nil {
			return recordFromListing(prop), nil
		}
	}

	// Address-only record; the heuristic path still works once a price is
	// known, and unit resolution falls back to defaults.
	return model.PropertyRecord{"street": address}, nil
}

func recordFromListing(prop *homeharvest.Property) model.PropertyRecord {
	if len(prop.Raw) > 0 {
		return model.PropertyRecord(prop.Raw)
	}

	record := model.PropertyRecord{
		"street":     prop.Street,
		"city":       prop.City,
		"state":      prop.State,
		"zip":        prop.Zip,
		"list_price": prop.ListPrice,
		"beds":       prop.Beds,
		"full_baths": prop.Baths,
		"style":      prop.Style,
	}
	if prop.Sqft != nil {
		record["sqft"] = *prop.Sqft
	}
	if prop.UnitCount != nil {
		record["unit_count"] = float64(*prop.UnitCount)
	}
	if len(prop.Photos) > 0 {
		record["photos"] = prop.Photos
	}
	return record
}

func printAnalysis(cmd *cobra.Command, a *model.EnrichedAnalysis, format string) error {
	if format == "json" {
		out, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal analysis")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Property:     %s\n", a.Property.Address.String())
	fmt.Fprintf(w, "Price:        $%.0f\n", a.Property.Price)
	fmt.Fprintf(w, "Units:        %d", a.UnitCount)
	if a.IsMultiFamily {
		fmt.Fprint(w, " (multi-family)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rent/unit:    $%.0f (%s, %s)\n", a.RentEstimate, a.RentConfidence, a.RentSource)
	fmt.Fprintf(w, "Total rent:   $%.0f/mo\n", a.TotalMonthlyRent)
	fmt.Fprintf(w, "Score:        %d/100 [%s] %s\n", a.InvestmentScore, a.InvestmentBadge, a.BadgeDescription)

	if a.Metrics != nil {
		m := a.Metrics
		fmt.Fprintf(w, "Cash flow:    $%.0f/mo ($%.0f/yr)\n", m.MonthlyCashFlow, m.AnnualCashFlow)
		fmt.Fprintf(w, "Cap rate:     %.2f%%\n", m.CapRate)
		fmt.Fprintf(w, "CoC return:   %.2f%%\n", m.CashOnCashReturn)
		fmt.Fprintf(w, "DSCR:         %.2f\n", m.DSCR)
		fmt.Fprintf(w, "1%% rule:      %.2f%%\n", m.OnePercentRule)
		fmt.Fprintf(w, "Cash needed:  $%.0f (down $%.0f + closing $%.0f)\n",
			m.TotalInvestment, m.DownPayment, m.ClosingCosts)
	}
	return nil
}
