package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rentfolio/analyzer-cli/internal/analyzer"
	"github.com/rentfolio/analyzer-cli/internal/model"
	"github.com/rentfolio/analyzer-cli/internal/resilience"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a CSV of addresses",
	Long: `Analyze every address in a CSV file and write results to a CSV.

The input file needs an "address" column; remaining columns are ignored.

  analyzer batch --input addresses.csv --output results.csv --concurrency 4`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("input", "", "input CSV with an address column (required)")
	f.String("output", "", "output CSV path (default: stdout)")
	f.Int("concurrency", 0, "concurrent analyses (default from config)")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

type batchRow struct {
	index    int
	address  string
	analysis *model.EnrichedAnalysis
	err      error
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	addresses, err := readAddresses(inputPath)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return eris.Errorf("no addresses found in %s", inputPath)
	}

	ctx := cmd.Context()
	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	zap.L().Info("batch: starting",
		zap.Int("addresses", len(addresses)),
		zap.Int("concurrency", concurrency),
	)

	rows := make([]batchRow, len(addresses))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			// Lookup failures degrade inside the analysis; the retry covers
			// transient store write failures and cancellation surfaces as a
			// per-row error.
			res, aerr := resilience.DoVal(gctx, resilience.DefaultRetryConfig(),
				func(ctx context.Context) (*analyzer.Result, error) {
					return env.Analyzer.Analyze(ctx, model.PropertyRecord{"street": address})
				})

			mu.Lock()
			rows[i] = batchRow{index: i, address: address, err: aerr}
			if aerr == nil {
				rows[i].analysis = res.Analysis
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return writeBatchResults(cmd, rows, outputPath)
}

func readAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv")
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Locate the address column from the header; default to column 0.
	col := 0
	for i, name := range records[0] {
		if name == "address" {
			col = i
			break
		}
	}

	var addresses []string
	for _, rec := range records[1:] {
		if col < len(rec) && rec[col] != "" {
			addresses = append(addresses, rec[col])
		}
	}
	return addresses, nil
}

func writeBatchResults(cmd *cobra.Command, rows []batchRow, outputPath string) error {
	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", outputPath)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"address", "score", "badge", "rent_estimate", "monthly_cash_flow", "cap_rate", "error"}); err != nil {
		return eris.Wrap(err, "batch: write header")
	}

	var failed int
	for _, row := range rows {
		record := []string{row.address, "", "", "", "", "", ""}
		switch {
		case row.err != nil:
			failed++
			record[6] = row.err.Error()
		case row.analysis != nil:
			a := row.analysis
			record[1] = strconv.Itoa(a.InvestmentScore)
			record[2] = string(a.InvestmentBadge)
			record[3] = fmt.Sprintf("%.0f", a.RentEstimate)
			if a.Metrics != nil {
				record[4] = fmt.Sprintf("%.2f", a.Metrics.MonthlyCashFlow)
				record[5] = fmt.Sprintf("%.2f", a.Metrics.CapRate)
			}
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "batch: write row")
		}
	}

	zap.L().Info("batch: complete",
		zap.Int("total", len(rows)),
		zap.Int("failed", failed),
	)
	return nil
}
