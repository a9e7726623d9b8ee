package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/okian/demandrank/internal/adapters/sheet"
	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/okian/demandrank/internal/domain/types"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	scoreJSON      bool
	scoreSheet     string
	scoreStrictCoV bool
)

var scoreCmd = &cobra.Command{
	Use:   "score FILE",
	Short: "Rank the products in a local order spreadsheet",
	Long: `Load an .xlsx, .xls or .csv file with Date, Product and Total Orders
columns, keep the rows inside the three holiday weeks and print the ranking.

Example usage:
  demandrank-cli score orders.xlsx
  demandrank-cli score orders.xlsx --sheet Orders --json
  demandrank-cli score orders.csv --strict-cov`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the ranking as JSON")
	scoreCmd.Flags().StringVar(&scoreSheet, "sheet", "", "worksheet to read (default: configured sheet or the first one)")
	scoreCmd.Flags().BoolVar(&scoreStrictCoV, "strict-cov", false, "fail when every product has the same CoV")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	sheetName := cfg.SheetName
	if scoreSheet != "" {
		sheetName = scoreSheet
	}
	strict := cfg.StrictCoVNormalization
	if cmd.Flags().Changed("strict-cov") {
		strict = scoreStrictCoV
	}

	tbl, err := sheet.Load(ctx, path, sheet.WithSheetName(sheetName))
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	ranking, err := scoring.New(scoring.WithStrictCoVNormalization(strict)).ScoreTable(ctx, tbl)
	if err != nil {
		return fmt.Errorf("score %s: %w", path, err)
	}
	logger.Get().Info(ctx, "ranked file",
		logger.String("path", path),
		logger.Int("rows_read", ranking.RowsRead),
		logger.Int("rows_in_window", ranking.RowsInWindow),
		logger.Int("products", len(ranking.Products)),
	)

	if scoreJSON {
		return printJSON(cmd.OutOrStdout(), types.RankingResponse{
			Success:  true,
			Data:     ranking.Entries(),
			Filename: filepath.Base(path),
		})
	}
	return printRanking(cmd.OutOrStdout(), ranking)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRanking(w io.Writer, r scoring.Ranking) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPRODUCT\tSCORE\tAVG\tMIN\tCOV%\tTOP7")
	for _, p := range r.Products {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.2f\t%.0f\t%.2f\t%d\n",
			p.Rank, p.Product, p.Score, p.Avg, p.Min, p.CoV, p.Top7)
	}
	return tw.Flush()
}
