package main

import (
	"fmt"
	"time"

	"github.com/okian/demandrank/internal/sampleorders"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	submitURL     string
	submitTimeout time.Duration
	submitJSON    bool
)

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Upload a workbook to a running server and check the ranking",
	Long: `Post FILE to the server's /upload endpoint, then verify the returned
ranking: ranks 1..N in order, scores within 0..10 and non-increasing,
ties ordered by product name, top7 counts within 0..3.

Example usage:
  demandrank-cli submit orders.xlsx
  demandrank-cli submit --url http://localhost:9090 orders.xlsx --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitURL, "url", "http://localhost:8080", "server base URL")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 60*time.Second, "request timeout")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "print the server response as JSON")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	resp, err := sampleorders.NewClient(submitURL, submitTimeout).Submit(ctx, args[0])
	if err != nil {
		return err
	}
	if err := sampleorders.Verify(resp.Data); err != nil {
		return err
	}
	logger.Get().Info(ctx, "ranking verified",
		logger.String("filename", resp.Filename),
		logger.Int("products", len(resp.Data)),
		logger.Duration("elapsed", time.Since(start)),
	)

	if submitJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d products ranked, ranking verified\n", resp.Filename, len(resp.Data))
	for _, e := range resp.Data {
		fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-30s %6.3f  top7=%d\n", e.Rank, e.Product, e.OutOf10, e.Top7)
	}
	return nil
}
