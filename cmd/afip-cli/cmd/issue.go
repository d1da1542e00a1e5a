package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/afip-client/pkg/afip"
)

var (
	issueFile  string
	issueType  int
	issuePos   int
	issueTotal float64
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Authorize an electronic voucher",
	Long: `Issues a voucher and prints the CAE response, including the
fiscal QR URL.

Either --file with a full JSON request, or --type/--pos/--total for a
simple final-consumer receipt:

  afip-cli issue --type 11 --pos 1 --total 1500
  afip-cli issue --file invoice.json`,
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().StringVarP(&issueFile, "file", "f", "", "JSON file with a full invoice request")
	issueCmd.Flags().IntVar(&issueType, "type", 0, "Voucher type code (e.g. 11 for Factura C)")
	issueCmd.Flags().IntVar(&issuePos, "pos", 0, "Point of sale")
	issueCmd.Flags().Float64Var(&issueTotal, "total", 0, "Flat total for a simple receipt")
	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if issueFile != "" {
		data, err := os.ReadFile(issueFile)
		if err != nil {
			return fmt.Errorf("failed to read request file: %w", err)
		}
		var req afip.InvoiceRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse request file: %w", err)
		}
		res, err := client.Issue(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(res)
	}

	if issueType == 0 || issuePos == 0 || issueTotal == 0 {
		return fmt.Errorf("either --file or all of --type, --pos and --total are required")
	}

	res, err := client.IssueSimple(ctx, afip.InvoiceType(issueType), issuePos, decimal.NewFromFloat(issueTotal))
	if err != nil {
		return err
	}
	return printJSON(res)
}
