package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/afip-client/pkg/afip"
)

var (
	queryType   int
	queryPos    int
	queryNumber int64
)

var lastNumberCmd = &cobra.Command{
	Use:   "last-number",
	Short: "Query the last authorized voucher number",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		last, err := client.LastInvoiceNumber(context.Background(), afip.InvoiceType(queryType), queryPos)
		if err != nil {
			return err
		}
		fmt.Println(last)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a previously issued voucher",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		inv, err := client.QueryInvoice(context.Background(), afip.InvoiceType(queryType), queryPos, queryNumber)
		if err != nil {
			return err
		}
		return printJSON(inv)
	},
}

var posCmd = &cobra.Command{
	Use:   "pos",
	Short: "List registered points of sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		points, err := client.PointsOfSale(context.Background())
		if err != nil {
			return err
		}
		return printJSON(points)
	},
}

func init() {
	lastNumberCmd.Flags().IntVar(&queryType, "type", 0, "Voucher type code")
	lastNumberCmd.Flags().IntVar(&queryPos, "pos", 0, "Point of sale")
	_ = lastNumberCmd.MarkFlagRequired("type")
	_ = lastNumberCmd.MarkFlagRequired("pos")

	queryCmd.Flags().IntVar(&queryType, "type", 0, "Voucher type code")
	queryCmd.Flags().IntVar(&queryPos, "pos", 0, "Point of sale")
	queryCmd.Flags().Int64Var(&queryNumber, "number", 0, "Voucher number")
	_ = queryCmd.MarkFlagRequired("type")
	_ = queryCmd.MarkFlagRequired("pos")
	_ = queryCmd.MarkFlagRequired("number")

	rootCmd.AddCommand(lastNumberCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(posCmd)
}
