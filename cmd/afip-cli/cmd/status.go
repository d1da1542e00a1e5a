package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check AFIP service health (FEDummy)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.ServerStatus(context.Background())
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var taxpayerCmd = &cobra.Command{
	Use:   "taxpayer <cuit>",
	Short: "Look up a taxpayer in the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		tp, err := client.Taxpayer(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(tp)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(taxpayerCmd)
}
