package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain a WSAA authentication ticket",
	Long: `Builds and signs a login ticket request, exchanges it through
WSAA and prints the resulting ticket. Mostly useful for checking that
the certificate, key and CUIT are wired correctly.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ticket, err := client.Authenticate(context.Background())
	if err != nil {
		return err
	}
	return printJSON(ticket)
}
