package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/afip-client/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP facade",
	Long: `Starts an HTTP server exposing voucher issuance, voucher
queries and taxpayer lookups over a local REST API.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      serveAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Debug:        verbose,
	}, client.Engine(), client.Registry())

	log.Printf("[SERVER] listening on %s", serveAddr)
	return srv.Run()
}
