package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rezonia/afip-client/pkg/afip"
)

var (
	version = "1.0.0"

	// Global flags
	cfgFile     string
	cuit        string
	certPath    string
	keyPath     string
	environment string
	timeout     time.Duration
	legacyTLS   bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "afip-cli",
	Short: "Issue electronic invoices through AFIP's web services",
	Long: `afip-cli authenticates against AFIP's WSAA service and issues
electronic vouchers (facturas, notas de crédito/débito) through WSFEv1.

Credentials come from flags, environment variables (AFIP_CUIT,
AFIP_CERT, AFIP_KEY, AFIP_ENV) or a config file.

Examples:
  # Obtain an authentication ticket
  afip-cli auth --cuit 20111111112 --cert cert.pem --key key.pem

  # Issue a simple receipt for a final consumer
  afip-cli issue --type 11 --pos 1 --total 1500

  # Issue from a JSON request file
  afip-cli issue --file invoice.json

  # Query the last authorized number
  afip-cli last-number --type 11 --pos 1

  # Start the local HTTP facade
  afip-cli serve --addr :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.afip-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&cuit, "cuit", "", "Issuer CUIT (env: AFIP_CUIT)")
	rootCmd.PersistentFlags().StringVar(&certPath, "cert", "", "Path to PEM certificate (env: AFIP_CERT)")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "", "Path to PEM private key (env: AFIP_KEY)")
	rootCmd.PersistentFlags().StringVar(&environment, "env", "testing", "Environment: testing or production (env: AFIP_ENV)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Remote call timeout")
	rootCmd.PersistentFlags().BoolVar(&legacyTLS, "legacy-tls", false, "Relax TLS negotiation for legacy AFIP frontends")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".afip-cli")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("afip")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	if cuit == "" {
		cuit = viper.GetString("cuit")
	}
	if certPath == "" {
		certPath = viper.GetString("cert")
	}
	if keyPath == "" {
		keyPath = viper.GetString("key")
	}
	if env := viper.GetString("env"); env != "" && !rootCmd.PersistentFlags().Changed("env") {
		environment = env
	}
}

// newClient assembles an afip.Client from the resolved configuration.
func newClient() (*afip.Client, error) {
	if cuit == "" || certPath == "" || keyPath == "" {
		return nil, fmt.Errorf("cuit, cert and key are required (flags, AFIP_* env vars or config file)")
	}

	cert, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	env := afip.EnvironmentTesting
	if strings.EqualFold(environment, "production") {
		env = afip.EnvironmentProduction
	}

	return afip.New(afip.Config{
		CUIT:        cuit,
		Certificate: cert,
		PrivateKey:  key,
		Environment: env,
		Timeout:     timeout,
		LegacyTLS:   legacyTLS,
		Verbose:     verbose,
	})
}

// printJSON renders a result as indented JSON on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
