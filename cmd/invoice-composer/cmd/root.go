package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-composer/internal/app"
	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/logging"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configFile   string
	envFile      string

	// Resolved in PersistentPreRunE
	cfg    config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoice-composer",
	Short: "Compose, validate, save and export invoices",
	Long: `Invoice Composer validates invoice drafts, computes totals, saves finished
invoices and exports them as PDF, XLSX or HTML documents.

A draft is a JSON file with the form fields:
  {"client_name": "...", "id_type": "NIT", "id_number": "...",
   "email": "...", "phone": "...", "date": "2024-03-01", "currency": "USD",
   "items": [{"description": "Design", "quantity": "2", "price": "100"}]}

Configuration is read from invoice-composer.yaml, .env and
INVOICE_COMPOSER_* environment variables; flags win over all of them.

Examples:
  # Show live totals
  invoice-composer preview draft.json -f table

  # Validate all drafts in a directory
  invoice-composer validate drafts/

  # Save to a remote backend
  invoice-composer submit draft.json --store remote --remote-url https://example.com/api

  # Export a PDF
  invoice-composer export draft.json --export-format pdf --output-dir out/`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	d := config.Defaults()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./invoice-composer.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")

	rootCmd.PersistentFlags().String("log-level", d["log-level"].(string), "Log level (env: INVOICE_COMPOSER_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", d["log-format"].(string), "Log format: json or text")
	rootCmd.PersistentFlags().String("store", d["store"].(string), "Persistence service: memory, sqlite or remote")
	rootCmd.PersistentFlags().String("remote-url", d["remote-url"].(string), "Base URL of the remote invoice backend")
	rootCmd.PersistentFlags().String("remote-timeout", d["remote-timeout"].(string), "Timeout of one remote save")
	rootCmd.PersistentFlags().String("sqlite-dsn", d["sqlite-dsn"].(string), "SQLite data source for the sqlite store")
	rootCmd.PersistentFlags().String("locale", d["locale"].(string), "Locale used to format amounts")
	rootCmd.PersistentFlags().String("labels", d["labels"].(string), "Document labels: en or es")
	rootCmd.PersistentFlags().Bool("strict-contact", d["strict-contact"].(bool), "Check email and phone formats before saving")
	rootCmd.PersistentFlags().String("phone-region", d["phone-region"].(string), "Region for phone numbers without country code")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cmd, config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	logger = logging.NewWithOutput(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	printVerbose("Store: %s, labels: %s, locale: %s\n", cfg.Store, cfg.Labels, cfg.Locale)
	return nil
}

// newApp builds the services for one command run
func newApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), cfg, logger)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
