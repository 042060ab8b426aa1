package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/server"
)

var (
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for composing invoices.

The API provides endpoints for:
  - POST /api/v1/invoices            - Validate and save an invoice
  - GET  /api/v1/invoices/:id        - Fetch a saved invoice
  - POST /api/v1/invoices/preview    - Live subtotals and total
  - POST /api/v1/invoices/validate   - Field errors without saving
  - POST /api/v1/invoices/render     - Rendered document (?output=html)
  - POST /api/v1/invoices/export     - Binary document (?format=pdf|xlsx|html)
  - GET  /api/v1/options             - Currency and id type choices
  - GET  /health                     - Health check

Examples:
  # Start server on default port
  invoice-composer serve

  # Start on custom port backed by SQLite
  invoice-composer serve --port 9000 --store sqlite

  # Start in debug mode
  invoice-composer serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	d := config.Defaults()
	serveCmd.Flags().String("host", d["host"].(string), "Server listen host")
	serveCmd.Flags().Int("port", d["port"].(int), "Server listen port")
	serveCmd.Flags().Bool("debug", d["debug"].(bool), "Enable debug mode")
	serveCmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (default: all)")
	serveCmd.Flags().String("error-display", d["error-display"].(string), "When item errors are shown: blur or always")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	config := &server.Config{
		Address:      cfg.Addr(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        cfg.Debug,

		AllowedOrigins: cfg.CORSOrigins,
	}

	srv := server.NewServer(config, a)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		_ = a.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", config.Address)
	fmt.Printf("Persistence: %s\n", cfg.Store)

	return srv.Run()
}
