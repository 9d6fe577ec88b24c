// Command pdfchat serves the PDF chat API and manages its database schema.
package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"pdfchat/internal/config"
	"pdfchat/internal/logging"
)

// @title PDF Chat API
// @version 1.0
// @description Chat with an uploaded PDF or with live web search results.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdfchat",
		Short: "PDF and web search chat server",
		Long: `pdfchat answers questions about an uploaded PDF using retrieval-augmented
generation, or about anything using live web search results.

Configuration is read from environment variables; a .env file in the working
directory is loaded automatically.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// setup loads configuration and installs the default logger.
func setup(validate bool) (*config.AppConfig, *slog.Logger, error) {
	cfg := config.Load()
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	logger := logging.New(cfg.Log, cfg.Location()).With("service", "pdfchat")
	slog.SetDefault(logger)
	return cfg, logger, nil
}
