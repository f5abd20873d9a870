// Package main provides the entry point for the CerebroChat scouting API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "cerebrochat",
	Short: "CerebroChat scouting API server",
	Long:  "CerebroChat answers basketball scouting questions and writes player reports grounded in NCAA D1 men's statistics via REST API.",
}

// newLogger builds the process logger: production JSON by default,
// human-readable when LOG_MODE=development.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("LOG_MODE") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
