package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cerebrochat/cerebrochat/internal/config"
	"github.com/cerebrochat/cerebrochat/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the agent, player, scouting, and auth endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	app := config.LoadApp()
	if app.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if servePort > 0 {
		app.Port = servePort
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(server.Config{
		Port:               app.Port,
		DatabaseURL:        app.DatabaseURL,
		PercentileCacheDir: app.PercentileCacheDir,
		VectorIndexPath:    app.VectorIndexPath,
		Logger:             logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
