package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/satheeshds/schemes/db"
	_ "github.com/satheeshds/schemes/docs"
	"github.com/satheeshds/schemes/handlers"
	"github.com/satheeshds/schemes/reference"
)

// @title           Distributor Schemes API
// @version         1.0.0
// @description     API for managing distributors, article catalog, sales uploads and commission schemes.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

var (
	servePort      string
	serveReference string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		if serveReference != "" {
			cfg.ReferenceFile = serveReference
		}

		ref, err := reference.Load(cfg.ReferenceFile)
		if err != nil {
			return err
		}

		// Open database
		database, err := db.Open(cfg.DBDriver, cfg.DSN())
		if err != nil {
			slog.Error("failed to open database", "error", err)
			return err
		}
		defer database.Close()

		// Run migrations
		if err := db.Migrate(database); err != nil {
			slog.Error("failed to run migrations", "error", err)
			return err
		}

		// Shared state for handlers
		handlers.DB = database
		handlers.Reference = ref
		handlers.MaxUploadBytes = cfg.MaxUploadBytes()
		handlers.MaxSalesRecords = cfg.MaxSalesRecords

		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("server starting", "address", addr, "zones", len(ref.Zones), "distributor_types", len(ref.DistributorTypes))
		if err := http.ListenAndServe(addr, handlers.Router(cfg.AuthUser, cfg.AuthPass)); err != nil {
			slog.Error("server failed", "error", err)
			return err
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return err
		}
		defer database.Close()
		return db.Migrate(database)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveReference, "reference", "", "reference data YAML (overrides REFERENCE_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
