package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-variation-service/config"
	"github.com/fekuna/omnipos-variation-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbURL      string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "variationctl",
	Short: "Operator tooling for the variation service",
	Long: `variationctl applies the database schema and inspects the variation data
of a product: its combinations and its reconciled price/stock grid.

Connection settings come from the same POSTGRES_* variables the service
reads, unless --db is given.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to POSTGRES_* settings)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func openDB() (*sqlx.DB, error) {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	pgCfg := &postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	if dbURL != "" {
		return postgres.Open(dbURL, pgCfg)
	}
	return postgres.NewPostgres(pgCfg)
}
