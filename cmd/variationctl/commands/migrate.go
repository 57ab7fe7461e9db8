package commands

import (
	"fmt"

	"github.com/fekuna/omnipos-variation-service/internal/schema"
	"github.com/spf13/cobra"
)

var dryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create the tables and indexes the service needs. Every statement is
idempotent, so running it against an up-to-date database is a no-op.

Examples:
  variationctl migrate              # Apply the schema
  variationctl migrate --dry-run    # Print the SQL without executing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun {
			fmt.Fprintln(cmd.OutOrStdout(), schema.SQL)
			return nil
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := schema.Apply(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the schema without applying it")
}
