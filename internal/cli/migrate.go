package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inviteplanner/internal/repository/mongodb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and indexes",
	Long: `Create the account tables in PostgreSQL, seed the admin and user roles,
and create the MongoDB indexes for invitations and payments.

Every step is idempotent; serve runs the same steps on start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.ContextTimeout)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		if err := prepareStores(ctx, db, client.Database(cfg.MongoDatabase)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema and indexes are up to date.")
		return nil
	},
}
