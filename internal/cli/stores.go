package cli

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"

	"inviteplanner/config"
	"inviteplanner/internal/repository/mongodb"
	"inviteplanner/internal/repository/postgres"
)

// openPostgres opens and pings the accounts database.
func openPostgres(ctx context.Context, c *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, c.ContextTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// prepareStores applies the Postgres schema and the Mongo indexes.
func prepareStores(ctx context.Context, db *sql.DB, mdb *mongo.Database) error {
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}
	if err := mongodb.EnsureIndexes(ctx, mdb); err != nil {
		return fmt.Errorf("failed to ensure mongo indexes: %w", err)
	}
	return nil
}
