//go:build integration

// Package pgtest starts a throwaway PostgreSQL container with the service
// schema applied. Only built with -tags integration.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/schema"
	"github.com/fekuna/omnipos-variation-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func New(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("omnipos_variation"),
		tcpostgres.WithUsername("omnipos"),
		tcpostgres.WithPassword("omnipos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := postgres.Open(dsn, &postgres.Config{MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := schema.Apply(ctx, db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	// Applying twice must be harmless.
	if err := schema.Apply(ctx, db); err != nil {
		t.Fatalf("failed to re-apply schema: %v", err)
	}
	return db
}

// SeedProduct inserts a product and returns its id.
func SeedProduct(t *testing.T, db *sqlx.DB, merchantID, name, basePrice string, quantity int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`
        INSERT INTO products (merchant_id, name, base_price, quantity, images)
        VALUES ($1, $2, $3, $4, '{shirt.jpg}')
        RETURNING id
    `, merchantID, name, basePrice, quantity).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}
