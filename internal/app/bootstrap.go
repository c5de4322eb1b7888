package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"newsdesk/internal/config"
	"newsdesk/internal/vector"
)

// Dependencies holds the external systems the worker and server modes
// need. Call Close when done.
type Dependencies struct {
	DB       *sql.DB
	Weaviate *weaviate.Client
}

func (d *Dependencies) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// Bootstrap connects to Postgres, applies migrations, connects to
// Weaviate and ensures the article schema. Both backends get the same
// retry budget because container startup order is not guaranteed.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	delay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	err = Retry(cfg.BootstrapRetryAttempts, delay, func() error {
		if pingErr := db.Ping(); pingErr != nil {
			slog.Warn("failed to ping db, retrying", "error", pingErr)
			return pingErr
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(cfg, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("migrations applied")

	wClient, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	adapter := vector.NewClientAdapter(wClient)
	err = Retry(cfg.BootstrapRetryAttempts, delay, func() error {
		if schemaErr := vector.EnsureSchema(ctx, adapter); schemaErr != nil {
			slog.Warn("failed to ensure weaviate schema, retrying", "error", schemaErr)
			return schemaErr
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure weaviate schema: %w", err)
	}
	slog.Info("weaviate schema ensured")

	return &Dependencies{DB: db, Weaviate: wClient}, nil
}

func runMigrations(cfg *config.Config, db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Retry runs fn up to attempts times, sleeping delay between failures.
// The last error is returned when every attempt fails.
func Retry(attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
