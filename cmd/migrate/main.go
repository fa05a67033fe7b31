package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"storefront-be/internal/logger"
	"storefront-be/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
}

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	steps := flag.Int("steps", 1, "number of migrations to roll back in down mode")
	flag.Parse()

	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L()

	if err := validateMode(*mode, *steps); err != nil {
		log.Fatal("invalid arguments", zap.Error(err))
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	defer db.Close()

	m, err := newMigrator(db, migrations.FS)
	if err != nil {
		log.Fatal("failed to prepare migrations", zap.Error(err))
	}

	if err := run(m, *mode, *steps); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal("failed to read schema version", zap.Error(err))
	}
	log.Info("schema is current", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func newMigrator(db *sql.DB, source fs.FS) (*migrate.Migrate, error) {
	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

func validateMode(mode string, steps int) error {
	switch mode {
	case "up":
		return nil
	case "down":
		if steps <= 0 {
			return fmt.Errorf("steps must be positive, got %d", steps)
		}
		return nil
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

// run treats "nothing to do" as success in both directions.
func run(m migrator, mode string, steps int) error {
	if err := validateMode(mode, steps); err != nil {
		return err
	}

	var err error
	if mode == "up" {
		err = m.Up()
	} else {
		err = m.Steps(-steps)
	}

	var missing migrate.ErrShortLimit
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
		return nil
	case errors.As(err, &missing):
		logger.L().Warn("fewer migrations applied than requested", zap.Uint("short", missing.Short))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		logger.L().Warn("no migrations to roll back")
		return nil
	default:
		return err
	}
}
