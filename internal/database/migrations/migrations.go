package migrations

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"
)

// schemaVersion is the last migration that is pure schema; everything above
// it is demo seed data.
const schemaVersion = 1

type Options struct {
	MigrationsDir string
	// SeedData also applies the demo seed migrations after the schema.
	SeedData bool
}

func DefaultOptions() Options {
	return Options{
		MigrationsDir: "./migrations",
		SeedData:      false,
	}
}

// Runner applies SQL migrations against the postgres database underlying the
// bun handle.
type Runner struct {
	bunDB    *bun.DB
	options  Options
	migrator *migrate.Migrate
}

func NewRunner(bunDB *bun.DB, opts Options) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) initialize() error {
	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	if _, err := os.Stat(r.options.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.MigrationsDir)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.MigrationsDir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.migrator = migrator
	return nil
}

// Run applies pending migrations: everything when SeedData is set, schema
// only otherwise.
func (r *Runner) Run() error {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return err
		}
	}

	var err error
	if r.options.SeedData {
		err = r.migrator.Up()
	} else {
		err = r.migrator.Migrate(schemaVersion)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
