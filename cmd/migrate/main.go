package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/database/migrations"
)

// Applies the SQL migrations (postgres). Pass -seed to also load the demo
// users and events.
func main() {
	seed := flag.Bool("seed", false, "apply demo seed data after the schema")
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	bunDB, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("[Database] Failed to connect: %v", err)
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.Options{
		MigrationsDir: *dir,
		SeedData:      *seed || cfg.Database.SeedDemoData,
	})
	if err := runner.Run(); err != nil {
		log.Fatalf("[Database] Migrations failed: %v", err)
	}
	log.Println("[Database] Migrations applied")
}
