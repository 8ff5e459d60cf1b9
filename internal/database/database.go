package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"boxoffice/internal/config"
)

// Open builds the long-lived bun handle for the configured engine. The
// dialect is chosen once here; nothing downstream branches on it per query.
func Open(cfg config.DatabaseConfig) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		bunDB *bun.DB
		err   error
	)

	switch strings.ToUpper(cfg.Engine) {
	case "POSTGRES":
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
	case "MYSQL":
		sqldb, err = sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		bunDB = bun.NewDB(sqldb, mysqldialect.New())
	case "SQLITE":
		sqldb, err = sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		bunDB = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported database engine %q", cfg.Engine)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return bunDB, nil
}
