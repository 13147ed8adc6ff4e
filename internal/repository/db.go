package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of the run ledger.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the ledger database handle.
type DB struct {
	*sql.DB
	dialect Dialect
	pool    *pgxpool.Pool
}

// DialectFor picks the dialect from the DSN scheme.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the ledger database and creates the schema.
// Postgres DSNs go through a pgx pool; anything else is a sqlite DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect := DialectFor(cfg.DSN)
	logger.Info("repository.db.connecting", "dialect", dialect)

	db := &DB{dialect: dialect}
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "bom-validator"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("repository.db.connect_failed", "error", err)
			return nil, err
		}
		db.pool = pool
		db.DB = stdlib.OpenDBFromPool(pool)
	default:
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite allows one writer; a single connection also keeps ":memory:" databases shared.
		sqlDB.SetMaxOpenConns(1)
		db.DB = sqlDB
	}

	if err := db.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("repository.db.connected", "dialect", dialect)
	return db, nil
}

// Dialect returns the SQL flavour in use.
func (db *DB) Dialect() Dialect { return db.dialect }

// Close releases the handle and the pgx pool behind it.
func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if db.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS extract_run (
			id            TEXT PRIMARY KEY,
			folder_id     TEXT NOT NULL,
			extractor     TEXT NOT NULL,
			status        TEXT NOT NULL,
			records       INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at    ` + ts + ` NOT NULL,
			finished_at   ` + ts + `
		)`,
		`CREATE INDEX IF NOT EXISTS extract_run_folder_idx ON extract_run (folder_id, started_at)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
