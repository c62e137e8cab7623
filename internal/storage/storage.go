// Package storage opens the local SQLite database and wires the
// repositories on top of it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/storageorder/internal/filex"
	"github.com/dmitrijs2005/storageorder/internal/migrations"
	"github.com/dmitrijs2005/storageorder/internal/repositories/keys"
	"github.com/dmitrijs2005/storageorder/internal/repositories/orders"
)

type Repositories struct {
	DB     *sql.DB
	Keys   keys.Repository
	Orders orders.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the database at dsn, applies
// pending migrations and returns the repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway; a single connection also keeps an
	// in-memory database alive and shared.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return &Repositories{
		DB:     db,
		Keys:   keys.NewSQLiteRepository(db),
		Orders: orders.NewSQLiteRepository(db),
	}, nil
}
