package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Key, error) {
	return get(ctx, r.db, name)
}

func (r *SQLiteRepository) Create(ctx context.Context, k Key) error {
	return create(ctx, r.db, k)
}

func (r *SQLiteRepository) GetOrCreate(ctx context.Context, name string, generate func() (Key, error)) (*Key, bool, error) {
	type result struct {
		key     *Key
		created bool
	}

	res, err := dbx.WithTxValue(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) (result, error) {
		k, err := get(ctx, tx, name)
		if err == nil {
			return result{key: k}, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return result{}, err
		}

		nk, err := generate()
		if err != nil {
			return result{}, fmt.Errorf("generate key[%s]: %w", name, err)
		}
		nk.Name = name

		if err := create(ctx, tx, nk); err != nil {
			return result{}, err
		}
		return result{key: &nk, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}

	return res.key, res.created, nil
}

func get(ctx context.Context, db dbx.DBTX, name string) (*Key, error) {
	k := Key{Name: name}
	err := db.QueryRowContext(ctx,
		`SELECT address, salt, nonce, ciphertext FROM keys WHERE name = ?`, name,
	).Scan(&k.Address, &k.Salt, &k.Nonce, &k.Ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key[%s]: %w", name, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key[%s]: %w", name, err)
	}
	return &k, nil
}

func create(ctx context.Context, db dbx.DBTX, k Key) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO keys (name, address, salt, nonce, ciphertext) VALUES (?, ?, ?, ?, ?)`,
		k.Name, k.Address, k.Salt, k.Nonce, k.Ciphertext,
	)
	if err != nil {
		return fmt.Errorf("failed to create key[%s]: %w", k.Name, err)
	}
	return nil
}
