package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storageorder/internal/dbx"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

// txIDSep joins transaction ids in a single column; ids are base32.
const txIDSep = ","

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rc models.Receipt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, network, app_id, sender, cid, size, permanent, node, amount, round, tx_ids, group_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rc.ID, rc.Network, int64(rc.AppID), rc.Sender, rc.CID, int64(rc.Size), rc.Permanent,
		rc.Node, int64(rc.Amount), int64(rc.Round), strings.Join(rc.TxIDs, txIDSep), rc.GroupID,
		rc.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order[%s]: %w", rc.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, network, app_id, sender, cid, size, permanent, node, amount, round, tx_ids, group_id, created_at
		FROM orders ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var result []models.Receipt
	for rows.Next() {
		var (
			rc                               models.Receipt
			appID, size, amount, round, nano int64
			txIDs                            string
		)
		if err := rows.Scan(&rc.ID, &rc.Network, &appID, &rc.Sender, &rc.CID, &size, &rc.Permanent,
			&rc.Node, &amount, &round, &txIDs, &rc.GroupID, &nano); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		rc.AppID, rc.Size, rc.Amount, rc.Round = uint64(appID), uint64(size), uint64(amount), uint64(round)
		if txIDs != "" {
			rc.TxIDs = strings.Split(txIDs, txIDSep)
		}
		rc.CreatedAt = time.Unix(0, nano).UTC()
		result = append(result, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return result, nil
}
