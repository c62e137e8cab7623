// Package orders keeps receipts of confirmed storage orders.
package orders

import (
	"context"

	"github.com/dmitrijs2005/storageorder/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, r models.Receipt) error

	// List returns receipts oldest first.
	List(ctx context.Context) ([]models.Receipt, error)
}
