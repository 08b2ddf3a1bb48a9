package application

import (
	"context"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
)

// ItemStore is the per-document atomic surface of the datastore. The store
// guarantees atomicity of a single item write only; nothing here spans an
// item and a loan in one transaction.
type ItemStore interface {
	FindByID(ctx context.Context, id string) (domain.Item, error)

	// AdjustAvailable adds delta (may be negative) to cantidad_disponible in
	// a single atomic write and returns the resulting value, bounds included.
	AdjustAvailable(ctx context.Context, id string, delta int) (int, error)

	// RestoreAvailable adds qty to cantidad_disponible clamped at
	// cantidad_total_stock, atomically, and returns the resulting value.
	RestoreAvailable(ctx context.Context, id string, qty int) (int, error)
}
