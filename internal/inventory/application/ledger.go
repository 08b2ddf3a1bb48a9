package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
)

// Ledger owns every mutation of an item's cantidad_disponible. Reserve and
// Release are the only two operations; both ride on single-document atomic
// writes because the store has no cross-document transaction.
type Ledger struct {
	log   *slog.Logger
	store ItemStore
}

func NewLedger(log *slog.Logger, store ItemStore) *Ledger {
	return &Ledger{log: log, store: store}
}

func (l *Ledger) Item(ctx context.Context, id string) (domain.Item, error) {
	return l.store.FindByID(ctx, id)
}

// Reserve takes qty units out of availability. The decrement itself is the
// race-arbitration point: the store applies it atomically and reports the
// resulting value, and only then do we learn whether a concurrent reservation
// beat us to the last units. A negative result is put back immediately and
// reported as ErrInsufficientStock so the caller can unwind its own state.
func (l *Ledger) Reserve(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}

	avail, err := l.store.AdjustAvailable(ctx, itemID, -qty)
	if err != nil {
		return err
	}
	if avail < 0 {
		if _, compErr := l.store.AdjustAvailable(ctx, itemID, qty); compErr != nil {
			l.log.Error("stock compensation failed, item left negative",
				"item_id", itemID, "qty", qty, "err", compErr)
			return compErr
		}
		l.log.Info("reservation lost race, stock restored", "item_id", itemID, "qty", qty)
		return domain.ErrInsufficientStock
	}
	return nil
}

// Release puts qty units back, clamped at cantidad_total_stock. The clamp
// guards against prior data drift and never fails the release.
func (l *Ledger) Release(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release: quantity must be positive, got %d", qty)
	}

	avail, err := l.store.RestoreAvailable(ctx, itemID, qty)
	if err != nil {
		return err
	}
	l.log.Info("stock released", "item_id", itemID, "qty", qty, "disponible", avail)
	return nil
}
