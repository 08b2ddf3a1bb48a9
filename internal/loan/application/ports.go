package application

import (
	"context"

	invdomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
)

// LoanQuery narrows a listing. A zero value means "everything".
type LoanQuery struct {
	UserID string
	Estado *domain.LoanStatus
}

// LoanRepository is a document-style store: per-loan writes are atomic, reads
// resolve the usuario/item/aula relations, and Find returns newest first.
type LoanRepository interface {
	Create(ctx context.Context, loan domain.Loan) (domain.Loan, error)
	FindByID(ctx context.Context, id string) (domain.Loan, error)
	Save(ctx context.Context, loan domain.Loan) error
	DeleteByID(ctx context.Context, id string) (domain.Loan, error)
	Find(ctx context.Context, q LoanQuery) ([]domain.Loan, error)
}

// StockLedger is the only path through which loan transitions touch an
// item's availability.
type StockLedger interface {
	Item(ctx context.Context, id string) (invdomain.Item, error)
	Reserve(ctx context.Context, itemID string, qty int) error
	Release(ctx context.Context, itemID string, qty int) error
}

// EventPublisher hands a lifecycle event to the delivery pipeline. Publishing
// is best-effort from the engine's point of view: a failure is logged by the
// caller and never unwinds the transition that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload []byte) error
}
