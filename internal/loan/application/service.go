package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	invdomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
)

// Service is the loan lifecycle engine. It owns the state machine
// Pendiente -> Aprobado|Rechazado, Aprobado|Aplazado -> Devuelto|Aplazado,
// and orchestrates the stock ledger as part of each transition.
type Service struct {
	log    *slog.Logger
	loans  LoanRepository
	stock  StockLedger
	events EventPublisher
	now    func() time.Time
}

func NewService(log *slog.Logger, loans LoanRepository, stock StockLedger, events EventPublisher) *Service {
	return &Service{
		log:    log,
		loans:  loans,
		stock:  stock,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type CreateLoanInput struct {
	UserID   string
	ItemID   string
	AulaID   string
	Cantidad int
}

// Create registers a new request in Pendiente. Stock is not touched here;
// units are reserved only at approval.
func (s *Service) Create(ctx context.Context, in CreateLoanInput) (domain.Loan, error) {
	if in.Cantidad <= 0 {
		return domain.Loan{}, fmt.Errorf("%w: cantidad_prestamo must be positive", domain.ErrValidation)
	}

	item, err := s.stock.Item(ctx, in.ItemID)
	if err != nil {
		return domain.Loan{}, err
	}

	loan := domain.NewLoan(uuid.NewString(), domain.Borrower{ID: in.UserID}, item.ID, domain.Aula{ID: in.AulaID}, in.Cantidad)
	loan.CreatedAt = s.now()
	loan.UpdatedAt = loan.CreatedAt

	created, err := s.loans.Create(ctx, loan)
	if err != nil {
		return domain.Loan{}, err
	}

	s.publish(ctx, domain.EventLoanCreated, created.ID, domain.LoanCreated{
		LoanID:     created.ID,
		UserID:     created.Usuario.ID,
		UserNombre: created.Usuario.Nombre,
		UserEmail:  created.Usuario.Email,
		ItemID:     item.ID,
		ItemNombre: item.Nombre,
		AulaNombre: created.Aula.Nombre,
		Cantidad:   created.Cantidad,
	})
	return created, nil
}

// Approve moves a Pendiente loan to Aprobado and reserves its units.
//
// The loan is flipped and persisted first, then the ledger decrement runs as
// the race-arbitration point. When the decrement reveals that a concurrent
// approval already took the units, the flip is reverted and the caller gets
// ErrInsufficientStock. The store offers no transaction across the two
// documents, so this write-then-verify-then-compensate ordering is the whole
// consistency story.
func (s *Service) Approve(ctx context.Context, id string, fechaEstimada time.Time) (domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Estado != domain.StatusPendiente {
		return domain.Loan{}, fmt.Errorf("%w: cannot approve from %s", domain.ErrInvalidState, loan.Estado)
	}
	if fechaEstimada.IsZero() {
		return domain.Loan{}, fmt.Errorf("%w: fecha_estimada is required", domain.ErrValidation)
	}

	item, err := s.stock.Item(ctx, loan.ItemID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Cantidad > item.Disponible {
		return domain.Loan{}, invdomain.ErrInsufficientStock
	}

	now := s.now()
	loan.Estado = domain.StatusAprobado
	loan.FechaPrestamo = &now
	loan.FechaEstimada = &fechaEstimada
	loan.UpdatedAt = now
	if err := s.loans.Save(ctx, loan); err != nil {
		return domain.Loan{}, err
	}

	if err := s.stock.Reserve(ctx, loan.ItemID, loan.Cantidad); err != nil {
		if errors.Is(err, invdomain.ErrInsufficientStock) {
			s.revertApproval(ctx, loan)
		}
		return domain.Loan{}, err
	}

	s.publish(ctx, domain.EventLoanApproved, loan.ID, domain.LoanApproved{
		LoanID:        loan.ID,
		UserNombre:    loan.Usuario.Nombre,
		UserEmail:     loan.Usuario.Email,
		ItemNombre:    item.Nombre,
		Cantidad:      loan.Cantidad,
		FechaPrestamo: now,
		FechaEstimada: fechaEstimada,
	})
	return loan, nil
}

// revertApproval undoes the optimistic state flip after a lost reservation
// race. A failure here is logged only; the caller still reports the
// reservation failure, and the loan record can be repaired by a retry.
func (s *Service) revertApproval(ctx context.Context, loan domain.Loan) {
	loan.Estado = domain.StatusPendiente
	loan.FechaPrestamo = nil
	loan.FechaEstimada = nil
	loan.UpdatedAt = s.now()
	if err := s.loans.Save(ctx, loan); err != nil {
		s.log.Error("approval revert failed, loan left Aprobado without stock",
			"loan_id", loan.ID, "item_id", loan.ItemID, "err", err)
	}
}

// Reject moves a Pendiente loan to Rechazado. Nothing was reserved, so stock
// stays untouched and no notification goes out.
func (s *Service) Reject(ctx context.Context, id string) (domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Estado != domain.StatusPendiente {
		return domain.Loan{}, fmt.Errorf("%w: cannot reject from %s", domain.ErrInvalidState, loan.Estado)
	}

	loan.Estado = domain.StatusRechazado
	loan.UpdatedAt = s.now()
	if err := s.loans.Save(ctx, loan); err != nil {
		return domain.Loan{}, err
	}
	return loan, nil
}

// Return moves an Aprobado or Aplazado loan to Devuelto and restores its
// units, clamped at cantidad_total_stock.
func (s *Service) Return(ctx context.Context, id string) (domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if !loan.Active() {
		return domain.Loan{}, fmt.Errorf("%w: cannot return from %s", domain.ErrInvalidState, loan.Estado)
	}

	item, err := s.stock.Item(ctx, loan.ItemID)
	if err != nil {
		return domain.Loan{}, err
	}

	now := s.now()
	loan.Estado = domain.StatusDevuelto
	loan.FechaRetorno = &now
	loan.UpdatedAt = now
	if err := s.loans.Save(ctx, loan); err != nil {
		return domain.Loan{}, err
	}

	if err := s.stock.Release(ctx, loan.ItemID, loan.Cantidad); err != nil {
		s.log.Error("stock release failed after return", "loan_id", loan.ID, "item_id", loan.ItemID, "err", err)
		return domain.Loan{}, err
	}

	s.publish(ctx, domain.EventLoanReturned, loan.ID, domain.LoanReturned{
		LoanID:       loan.ID,
		UserNombre:   loan.Usuario.Nombre,
		UserEmail:    loan.Usuario.Email,
		ItemNombre:   item.Nombre,
		Cantidad:     loan.Cantidad,
		FechaRetorno: now,
	})
	return loan, nil
}

// Defer keeps an Aprobado or Aplazado loan checked out under a new estimated
// return date. Stock is unaffected.
func (s *Service) Defer(ctx context.Context, id string, fechaEstimada time.Time) (domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if !loan.Active() {
		return domain.Loan{}, fmt.Errorf("%w: cannot defer from %s", domain.ErrInvalidState, loan.Estado)
	}
	if fechaEstimada.IsZero() {
		return domain.Loan{}, fmt.Errorf("%w: fecha_estimada is required", domain.ErrValidation)
	}

	item, err := s.stock.Item(ctx, loan.ItemID)
	if err != nil {
		return domain.Loan{}, err
	}

	loan.Estado = domain.StatusAplazado
	loan.FechaEstimada = &fechaEstimada
	loan.UpdatedAt = s.now()
	if err := s.loans.Save(ctx, loan); err != nil {
		return domain.Loan{}, err
	}

	s.publish(ctx, domain.EventLoanDeferred, loan.ID, domain.LoanDeferred{
		LoanID:        loan.ID,
		UserNombre:    loan.Usuario.Nombre,
		UserEmail:     loan.Usuario.Email,
		ItemNombre:    item.Nombre,
		Cantidad:      loan.Cantidad,
		FechaEstimada: fechaEstimada,
	})
	return loan, nil
}

// Delete removes the loan record from any state. It deliberately does NOT
// restore stock for an Aprobado/Aplazado loan; a caller that wants the units
// back must issue an explicit Release. Flagged for product review, kept as
// the documented behavior.
func (s *Service) Delete(ctx context.Context, id string) (domain.Loan, error) {
	loan, err := s.loans.DeleteByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Active() {
		s.log.Warn("active loan deleted without stock restore",
			"loan_id", loan.ID, "item_id", loan.ItemID, "cantidad", loan.Cantidad)
	}
	return loan, nil
}

// Get fetches a single loan, enforcing the owner-or-admin rule.
func (s *Service) Get(ctx context.Context, caller domain.Identity, id string) (domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}
	if !CanView(caller, loan) {
		return domain.Loan{}, domain.ErrForbidden
	}
	return loan, nil
}

// List returns loans newest first, scoped to the caller unless admin, with an
// optional state filter.
func (s *Service) List(ctx context.Context, caller domain.Identity, estado *domain.LoanStatus) ([]domain.Loan, error) {
	q := ListScope(caller, LoanQuery{Estado: estado})
	return s.loans.Find(ctx, q)
}

// publish hands a lifecycle event to the pipeline. Failures are logged and
// swallowed: notification delivery never decides a transition's outcome.
func (s *Service) publish(ctx context.Context, eventType, loanID string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("lifecycle event marshal failed", "type", eventType, "loan_id", loanID, "err", err)
		return
	}
	if err := s.events.Publish(ctx, eventType, loanID, body); err != nil {
		s.log.Error("lifecycle event publish failed", "type", eventType, "loan_id", loanID, "err", err)
	}
}
