package domain

import "time"

type LoanStatus string

// Estados del préstamo. The values match what the datastore persists.
const (
	StatusPendiente LoanStatus = "Pendiente"
	StatusAprobado  LoanStatus = "Aprobado"
	StatusRechazado LoanStatus = "Rechazado"
	StatusAplazado  LoanStatus = "Aplazado"
	StatusDevuelto  LoanStatus = "Devuelto"
)

const RoleAdmin = "Admin"

// Identity is the caller presented by the API gateway.
type Identity struct {
	ID   string
	Role string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Borrower is the usuario relation of a loan, resolved on read paths.
type Borrower struct {
	ID     string
	Nombre string
	Email  string
}

// Aula is the classroom/location the loan is requested for.
type Aula struct {
	ID     string
	Nombre string
}

type Loan struct {
	ID       string
	Usuario  Borrower
	ItemID   string
	Aula     Aula
	Cantidad int // cantidad_prestamo, fixed at creation
	Estado   LoanStatus

	FechaPrestamo *time.Time // set on approval
	FechaEstimada *time.Time // set on approval, moved on deferral
	FechaRetorno  *time.Time // set on return

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewLoan(id string, usuario Borrower, itemID string, aula Aula, cantidad int) Loan {
	now := time.Now().UTC()
	return Loan{
		ID:        id,
		Usuario:   usuario,
		ItemID:    itemID,
		Aula:      aula,
		Cantidad:  cantidad,
		Estado:    StatusPendiente,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active reports whether the loan currently holds reserved stock.
func (l Loan) Active() bool {
	return l.Estado == StatusAprobado || l.Estado == StatusAplazado
}
