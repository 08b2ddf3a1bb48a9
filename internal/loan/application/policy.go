package application

import "github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"

// CanView allows a read when the caller is an admin or owns the loan.
func CanView(caller domain.Identity, loan domain.Loan) bool {
	return caller.IsAdmin() || caller.ID == loan.Usuario.ID
}

// ListScope restricts a listing to the caller's own loans unless the caller
// is an admin.
func ListScope(caller domain.Identity, q LoanQuery) LoanQuery {
	if !caller.IsAdmin() {
		q.UserID = caller.ID
	}
	return q
}
