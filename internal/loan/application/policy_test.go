package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
)

func TestCanView(t *testing.T) {
	loan := domain.Loan{Usuario: domain.Borrower{ID: "user-jperez"}}

	assert.True(t, CanView(domain.Identity{ID: "user-jperez"}, loan))
	assert.True(t, CanView(domain.Identity{ID: "someone-else", Role: domain.RoleAdmin}, loan))
	assert.False(t, CanView(domain.Identity{ID: "someone-else"}, loan))
	assert.False(t, CanView(domain.Identity{ID: "someone-else", Role: "Docente"}, loan))
}

func TestListScope(t *testing.T) {
	estado := domain.StatusPendiente

	q := ListScope(domain.Identity{ID: "user-jperez"}, LoanQuery{Estado: &estado})
	assert.Equal(t, "user-jperez", q.UserID)
	assert.Equal(t, &estado, q.Estado)

	q = ListScope(domain.Identity{ID: "user-admin", Role: domain.RoleAdmin}, LoanQuery{})
	assert.Empty(t, q.UserID)
}
