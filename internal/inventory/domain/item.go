package domain

import (
	"errors"
	"time"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item is a physical inventory article. Disponible counts the units currently
// on the shelf; TotalStock counts every unit the school owns. The invariant
// 0 <= Disponible <= TotalStock must hold in every persisted state.
type Item struct {
	ID         string
	Nombre     string
	Disponible int
	TotalStock int
	UpdatedAt  time.Time
}
