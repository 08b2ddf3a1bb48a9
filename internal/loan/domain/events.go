package domain

import "time"

// Lifecycle event types as they travel through the outbox and Kafka.
const (
	EventLoanCreated  = "LoanCreated"
	EventLoanApproved = "LoanApproved"
	EventLoanReturned = "LoanReturned"
	EventLoanDeferred = "LoanDeferred"
)

// Event payloads are self-contained so the notification service never has to
// query back into the loan store.

type LoanCreated struct {
	LoanID     string `json:"loan_id"`
	UserID     string `json:"user_id"`
	UserNombre string `json:"user_nombre"`
	UserEmail  string `json:"user_email"`
	ItemID     string `json:"item_id"`
	ItemNombre string `json:"item_nombre"`
	AulaNombre string `json:"aula_nombre"`
	Cantidad   int    `json:"cantidad"`
}

type LoanApproved struct {
	LoanID        string    `json:"loan_id"`
	UserNombre    string    `json:"user_nombre"`
	UserEmail     string    `json:"user_email"`
	ItemNombre    string    `json:"item_nombre"`
	Cantidad      int       `json:"cantidad"`
	FechaPrestamo time.Time `json:"fecha_prestamo"`
	FechaEstimada time.Time `json:"fecha_estimada"`
}

type LoanReturned struct {
	LoanID       string    `json:"loan_id"`
	UserNombre   string    `json:"user_nombre"`
	UserEmail    string    `json:"user_email"`
	ItemNombre   string    `json:"item_nombre"`
	Cantidad     int       `json:"cantidad"`
	FechaRetorno time.Time `json:"fecha_retorno"`
}

type LoanDeferred struct {
	LoanID        string    `json:"loan_id"`
	UserNombre    string    `json:"user_nombre"`
	UserEmail     string    `json:"user_email"`
	ItemNombre    string    `json:"item_nombre"`
	Cantidad      int       `json:"cantidad"`
	FechaEstimada time.Time `json:"fecha_estimada"`
}
