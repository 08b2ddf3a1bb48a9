package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	loandomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/retry"
)

const (
	sendAttempts = 3
	sendBackoff  = 2 * time.Second
)

// Sink turns lifecycle events into emails. Everything here is best-effort:
// a bad address is skipped with a warning, a dead SMTP provider exhausts the
// bounded retry and the message is dropped. Nothing ever flows back into the
// loan engine.
type Sink struct {
	log         *slog.Logger
	mailer      Mailer
	adminEmails []string
	attempts    int
	backoff     time.Duration
}

func NewSink(log *slog.Logger, mailer Mailer, adminEmails []string) *Sink {
	return &Sink{
		log:         log,
		mailer:      mailer,
		adminEmails: adminEmails,
		attempts:    sendAttempts,
		backoff:     sendBackoff,
	}
}

// OnLoanCreated notifies the administrators about a new pending request.
func (s *Sink) OnLoanCreated(ctx context.Context, ev loandomain.LoanCreated) error {
	body, err := render(tmplLoanCreated, ev)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Nueva solicitud de préstamo: %s", ev.ItemNombre)

	var lastErr error
	for _, admin := range s.adminEmails {
		if err := s.deliver(ctx, admin, subject, body); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// OnLoanApproved notifies the borrower.
func (s *Sink) OnLoanApproved(ctx context.Context, ev loandomain.LoanApproved) error {
	body, err := render(tmplLoanApproved, ev)
	if err != nil {
		return err
	}
	return s.deliver(ctx, ev.UserEmail, fmt.Sprintf("Préstamo aprobado: %s", ev.ItemNombre), body)
}

// OnLoanReturned notifies the borrower.
func (s *Sink) OnLoanReturned(ctx context.Context, ev loandomain.LoanReturned) error {
	body, err := render(tmplLoanReturned, ev)
	if err != nil {
		return err
	}
	return s.deliver(ctx, ev.UserEmail, fmt.Sprintf("Devolución registrada: %s", ev.ItemNombre), body)
}

// OnLoanDeferred notifies the borrower.
func (s *Sink) OnLoanDeferred(ctx context.Context, ev loandomain.LoanDeferred) error {
	body, err := render(tmplLoanDeferred, ev)
	if err != nil {
		return err
	}
	return s.deliver(ctx, ev.UserEmail, fmt.Sprintf("Préstamo aplazado: %s", ev.ItemNombre), body)
}

// deliver validates the address, then sends with bounded fixed-backoff retry.
// A missing or malformed address is not an error: skip it and warn.
func (s *Sink) deliver(ctx context.Context, to, subject, body string) error {
	if !ValidAddress(to) {
		s.log.Warn("recipient address missing or malformed, notification skipped", "to", to, "subject", subject)
		return nil
	}
	err := retry.Fixed(ctx, s.attempts, s.backoff, func(ctx context.Context) error {
		return s.mailer.Send(ctx, to, subject, body)
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	s.log.Info("notification sent", "to", to, "subject", subject)
	return nil
}

// ValidAddress does the minimal syntactic check the dispatch contract asks
// for: the address must contain an @.
func ValidAddress(addr string) bool {
	return strings.Contains(addr, "@")
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}
