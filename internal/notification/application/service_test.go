package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loandomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failures int // fail this many sends before succeeding
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("rate limited")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newSink(mailer Mailer, admins ...string) *Sink {
	s := NewSink(slog.New(slog.NewTextHandler(io.Discard, nil)), mailer, admins)
	s.backoff = time.Millisecond
	return s
}

var approvedEvent = loandomain.LoanApproved{
	LoanID:        "loan-1",
	UserNombre:    "Julián Pérez",
	UserEmail:     "jperez@colegio.edu.co",
	ItemNombre:    "Proyector portátil",
	Cantidad:      1,
	FechaPrestamo: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	FechaEstimada: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
}

func TestOnLoanApproved_SendsToBorrower(t *testing.T) {
	mailer := &fakeMailer{}
	sink := newSink(mailer)

	err := sink.OnLoanApproved(context.Background(), approvedEvent)

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jperez@colegio.edu.co", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "Proyector portátil")
	assert.Contains(t, mailer.sent[0].body, "Julián Pérez")
	assert.Contains(t, mailer.sent[0].body, "15/03/2026")
}

func TestOnLoanApproved_MalformedAddressSkippedSilently(t *testing.T) {
	mailer := &fakeMailer{}
	sink := newSink(mailer)

	ev := approvedEvent
	ev.UserEmail = "not-an-address"
	err := sink.OnLoanApproved(context.Background(), ev)

	assert.NoError(t, err, "a bad address is skipped, never an error")
	assert.Empty(t, mailer.sent)
}

func TestOnLoanApproved_RetriesTransientFailures(t *testing.T) {
	mailer := &fakeMailer{failures: 2}
	sink := newSink(mailer)

	err := sink.OnLoanApproved(context.Background(), approvedEvent)

	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestOnLoanApproved_GivesUpAfterBoundedRetries(t *testing.T) {
	mailer := &fakeMailer{failures: sendAttempts}
	sink := newSink(mailer)

	err := sink.OnLoanApproved(context.Background(), approvedEvent)

	assert.Error(t, err)
	assert.Empty(t, mailer.sent)
}

func TestOnLoanCreated_NotifiesEveryAdmin(t *testing.T) {
	mailer := &fakeMailer{}
	sink := newSink(mailer, "coordinacion@colegio.edu.co", "rector@colegio.edu.co")

	err := sink.OnLoanCreated(context.Background(), loandomain.LoanCreated{
		LoanID:     "loan-1",
		UserNombre: "Julián Pérez",
		ItemNombre: "Microscopio óptico",
		AulaNombre: "Laboratorio 301",
		Cantidad:   1,
	})

	require.NoError(t, err)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "coordinacion@colegio.edu.co", mailer.sent[0].to)
	assert.Equal(t, "rector@colegio.edu.co", mailer.sent[1].to)
	assert.Contains(t, mailer.sent[0].body, "Laboratorio 301")
}

func TestOnLoanReturned_And_Deferred(t *testing.T) {
	mailer := &fakeMailer{}
	sink := newSink(mailer)

	err := sink.OnLoanReturned(context.Background(), loandomain.LoanReturned{
		UserNombre:   "Julián Pérez",
		UserEmail:    "jperez@colegio.edu.co",
		ItemNombre:   "Proyector",
		Cantidad:     1,
		FechaRetorno: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = sink.OnLoanDeferred(context.Background(), loandomain.LoanDeferred{
		UserNombre:    "Julián Pérez",
		UserEmail:     "jperez@colegio.edu.co",
		ItemNombre:    "Proyector",
		Cantidad:      1,
		FechaEstimada: time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].body, "devolución")
	assert.Contains(t, mailer.sent[1].body, "29/03/2026")
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("a@b"))
	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("nope"))
}
