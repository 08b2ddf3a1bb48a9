package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	invdomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/application"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
)

// Handler exposes the loan lifecycle over HTTP. Authentication lives in the
// gateway; the caller arrives as X-User-ID / X-User-Role headers.
type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("loan-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/prestamos", h.createLoan)
	r.Get("/prestamos", h.listLoans)
	r.Get("/prestamos/{id}", h.getLoan)
	r.Post("/prestamos/{id}/aprobar", h.approveLoan)
	r.Post("/prestamos/{id}/rechazar", h.rejectLoan)
	r.Post("/prestamos/{id}/devolver", h.returnLoan)
	r.Post("/prestamos/{id}/aplazar", h.deferLoan)
	r.Delete("/prestamos/{id}", h.deleteLoan)
	return r
}

func identityFrom(r *http.Request) domain.Identity {
	return domain.Identity{
		ID:   r.Header.Get("X-User-ID"),
		Role: r.Header.Get("X-User-Role"),
	}
}

type createLoanReq struct {
	ItemID   string `json:"item_id"`
	AulaID   string `json:"aula_id"`
	Cantidad int    `json:"cantidad_prestamo"`
}

type fechaReq struct {
	FechaEstimada *time.Time `json:"fecha_estimada"`
}

type loanResponse struct {
	ID            string     `json:"id"`
	UsuarioID     string     `json:"usuario_id"`
	UsuarioNombre string     `json:"usuario_nombre,omitempty"`
	ItemID        string     `json:"item_id"`
	AulaID        string     `json:"aula_id"`
	AulaNombre    string     `json:"aula_nombre,omitempty"`
	Cantidad      int        `json:"cantidad_prestamo"`
	Estado        string     `json:"estado"`
	FechaPrestamo *time.Time `json:"fecha_prestamo,omitempty"`
	FechaEstimada *time.Time `json:"fecha_estimada,omitempty"`
	FechaRetorno  *time.Time `json:"fecha_retorno,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toResponse(l domain.Loan) loanResponse {
	return loanResponse{
		ID:            l.ID,
		UsuarioID:     l.Usuario.ID,
		UsuarioNombre: l.Usuario.Nombre,
		ItemID:        l.ItemID,
		AulaID:        l.Aula.ID,
		AulaNombre:    l.Aula.Nombre,
		Cantidad:      l.Cantidad,
		Estado:        string(l.Estado),
		FechaPrestamo: l.FechaPrestamo,
		FechaEstimada: l.FechaEstimada,
		FechaRetorno:  l.FechaRetorno,
		CreatedAt:     l.CreatedAt,
	}
}

func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateLoan")
	defer span.End()

	caller := identityFrom(r)
	var req createLoanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	loan, err := h.service.Create(ctx, application.CreateLoanInput{
		UserID:   caller.ID,
		ItemID:   req.ItemID,
		AulaID:   req.AulaID,
		Cantidad: req.Cantidad,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toResponse(loan))
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetLoan")
	defer span.End()

	loan, err := h.service.Get(ctx, identityFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListLoans")
	defer span.End()

	var estado *domain.LoanStatus
	if raw := r.URL.Query().Get("estado"); raw != "" {
		st := domain.LoanStatus(raw)
		estado = &st
	}

	loans, err := h.service.List(ctx, identityFrom(r), estado)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toResponse(l))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) approveLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ApproveLoan")
	defer span.End()

	var req fechaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	var fecha time.Time
	if req.FechaEstimada != nil {
		fecha = *req.FechaEstimada
	}

	loan, err := h.service.Approve(ctx, chi.URLParam(r, "id"), fecha)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RejectLoan")
	defer span.End()

	loan, err := h.service.Reject(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) returnLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReturnLoan")
	defer span.End()

	loan, err := h.service.Return(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) deferLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeferLoan")
	defer span.End()

	var req fechaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	var fecha time.Time
	if req.FechaEstimada != nil {
		fecha = *req.FechaEstimada
	}

	loan, err := h.service.Defer(ctx, chi.URLParam(r, "id"), fecha)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteLoan")
	defer span.End()

	loan, err := h.service.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(loan))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("response encode failed", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrLoanNotFound), errors.Is(err, invdomain.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, invdomain.ErrInsufficientStock):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
