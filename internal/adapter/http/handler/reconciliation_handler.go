package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

// ReconciliationService defines the till operations used by ReconciliationHandler.
type ReconciliationService interface {
	RecordCashOperation(ctx context.Context, input usecase.CashOperationInput) (*domain.CashOperation, error)
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.ReconciliationEntry, error)
	Document(ctx context.Context, id, notes string) (*domain.ReconciliationEntry, error)
	Resolve(ctx context.Context, id string) (*domain.ReconciliationEntry, error)
	Report(ctx context.Context, filter domain.ReconciliationFilter) (domain.ReconciliationReport, error)
}

// ReconciliationHandler handles cash operations and till reconciliation.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// RecordCashOperation records a cash-in or cash-out at a till.
func (h *ReconciliationHandler) RecordCashOperation(w http.ResponseWriter, r *http.Request) {
	var req dto.CashOperationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	op, err := h.reconUC.RecordCashOperation(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record cash operation", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashOperationFromDomain(op))
}

// Create reconciles a till against counted cash.
func (h *ReconciliationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReconciliationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.reconUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to reconcile till", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReconciliationFromDomain(entry))
}

// Document records an explanation for an unresolved variance.
func (h *ReconciliationHandler) Document(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.reconUC.Document(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to document variance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(entry))
}

// Resolve marks a variance as settled.
func (h *ReconciliationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	entry, err := h.reconUC.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to resolve variance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(entry))
}

// Report summarizes reconciliation entries over a date range.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}

	q := r.URL.Query()
	query := dto.ReportQuery{
		AgencyID: q.Get("agency_id"),
		AgentID:  q.Get("agent_id"),
		Currency: domain.NormalizeCurrency(q.Get("currency")),
		From:     from,
		To:       to,
	}

	report, err := h.reconUC.Report(r.Context(), query.ToFilter())
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromDomain(report))
}
