package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/pricing"
	"github.com/iho/goremit/internal/usecase"
)

// TransactionService defines the pricing and booking operations used by TransactionHandler.
type TransactionService interface {
	Price(ctx context.Context, input usecase.PriceInput) (*pricing.Result, error)
	Submit(ctx context.Context, input usecase.SubmitTransactionInput) (*domain.Transaction, error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// Price prices a transaction without storing it.
func (h *TransactionHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req dto.PriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.txUC.Price(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to price transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PriceFromDomain(result))
}

// Submit books a transaction. A transaction held for approval is returned
// with 202 Accepted.
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.txUC.Submit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to submit transaction", err)
		return
	}

	status := http.StatusCreated
	if tx.Status == domain.TransactionPendingApproval {
		status = http.StatusAccepted
	}
	writeJSON(w, status, dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.txUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// List lists transactions filtered by agency, agent, currency and status.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		AgencyID: q.Get("agency_id"),
		AgentID:  q.Get("agent_id"),
		Currency: domain.NormalizeCurrency(q.Get("currency")),
		Status:   domain.TransactionStatus(q.Get("status")),
		Limit:    parseIntQuery(r, "limit", 50),
		Offset:   parseIntQuery(r, "offset", 0),
	}

	txs, err := h.txUC.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(txs, dto.TransactionFromDomain, filter.Limit, filter.Offset))
}
