package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/cancellation"
	"github.com/iho/goremit/internal/usecase"
)

// CancellationService defines the cancellation operations used by CancellationHandler.
type CancellationService interface {
	CanCancel(ctx context.Context, transactionID string) (cancellation.Decision, error)
	Cancel(ctx context.Context, input usecase.CancelInput) (*usecase.CancelResult, error)
	RetryPosting(ctx context.Context, cancellationID string) (*domain.Cancellation, error)
	Get(ctx context.Context, id string) (*domain.Cancellation, error)
	ListUnposted(ctx context.Context, limit, offset int) ([]domain.Cancellation, error)
}

// CancellationHandler handles transaction cancellations.
type CancellationHandler struct {
	cancelUC CancellationService
}

// NewCancellationHandler creates a new CancellationHandler.
func NewCancellationHandler(cancelUC CancellationService) *CancellationHandler {
	return &CancellationHandler{cancelUC: cancelUC}
}

// Eligibility reports whether the caller may cancel a transaction now.
func (h *CancellationHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	decision, err := h.cancelUC.CanCancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to check cancellation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DecisionFromDomain(decision))
}

// Cancel cancels a completed transaction. A cancellation whose reversal
// entries could not be posted is still created and returned with 202.
func (h *CancellationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.cancelUC.Cancel(r.Context(), usecase.CancelInput{
		TransactionID: chi.URLParam(r, "id"),
		Reason:        req.Reason,
	})
	if err != nil {
		writeDomainError(w, "failed to cancel transaction", err)
		return
	}

	status := http.StatusCreated
	if result.Cancellation.Status == domain.CancellationCompletedUnposted {
		status = http.StatusAccepted
	}
	writeJSON(w, status, dto.CancelFromDomain(result))
}

// Get retrieves a cancellation.
func (h *CancellationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cancelUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get cancellation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CancellationFromDomain(c))
}

// ListUnposted lists cancellations whose reversal entries are missing.
func (h *CancellationHandler) ListUnposted(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	list, err := h.cancelUC.ListUnposted(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list cancellations", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(list, dto.CancellationFromDomain, limit, offset))
}

// RetryPosting posts the reversal entries of an unposted cancellation.
func (h *CancellationHandler) RetryPosting(w http.ResponseWriter, r *http.Request) {
	c, err := h.cancelUC.RetryPosting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to post reversal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CancellationFromDomain(c))
}
