package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
)

// ApprovalService defines the maker-checker operations used by ApprovalHandler.
type ApprovalService interface {
	Get(ctx context.Context, id string) (*domain.PendingTransaction, error)
	List(ctx context.Context, status domain.ApprovalStatus, limit, offset int) ([]domain.PendingTransaction, error)
	Approve(ctx context.Context, id string) (*domain.PendingTransaction, *domain.Transaction, error)
	Reject(ctx context.Context, id, reason string) (*domain.PendingTransaction, error)
}

// ApprovalHandler handles approval requests.
type ApprovalHandler struct {
	approvalUC ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC}
}

// List lists approval requests, pending ones by default.
func (h *ApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.ApprovalStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ApprovalPending
	}
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	pending, err := h.approvalUC.List(r.Context(), status, limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list approvals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(pending, dto.PendingFromDomain, limit, offset))
}

// Get retrieves an approval request.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.approvalUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get approval", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PendingFromDomain(p))
}

// Approve approves a request and completes its transaction.
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, tx, err := h.approvalUC.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to approve transaction", err)
		return
	}

	resp := dto.ApprovalDecisionResponse{Approval: dto.PendingFromDomain(p)}
	if tx != nil {
		t := dto.TransactionFromDomain(tx)
		resp.Transaction = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reject rejects a request with a reason.
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.approvalUC.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to reject transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalDecisionResponse{Approval: dto.PendingFromDomain(p)})
}
