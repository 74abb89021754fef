package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/liquidity"
	"github.com/iho/goremit/internal/usecase"
)

// LiquidityService defines the inter-agency transfer operations used by LiquidityHandler.
type LiquidityService interface {
	Initiate(ctx context.Context, input usecase.InitiateLiquidityInput) (*domain.LiquidityTransfer, error)
	Settle(ctx context.Context, id string) (*liquidity.Settlement, error)
	Fail(ctx context.Context, id, reason string) (*domain.LiquidityTransfer, error)
	Get(ctx context.Context, id string) (*domain.LiquidityTransfer, error)
	Balances(ctx context.Context, agencyID string) ([]domain.AgencyBalance, error)
}

// LiquidityHandler handles liquidity transfers between agencies.
type LiquidityHandler struct {
	liquidityUC LiquidityService
}

// NewLiquidityHandler creates a new LiquidityHandler.
func NewLiquidityHandler(liquidityUC LiquidityService) *LiquidityHandler {
	return &LiquidityHandler{liquidityUC: liquidityUC}
}

// Initiate records a pending liquidity transfer.
func (h *LiquidityHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req dto.InitiateLiquidityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.liquidityUC.Initiate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to initiate liquidity transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LiquidityFromDomain(t))
}

// Get retrieves a liquidity transfer.
func (h *LiquidityHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.liquidityUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get liquidity transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LiquidityFromDomain(t))
}

// Settle moves the funds of a pending transfer.
func (h *LiquidityHandler) Settle(w http.ResponseWriter, r *http.Request) {
	s, err := h.liquidityUC.Settle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to settle liquidity transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(s))
}

// Fail abandons a pending transfer.
func (h *LiquidityHandler) Fail(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.liquidityUC.Fail(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to fail liquidity transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LiquidityFromDomain(t))
}

// Balances lists an agency's liquidity per currency.
func (h *LiquidityHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.liquidityUC.Balances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(balances, dto.BalanceFromDomain, 0, 0))
}
