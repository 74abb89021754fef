package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

// LedgerService defines the ledger queries used by LedgerHandler.
type LedgerService interface {
	EntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
	AgencyLedger(ctx context.Context, agencyID string) (domain.AgencyLedger, error)
	Consolidated(ctx context.Context) (domain.ConsolidatedLedger, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger queries.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Entries lists the ledger entries of a transaction.
func (h *LedgerHandler) Entries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledgerUC.EntriesByTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(entries, dto.EntryFromDomain, 0, 0))
}

// Agency returns an agency's per-currency position.
func (h *LedgerHandler) Agency(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledgerUC.AgencyLedger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to load agency ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AgencyLedgerFromDomain(l))
}

// Consolidated returns the position summed over every agency.
func (h *LedgerHandler) Consolidated(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledgerUC.Consolidated(r.Context())
	if err != nil {
		writeDomainError(w, "failed to consolidate ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsolidatedFromDomain(l))
}

// CheckConsistency checks that debits equal credits in every currency.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, report)
			return
		}
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
