package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

type ledgerServiceStub struct {
	entriesFn      func(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
	agencyFn       func(ctx context.Context, agencyID string) (domain.AgencyLedger, error)
	consolidatedFn func(ctx context.Context) (domain.ConsolidatedLedger, error)
	consistencyFn  func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *ledgerServiceStub) EntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	return s.entriesFn(ctx, transactionID)
}

func (s *ledgerServiceStub) AgencyLedger(ctx context.Context, agencyID string) (domain.AgencyLedger, error) {
	return s.agencyFn(ctx, agencyID)
}

func (s *ledgerServiceStub) Consolidated(ctx context.Context) (domain.ConsolidatedLedger, error) {
	return s.consolidatedFn(ctx)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}

func TestLedgerHandler_Entries(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		entriesFn: func(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
			return []domain.LedgerEntry{
				{ID: "e-1", TransactionID: transactionID, AccountCode: domain.AccountCodeCash, DebitAmount: decimal.NewFromInt(100)},
				{ID: "e-2", TransactionID: transactionID, AccountCode: domain.AccountCodeFXClearing, CreditAmount: decimal.NewFromInt(100)},
			}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/transactions/{id}/entries", "/transactions/tx-1/entries", h.Entries, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody[dto.ListResponse[dto.EntryResponse]](t, rec)
	if len(resp.Items) != 2 || resp.Items[1].AccountCode != domain.AccountCodeFXClearing {
		t.Fatalf("unexpected entries: %+v", resp.Items)
	}
}

func TestLedgerHandler_Consolidated(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		consolidatedFn: func(ctx context.Context) (domain.ConsolidatedLedger, error) {
			return domain.ConsolidatedLedger{
				Balances:    map[string]domain.CurrencyBalance{"USD": {Currency: "USD", NetPosition: decimal.NewFromInt(40)}},
				AgencyCount: 3,
				GeneratedAt: time.Now(),
			}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/ledger/consolidated", "/ledger/consolidated", h.Consolidated, nil)
	resp := decodeBody[dto.ConsolidatedLedgerResponse](t, rec)
	if resp.AgencyCount != 3 || len(resp.Balances) != 1 {
		t.Fatalf("unexpected consolidated ledger: %+v", resp)
	}
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		h := NewLedgerHandler(&ledgerServiceStub{
			consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
				return &usecase.ConsistencyReport{Balanced: true}, nil
			},
		})

		rec := serve(t, http.MethodGet, "/ledger/consistency", "/ledger/consistency", h.CheckConsistency, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unbalanced reports totals with 409", func(t *testing.T) {
		h := NewLedgerHandler(&ledgerServiceStub{
			consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
				return &usecase.ConsistencyReport{
					Balanced: false,
					Totals: []usecase.CurrencyTotals{
						{Currency: "EUR", Debits: decimal.NewFromInt(10), Credits: decimal.NewFromInt(9)},
					},
				}, usecase.ErrInconsistentLedger
			},
		})

		rec := serve(t, http.MethodGet, "/ledger/consistency", "/ledger/consistency", h.CheckConsistency, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}

		resp := decodeBody[usecase.ConsistencyReport](t, rec)
		if resp.Balanced || len(resp.Totals) != 1 {
			t.Fatalf("unexpected report: %+v", resp)
		}
	})
}
