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

type reconciliationServiceStub struct {
	cashFn     func(ctx context.Context, input usecase.CashOperationInput) (*domain.CashOperation, error)
	createFn   func(ctx context.Context, input usecase.CreateEntryInput) (*domain.ReconciliationEntry, error)
	documentFn func(ctx context.Context, id, notes string) (*domain.ReconciliationEntry, error)
	resolveFn  func(ctx context.Context, id string) (*domain.ReconciliationEntry, error)
	reportFn   func(ctx context.Context, filter domain.ReconciliationFilter) (domain.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) RecordCashOperation(ctx context.Context, input usecase.CashOperationInput) (*domain.CashOperation, error) {
	return s.cashFn(ctx, input)
}

func (s *reconciliationServiceStub) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.ReconciliationEntry, error) {
	return s.createFn(ctx, input)
}

func (s *reconciliationServiceStub) Document(ctx context.Context, id, notes string) (*domain.ReconciliationEntry, error) {
	return s.documentFn(ctx, id, notes)
}

func (s *reconciliationServiceStub) Resolve(ctx context.Context, id string) (*domain.ReconciliationEntry, error) {
	return s.resolveFn(ctx, id)
}

func (s *reconciliationServiceStub) Report(ctx context.Context, filter domain.ReconciliationFilter) (domain.ReconciliationReport, error) {
	return s.reportFn(ctx, filter)
}

func TestReconciliationHandler_RecordCashOperation(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		cashFn: func(ctx context.Context, input usecase.CashOperationInput) (*domain.CashOperation, error) {
			return &domain.CashOperation{ID: "op-1", Type: input.Type, Amount: input.Amount, Currency: input.Currency}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/cash-operations", "/cash-operations", h.RecordCashOperation, map[string]string{
		"agency_id": "ag-1", "agent_id": "agent-1", "till_id": "till-1",
		"type": "cash_in", "currency": "XOF", "amount": "50000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, http.MethodPost, "/cash-operations", "/cash-operations", h.RecordCashOperation, map[string]string{
		"agency_id": "ag-1", "agent_id": "agent-1", "till_id": "till-1",
		"type": "deposit", "currency": "XOF", "amount": "50000",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Create(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.ReconciliationEntry, error) {
			theoretical := decimal.NewFromInt(1000)
			return &domain.ReconciliationEntry{
				ID:                 "rec-1",
				TheoreticalBalance: theoretical,
				ActualCash:         input.ActualCash,
				Variance:           input.ActualCash.Sub(theoretical),
				Status:             domain.ReconciliationUnresolved,
			}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/reconciliations", "/reconciliations", h.Create, map[string]string{
		"agency_id": "ag-1", "agent_id": "agent-1", "till_id": "till-1", "currency": "USD", "actual_cash": "990",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[dto.ReconciliationResponse](t, rec)
	if !resp.Variance.Equal(decimal.NewFromInt(-10)) || resp.Status != domain.ReconciliationUnresolved {
		t.Fatalf("unexpected entry: %+v", resp)
	}
}

func TestReconciliationHandler_Resolve_InvalidTransition(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		resolveFn: func(ctx context.Context, id string) (*domain.ReconciliationEntry, error) {
			return nil, domain.ErrInvalidReconciliationTransition
		},
	})

	rec := serve(t, http.MethodPost, "/reconciliations/{id}/resolve", "/reconciliations/rec-1/resolve", h.Resolve, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Document(t *testing.T) {
	var gotNotes string
	h := NewReconciliationHandler(&reconciliationServiceStub{
		documentFn: func(ctx context.Context, id, notes string) (*domain.ReconciliationEntry, error) {
			gotNotes = notes
			return &domain.ReconciliationEntry{ID: id, Status: domain.ReconciliationDocumented, Notes: notes}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/reconciliations/{id}/document", "/reconciliations/rec-1/document", h.Document, map[string]string{"reason": "counting error"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotNotes != "counting error" {
		t.Fatalf("expected notes to pass through, got %q", gotNotes)
	}
}

func TestReconciliationHandler_Report(t *testing.T) {
	var captured domain.ReconciliationFilter
	h := NewReconciliationHandler(&reconciliationServiceStub{
		reportFn: func(ctx context.Context, filter domain.ReconciliationFilter) (domain.ReconciliationReport, error) {
			captured = filter
			return domain.ReconciliationReport{
				AgencyID: filter.AgencyID,
				From:     filter.From,
				To:       filter.To,
				Stats:    domain.ReconciliationStats{TotalEntries: 2, BalancedEntries: 1, VarianceEntries: 1},
			}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/reconciliations/report", "/reconciliations/report?agency_id=ag-1&currency=eur&from=2024-01-01&to=2024-01-31", h.Report, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Currency != "EUR" || !captured.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected filter: %+v", captured)
	}

	resp := decodeBody[dto.ReportResponse](t, rec)
	if resp.Stats.TotalEntries != 2 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}

	rec = serve(t, http.MethodGet, "/reconciliations/report", "/reconciliations/report?from=last-week", h.Report, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}
