package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/cancellation"
	"github.com/iho/goremit/internal/usecase"
)

type cancellationServiceStub struct {
	canCancelFn func(ctx context.Context, transactionID string) (cancellation.Decision, error)
	cancelFn    func(ctx context.Context, input usecase.CancelInput) (*usecase.CancelResult, error)
	retryFn     func(ctx context.Context, id string) (*domain.Cancellation, error)
	getFn       func(ctx context.Context, id string) (*domain.Cancellation, error)
	unpostedFn  func(ctx context.Context, limit, offset int) ([]domain.Cancellation, error)
}

func (s *cancellationServiceStub) CanCancel(ctx context.Context, transactionID string) (cancellation.Decision, error) {
	return s.canCancelFn(ctx, transactionID)
}

func (s *cancellationServiceStub) Cancel(ctx context.Context, input usecase.CancelInput) (*usecase.CancelResult, error) {
	return s.cancelFn(ctx, input)
}

func (s *cancellationServiceStub) RetryPosting(ctx context.Context, id string) (*domain.Cancellation, error) {
	return s.retryFn(ctx, id)
}

func (s *cancellationServiceStub) Get(ctx context.Context, id string) (*domain.Cancellation, error) {
	return s.getFn(ctx, id)
}

func (s *cancellationServiceStub) ListUnposted(ctx context.Context, limit, offset int) ([]domain.Cancellation, error) {
	return s.unpostedFn(ctx, limit, offset)
}

func TestCancellationHandler_Eligibility(t *testing.T) {
	h := NewCancellationHandler(&cancellationServiceStub{
		canCancelFn: func(ctx context.Context, transactionID string) (cancellation.Decision, error) {
			return cancellation.Decision{Allowed: false, Reason: "cancellation window of 30m0s has expired"}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/transactions/{id}/cancellation-eligibility", "/transactions/tx-1/cancellation-eligibility", h.Eligibility, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[dto.DecisionResponse](t, rec)
	if resp.Allowed || resp.Reason == "" {
		t.Fatalf("expected refusal with reason, got %+v", resp)
	}
}

func TestCancellationHandler_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.CancellationStatus
		wantStatus int
	}{
		{"posted", domain.CancellationCompleted, http.StatusCreated},
		{"unposted", domain.CancellationCompletedUnposted, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.CancelInput
			h := NewCancellationHandler(&cancellationServiceStub{
				cancelFn: func(ctx context.Context, input usecase.CancelInput) (*usecase.CancelResult, error) {
					captured = input
					return &usecase.CancelResult{
						Cancellation: &domain.Cancellation{ID: "c-1", OriginalTransactionID: input.TransactionID, Status: tt.status},
						Reversal:     &domain.Transaction{ID: "tx-rev", ReversalOf: input.TransactionID},
					}, nil
				},
			})

			rec := serve(t, http.MethodPost, "/transactions/{id}/cancel", "/transactions/tx-1/cancel", h.Cancel, map[string]string{"reason": "customer request"})

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if captured.TransactionID != "tx-1" || captured.Reason != "customer request" {
				t.Fatalf("unexpected input: %+v", captured)
			}

			resp := decodeBody[dto.CancelResponse](t, rec)
			if resp.Reversal == nil || resp.Reversal.ReversalOf != "tx-1" {
				t.Fatalf("expected reversal of tx-1, got %+v", resp.Reversal)
			}
		})
	}
}

func TestCancellationHandler_Cancel_NotAllowed(t *testing.T) {
	h := NewCancellationHandler(&cancellationServiceStub{
		cancelFn: func(ctx context.Context, input usecase.CancelInput) (*usecase.CancelResult, error) {
			return nil, domain.ErrCancellationNotAllowed
		},
	})

	rec := serve(t, http.MethodPost, "/transactions/{id}/cancel", "/transactions/tx-1/cancel", h.Cancel, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCancellationHandler_RetryPosting(t *testing.T) {
	h := NewCancellationHandler(&cancellationServiceStub{
		retryFn: func(ctx context.Context, id string) (*domain.Cancellation, error) {
			if id == "c-done" {
				return nil, domain.ErrInvalidCancellationState
			}
			return &domain.Cancellation{ID: id, Status: domain.CancellationCompleted}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/cancellations/{id}/retry-posting", "/cancellations/c-1/retry-posting", h.RetryPosting, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, http.MethodPost, "/cancellations/{id}/retry-posting", "/cancellations/c-done/retry-posting", h.RetryPosting, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
