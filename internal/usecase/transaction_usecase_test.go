package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/ledger"
	"github.com/iho/goremit/internal/usecase"
	"github.com/iho/goremit/internal/usecase/gomocks"
)

func TestTransactionUseCase_SubmitCompletesAndPosts(t *testing.T) {
	w := newWorld(t)
	ctx := as(domain.RoleAgent, "agent-1", "agency-1")

	tx, err := w.transactions.Submit(ctx, submitInput("100"))
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionCompleted, tx.Status)
	assert.NotNil(t, tx.CompletedAt)
	assert.Equal(t, "agent-1", tx.CreatedBy)
	assert.Equal(t, "109", tx.ConvertedAmount.String())
	assert.Equal(t, "3", tx.Commission.String())
	assert.Equal(t, "2.5", tx.Fees.String())
	assert.Equal(t, "tier-1", tx.CommissionTierID)

	entries, err := w.ledger.EntriesByTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
	assert.NoError(t, ledger.CheckBalanced(entries))

	assert.Equal(t, []string{domain.EventTypeTransactionCompleted}, w.outbox.EventTypes())
	assert.Equal(t, 1, w.txMgr.Commits)

	logs, err := w.audit.GetByResourceID(context.Background(), domain.AggregateTypeTransaction, tx.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "agent-1", logs[0].UserID)
}

func TestTransactionUseCase_SubmitAboveThresholdWaitsForApproval(t *testing.T) {
	w := newWorld(t)
	_, err := w.settings.CreateApprovalRule(context.Background(), usecase.CreateApprovalRuleInput{
		Name:      "large EUR",
		Currency:  "EUR",
		MaxAmount: d("5000"),
	})
	require.NoError(t, err)

	tx, err := w.transactions.Submit(as(domain.RoleAgent, "agent-1", "agency-1"), submitInput("7500"))
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionPendingApproval, tx.Status)
	assert.Nil(t, tx.CompletedAt)

	entries, err := w.ledger.EntriesByTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	pending, err := w.approvalsUC.List(context.Background(), domain.ApprovalPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tx.ID, pending[0].TransactionID)
	assert.Equal(t, "agent-1", pending[0].RequestedBy)
	assert.Contains(t, w.outbox.EventTypes(), domain.EventTypeTransactionPendingApproval)
}

func TestTransactionUseCase_AnonymousSubmitAboveThreshold(t *testing.T) {
	w := newWorld(t)
	_, err := w.settings.CreateApprovalRule(context.Background(), usecase.CreateApprovalRuleInput{
		Name:      "large EUR",
		Currency:  "EUR",
		MaxAmount: d("5000"),
	})
	require.NoError(t, err)
	commits := w.txMgr.Commits

	_, err = w.transactions.Submit(context.Background(), submitInput("7500"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	pending, err := w.approvalsUC.List(context.Background(), domain.ApprovalPending, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, commits, w.txMgr.Commits)
}

func TestTransactionUseCase_SubmitAtThresholdDoesNotNeedApproval(t *testing.T) {
	w := newWorld(t)
	_, err := w.settings.CreateApprovalRule(context.Background(), usecase.CreateApprovalRuleInput{
		Name:      "large",
		MaxAmount: d("5000"),
	})
	require.NoError(t, err)

	tx, err := w.transactions.Submit(context.Background(), submitInput("5000"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCompleted, tx.Status)
}

func TestTransactionUseCase_SubmitErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usecase.SubmitTransactionInput)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing rate",
			mutate: func(in *usecase.SubmitTransactionInput) { in.ToCurrency = "XOF" },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrRateNotFound)
			},
		},
		{
			name:   "missing agent",
			mutate: func(in *usecase.SubmitTransactionInput) { in.AgentID = "" },
			check: func(t *testing.T, err error) {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "agent_id", verr.Fields[0].Field)
			},
		},
		{
			name:   "zero amount",
			mutate: func(in *usecase.SubmitTransactionInput) { in.Amount = d("0") },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrValidation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			in := submitInput("100")
			tt.mutate(&in)

			tx, err := w.transactions.Submit(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, tx)
			tt.check(t, err)
			assert.Empty(t, w.outbox.EventTypes())
		})
	}
}

func TestTransactionUseCase_SubmitRollsBackOnStorageError(t *testing.T) {
	w := newWorld(t)
	w.entries.CreateBatchFunc = func(ctx context.Context, tx usecase.Transaction, entries []domain.LedgerEntry) error {
		return errors.New("disk full")
	}

	_, err := w.transactions.Submit(context.Background(), submitInput("100"))
	require.EqualError(t, err, "disk full")
	assert.Equal(t, 0, w.txMgr.Commits)
}

func TestTransactionUseCase_PriceDoesNotPersist(t *testing.T) {
	w := newWorld(t)

	res, err := w.transactions.Price(context.Background(), submitInput("100").PriceInput)
	require.NoError(t, err)
	assert.Equal(t, "103.01", res.FinalAmount.String())

	list, err := w.transactions.List(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransactionUseCase_GetDelegatesToRepository(t *testing.T) {
	ctrl := gomock.NewController(t)

	txRepo := gomocks.NewMockTransactionRepository(ctrl)
	txRepo.EXPECT().GetByID(gomock.Any(), "tx-404").Return(nil, domain.ErrTransactionNotFound)

	uc := usecase.NewTransactionUseCase(nil, nil, txRepo, nil, nil, nil, nil, nil, nil, zerolog.Nop(), nil)

	_, err := uc.Get(context.Background(), "tx-404")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
