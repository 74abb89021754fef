package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/ledger"
	"github.com/iho/goremit/internal/usecase"
)

// pendingCase submits a transaction above a 5000 EUR threshold and returns its approval case.
func pendingCase(t *testing.T, w *world) (*domain.Transaction, domain.PendingTransaction) {
	t.Helper()

	_, err := w.settings.CreateApprovalRule(context.Background(), usecase.CreateApprovalRuleInput{
		Name:      "large EUR",
		Currency:  "EUR",
		MaxAmount: d("5000"),
	})
	require.NoError(t, err)

	tx, err := w.transactions.Submit(as(domain.RoleAgent, "agent-1", "agency-1"), submitInput("7500"))
	require.NoError(t, err)
	require.Equal(t, domain.TransactionPendingApproval, tx.Status)

	pending, err := w.approvalsUC.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	return tx, pending[0]
}

func TestApprovalUseCase_ApproveCompletesAndPosts(t *testing.T) {
	w := newWorld(t)
	submitted, p := pendingCase(t, w)

	decided, tx, err := w.approvalsUC.Approve(as(domain.RoleSupervisor, "super-1", "agency-1"), p.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalApproved, decided.Status)
	assert.Equal(t, "super-1", decided.ApprovedBy)
	assert.NotNil(t, decided.TreatedAt)

	assert.Equal(t, domain.TransactionCompleted, tx.Status)
	assert.True(t, submitted.ConvertedAmount.Equal(tx.ConvertedAmount), "approval keeps the submitted pricing")

	entries, err := w.ledger.EntriesByTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
	assert.NoError(t, ledger.CheckBalanced(entries))

	types := w.outbox.EventTypes()
	assert.Contains(t, types, domain.EventTypeApprovalApproved)
	assert.Contains(t, types, domain.EventTypeTransactionCompleted)

	_, _, err = w.approvalsUC.Approve(as(domain.RoleManager, "manager-1", ""), p.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyTreated)
}

func TestApprovalUseCase_RejectsSelfApproval(t *testing.T) {
	w := newWorld(t)
	_, p := pendingCase(t, w)

	_, _, err := w.approvalsUC.Approve(as(domain.RoleSupervisor, "agent-1", "agency-1"), p.ID)
	assert.ErrorIs(t, err, domain.ErrSelfApproval)

	stored, err := w.approvalsUC.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, stored.Status)
}

func TestApprovalUseCase_CheckerRole(t *testing.T) {
	w := newWorld(t)
	_, p := pendingCase(t, w)

	_, _, err := w.approvalsUC.Approve(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = w.approvalsUC.Approve(as(domain.RoleAgent, "agent-2", "agency-1"), p.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = w.approvalsUC.Reject(as(domain.RoleAgent, "agent-2", "agency-1"), p.ID, "not allowed")
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestApprovalUseCase_Reject(t *testing.T) {
	w := newWorld(t)
	submitted, p := pendingCase(t, w)
	ctx := as(domain.RoleManager, "manager-1", "")

	_, err := w.approvalsUC.Reject(ctx, p.ID, "no")
	assert.ErrorIs(t, err, domain.ErrValidation)

	decided, err := w.approvalsUC.Reject(ctx, p.ID, "  missing KYC documents ")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, decided.Status)
	assert.Equal(t, "missing KYC documents", decided.RejectionReason)

	tx, err := w.transactions.Get(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRejected, tx.Status)

	entries, err := w.ledger.EntriesByTransaction(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, w.outbox.EventTypes(), domain.EventTypeApprovalRejected)
}

func TestApprovalUseCase_UnknownCase(t *testing.T) {
	w := newWorld(t)

	_, _, err := w.approvalsUC.Approve(as(domain.RoleManager, "manager-1", ""), "nope")
	assert.ErrorIs(t, err, domain.ErrApprovalNotFound)
}
