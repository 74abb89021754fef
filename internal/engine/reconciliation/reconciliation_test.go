package reconciliation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goremit/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)

func scenario() ([]domain.Transaction, []domain.CashOperation) {
	txs := []domain.Transaction{
		{ID: "tx1", AgentID: "agt-1", Amount: d("100"), Fees: d("2.50"), FromCurrency: "EUR", ToCurrency: "USD", ConvertedAmount: d("109"), Status: domain.TransactionCompleted},
		{ID: "tx-other-agent", AgentID: "agt-2", Amount: d("50"), FromCurrency: "EUR", ToCurrency: "USD", ConvertedAmount: d("54"), Status: domain.TransactionCompleted},
		{ID: "tx-pending", AgentID: "agt-1", Amount: d("70"), FromCurrency: "EUR", ToCurrency: "USD", ConvertedAmount: d("75"), Status: domain.TransactionPendingApproval},
	}
	ops := []domain.CashOperation{
		{ID: "op1", AgentID: "agt-1", TillID: "till-1", Type: domain.CashIn, Currency: "EUR", Amount: d("500")},
		{ID: "op-other-till", AgentID: "agt-1", TillID: "till-2", Type: domain.CashIn, Currency: "EUR", Amount: d("900")},
	}
	return txs, ops
}

func TestBuildEntryScenario(t *testing.T) {
	t.Parallel()
	txs, ops := scenario()

	e, err := BuildEntry(Input{ID: "rec1", AgentID: "agt-1", TillID: "till-1", Currency: "eur", ActualCash: d("602")}, txs, ops, now)
	require.NoError(t, err)

	assert.Equal(t, "397.5", e.TheoreticalBalance.String())
	assert.Equal(t, "204.5", e.Variance.String())
	assert.Equal(t, domain.ReconciliationUnresolved, e.Status)
	assert.Equal(t, 1, e.TransactionCount)
	assert.Equal(t, 1, e.CashOperationCount)
	assert.Equal(t, "EUR", e.Currency)
}

func TestBuildEntryCreditsDestinationCurrency(t *testing.T) {
	t.Parallel()
	txs, ops := scenario()

	e, err := BuildEntry(Input{AgentID: "agt-1", TillID: "till-1", Currency: "USD", ActualCash: d("109")}, txs, ops, now)
	require.NoError(t, err)
	assert.Equal(t, "109", e.TheoreticalBalance.String())
	assert.Equal(t, domain.ReconciliationBalanced, e.Status)
}

func TestBuildEntryToleranceBoundary(t *testing.T) {
	t.Parallel()

	ops := []domain.CashOperation{{AgentID: "a", TillID: "t", Type: domain.CashIn, Currency: "EUR", Amount: d("100")}}

	tests := []struct {
		actual string
		want   domain.ReconciliationStatus
	}{
		{"100.01", domain.ReconciliationBalanced},
		{"99.99", domain.ReconciliationBalanced},
		{"100.011", domain.ReconciliationUnresolved},
		{"99.989", domain.ReconciliationUnresolved},
	}

	for _, tt := range tests {
		e, err := BuildEntry(Input{AgentID: "a", TillID: "t", Currency: "EUR", ActualCash: d(tt.actual)}, nil, ops, now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, e.Status, "actual %s", tt.actual)
	}
}

func TestBuildEntryValidation(t *testing.T) {
	t.Parallel()

	_, err := BuildEntry(Input{Currency: "EUR", ActualCash: d("-1")}, nil, nil, now)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"agent_id", "till_id", "actual_cash"}, fields)
}

func TestReviewTransitions(t *testing.T) {
	t.Parallel()

	e := &domain.ReconciliationEntry{ID: "rec1", Status: domain.ReconciliationUnresolved}

	_, err := Resolve(e, "sup-1", now)
	assert.ErrorIs(t, err, domain.ErrInvalidReconciliationTransition, "cannot skip documentation")

	_, err = Document(e, "sup-1", "short", now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Document(e, "sup-1", "écarté", now)
	assert.ErrorIs(t, err, domain.ErrValidation, "six characters are too few whatever the byte count")

	doc, err := Document(e, "sup-1", "Counted twice, coin bag missing", now)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconciliationDocumented, doc.Status)
	assert.Equal(t, domain.ReconciliationUnresolved, e.Status, "input must not change")

	res, err := Resolve(doc, "mgr-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconciliationBalanced, res.Status)

	_, err = Document(res, "sup-1", "Trying to regress the entry", now)
	assert.ErrorIs(t, err, domain.ErrInvalidReconciliationTransition)
}

func TestStatsAndReport(t *testing.T) {
	t.Parallel()

	entries := []domain.ReconciliationEntry{
		{AgencyID: "ag1", Variance: d("0"), Status: domain.ReconciliationBalanced, CreatedAt: now},
		{AgencyID: "ag1", Variance: d("-10"), Status: domain.ReconciliationUnresolved, CreatedAt: now},
		{AgencyID: "ag1", Variance: d("20"), Status: domain.ReconciliationDocumented, CreatedAt: now},
		{AgencyID: "ag2", Variance: d("500"), Status: domain.ReconciliationUnresolved, CreatedAt: now},
		{AgencyID: "ag1", Variance: d("1"), Status: domain.ReconciliationUnresolved, CreatedAt: now.Add(-48 * time.Hour)},
	}

	s := Stats(entries[:3])
	assert.Equal(t, 3, s.TotalEntries)
	assert.Equal(t, 1, s.BalancedEntries)
	assert.Equal(t, 2, s.VarianceEntries)
	assert.Equal(t, "10", s.AverageVariance.String())
	assert.Equal(t, "20", s.MaxVariance.String())

	r := BuildReport("ag1", now.Add(-time.Hour), now.Add(time.Hour), entries, now)
	assert.Len(t, r.Entries, 3)
	assert.Equal(t, 3, r.Stats.TotalEntries)

	empty := Stats(nil)
	assert.True(t, empty.AverageVariance.IsZero())
}
