// Package reconciliation compares a till's theoretical cash position with
// physically counted cash.
package reconciliation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// Input identifies the till being counted and the counted amount.
type Input struct {
	ID         string          `json:"id"`
	AgencyID   string          `json:"agency_id"`
	AgentID    string          `json:"agent_id" validate:"required"`
	TillID     string          `json:"till_id" validate:"required"`
	Currency   string          `json:"currency" validate:"required,currency"`
	ActualCash decimal.Decimal `json:"actual_cash"`
}

// Counts reports whether a transaction moved cash at the till.
func counts(tx *domain.Transaction) bool {
	return tx.Status == domain.TransactionCompleted || tx.Status == domain.TransactionCancelled
}

// BuildEntry computes the theoretical balance of the agent's till in one
// currency and classifies the variance against actual cash.
//
// Transactions are matched on agent and currency; cash operations on agent,
// till and currency. A transaction whose source currency matches is a debit
// of amount+fees; one whose destination currency matches is a credit of the
// converted amount.
func BuildEntry(in Input, txs []domain.Transaction, ops []domain.CashOperation, now time.Time) (*domain.ReconciliationEntry, error) {
	in.Currency = domain.NormalizeCurrency(in.Currency)

	verr := &domain.ValidationError{}
	if err := domain.MergeValidation(verr, domain.ValidateStruct(in)); err != nil {
		return nil, err
	}
	if in.ActualCash.IsNegative() {
		verr.Add("actual_cash", "must not be negative")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	debits, credits := decimal.Zero, decimal.Zero
	txCount, opCount := 0, 0

	for i := range txs {
		tx := &txs[i]
		if tx.AgentID != in.AgentID || !counts(tx) {
			continue
		}

		matched := false
		if tx.FromCurrency == in.Currency {
			debits = debits.Add(tx.Amount.Add(tx.Fees))
			matched = true
		}
		if tx.ToCurrency == in.Currency && tx.FromCurrency != tx.ToCurrency {
			credits = credits.Add(tx.ConvertedAmount)
			matched = true
		}
		if matched {
			txCount++
		}
	}

	for _, op := range ops {
		if op.AgentID != in.AgentID || op.TillID != in.TillID || op.Currency != in.Currency {
			continue
		}
		switch op.Type {
		case domain.CashIn:
			credits = credits.Add(op.Amount)
		case domain.CashOut:
			debits = debits.Add(op.Amount)
		default:
			continue
		}
		opCount++
	}

	theoretical := credits.Sub(debits)
	variance := in.ActualCash.Sub(theoretical)

	status := domain.ReconciliationUnresolved
	if variance.Abs().LessThanOrEqual(domain.BalancedTolerance) {
		status = domain.ReconciliationBalanced
	}

	return &domain.ReconciliationEntry{
		ID:                 in.ID,
		AgencyID:           in.AgencyID,
		AgentID:            in.AgentID,
		TillID:             in.TillID,
		Currency:           in.Currency,
		TheoreticalBalance: domain.RoundMoney(theoretical),
		ActualCash:         in.ActualCash,
		Variance:           domain.RoundMoney(variance),
		TotalDebits:        domain.RoundMoney(debits),
		TotalCredits:       domain.RoundMoney(credits),
		TransactionCount:   txCount,
		CashOperationCount: opCount,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Document records a reviewer's explanation of an unresolved variance.
func Document(entry *domain.ReconciliationEntry, reviewer, notes string, now time.Time) (*domain.ReconciliationEntry, error) {
	if entry.Status != domain.ReconciliationUnresolved {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidReconciliationTransition, entry.Status, domain.ReconciliationDocumented)
	}

	verr := &domain.ValidationError{}
	checkReviewer(verr, reviewer)
	if domain.TextLength(notes) < domain.MinReviewNotesLength {
		verr.Add("notes", fmt.Sprintf("must be at least %d characters", domain.MinReviewNotesLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	out := *entry
	out.Status = domain.ReconciliationDocumented
	out.Notes = strings.TrimSpace(notes)
	out.ReviewedBy = reviewer
	out.ReviewedAt = &now
	out.UpdatedAt = now
	return &out, nil
}

// Resolve closes a documented variance.
func Resolve(entry *domain.ReconciliationEntry, reviewer string, now time.Time) (*domain.ReconciliationEntry, error) {
	if entry.Status != domain.ReconciliationDocumented {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidReconciliationTransition, entry.Status, domain.ReconciliationBalanced)
	}

	verr := &domain.ValidationError{}
	checkReviewer(verr, reviewer)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	out := *entry
	out.Status = domain.ReconciliationBalanced
	out.ReviewedBy = reviewer
	out.ReviewedAt = &now
	out.UpdatedAt = now
	return &out, nil
}

// Stats summarizes entries. Averages and maxima use absolute variances.
func Stats(entries []domain.ReconciliationEntry) domain.ReconciliationStats {
	s := domain.ReconciliationStats{
		TotalEntries:    len(entries),
		AverageVariance: decimal.Zero,
		MaxVariance:     decimal.Zero,
	}
	if len(entries) == 0 {
		return s
	}

	sum := decimal.Zero
	for _, e := range entries {
		if e.Status == domain.ReconciliationBalanced {
			s.BalancedEntries++
		} else {
			s.VarianceEntries++
		}
		abs := e.Variance.Abs()
		sum = sum.Add(abs)
		if abs.GreaterThan(s.MaxVariance) {
			s.MaxVariance = abs
		}
	}

	s.AverageVariance = domain.RoundMoney(sum.Div(decimal.NewFromInt(int64(len(entries)))))
	return s
}

// BuildReport collects the agency's entries created in [from, to) with their
// stats. An empty agencyID covers every agency.
func BuildReport(agencyID string, from, to time.Time, entries []domain.ReconciliationEntry, now time.Time) domain.ReconciliationReport {
	selected := make([]domain.ReconciliationEntry, 0, len(entries))
	for _, e := range entries {
		if agencyID != "" && e.AgencyID != agencyID {
			continue
		}
		if !from.IsZero() && e.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.CreatedAt.Before(to) {
			continue
		}
		selected = append(selected, e)
	}

	return domain.ReconciliationReport{
		AgencyID:    agencyID,
		From:        from,
		To:          to,
		Entries:     selected,
		Stats:       Stats(selected),
		GeneratedAt: now,
	}
}

func checkReviewer(verr *domain.ValidationError, reviewer string) {
	if domain.TextLength(reviewer) < domain.MinActorIDLength {
		verr.Add("reviewed_by", fmt.Sprintf("must be at least %d characters", domain.MinActorIDLength))
	}
}
