package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CancellationStatus is the state of a cancellation record.
type CancellationStatus string

const (
	CancellationReversalPending   CancellationStatus = "reversal_pending"
	CancellationCompleted         CancellationStatus = "completed"
	CancellationCompletedUnposted CancellationStatus = "completed_unposted"
)

// Cancellation records who cancelled a transaction and whether the
// reversal postings exist.
type Cancellation struct {
	ID                    string
	OriginalTransactionID string
	ReversalTransactionID string
	AgencyID              string
	Reason                string
	CancelledBy           string
	CancelledByName       string
	Status                CancellationStatus
	PostingError          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	PostedAt              *time.Time
}

// MarkPosted finalizes the cancellation once reversal postings are stored.
func (c *Cancellation) MarkPosted(now time.Time) error {
	if c.Status != CancellationReversalPending && c.Status != CancellationCompletedUnposted {
		return ErrInvalidCancellationState
	}
	c.Status = CancellationCompleted
	c.PostingError = ""
	c.UpdatedAt = now
	c.PostedAt = &now
	return nil
}

// MarkUnposted records that reversal postings could not be generated.
func (c *Cancellation) MarkUnposted(cause error, now time.Time) error {
	if c.Status != CancellationReversalPending && c.Status != CancellationCompletedUnposted {
		return ErrInvalidCancellationState
	}
	c.Status = CancellationCompletedUnposted
	if cause != nil {
		c.PostingError = cause.Error()
	}
	c.UpdatedAt = now
	return nil
}

// IsFinal reports whether reversal postings are confirmed.
func (c *Cancellation) IsFinal() bool {
	return c.Status == CancellationCompleted
}

// ReversalTransaction negates a completed transaction: currencies and
// parties are swapped, rates inverted and fees always zero.
type ReversalTransaction struct {
	ID                    string
	OriginalTransactionID string
	AgencyID              string
	AgentID               string
	TillID                string
	Type                  TransactionType
	SenderName            string
	ReceiverName          string
	Amount                decimal.Decimal
	FromCurrency          string
	ToCurrency            string
	ExchangeRate          decimal.Decimal
	AppliedRate           decimal.Decimal
	ConvertedAmount       decimal.Decimal
	Commission            decimal.Decimal
	Fees                  decimal.Decimal
	Reason                string
	CancelledBy           string
	CancelledByName       string
	CreatedAt             time.Time
}

// AsTransaction renders the reversal as a completed transaction record.
func (r *ReversalTransaction) AsTransaction() *Transaction {
	completed := r.CreatedAt
	return &Transaction{
		ID:              r.ID,
		AgencyID:        r.AgencyID,
		AgentID:         r.AgentID,
		TillID:          r.TillID,
		Type:            r.Type,
		SenderName:      r.SenderName,
		ReceiverName:    r.ReceiverName,
		Amount:          r.Amount,
		FromCurrency:    r.FromCurrency,
		ToCurrency:      r.ToCurrency,
		ExchangeRate:    r.ExchangeRate,
		AppliedRate:     r.AppliedRate,
		Commission:      r.Commission,
		Fees:            r.Fees,
		TotalCost:       r.Commission.Add(r.Fees),
		NetAmount:       r.Amount.Sub(r.Commission).Sub(r.Fees),
		FinalAmount:     RoundMoney(r.Amount.Sub(r.Commission).Sub(r.Fees).Mul(r.AppliedRate)),
		ConvertedAmount: r.ConvertedAmount,
		Status:          TransactionCompleted,
		ReversalOf:      r.OriginalTransactionID,
		CreatedBy:       r.CancelledBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.CreatedAt,
		CompletedAt:     &completed,
	}
}
