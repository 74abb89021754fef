// Package cancellation authorizes cancellations of completed transactions and
// builds their symmetric reversal.
package cancellation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// DefaultWindow is how long after booking a transaction can be cancelled.
const DefaultWindow = 24 * time.Hour

// Decision is the outcome of an authorization check. A denial is a normal
// business outcome, not an error.
type Decision struct {
	Allowed bool
	Reason  string
}

func deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Policy holds the tunable inputs of CanCancel.
type Policy struct {
	Window                 time.Duration
	Roles                  map[domain.Role]domain.CancellationPolicy
	InternationalThreshold decimal.Decimal
}

// DefaultPolicy returns the standard window and role table.
func DefaultPolicy() Policy {
	return Policy{
		Window:                 DefaultWindow,
		Roles:                  domain.CancellationPolicies,
		InternationalThreshold: domain.InternationalAdminThreshold,
	}
}

// CanCancel evaluates the cancellation rules in order: status, age, role
// ceiling and agency scope, then the international administrator rule.
func CanCancel(tx *domain.Transaction, actor domain.Actor, now time.Time) Decision {
	return DefaultPolicy().CanCancel(tx, actor, now)
}

// CanCancel is the policy-parameterized form of the package-level CanCancel.
func (p Policy) CanCancel(tx *domain.Transaction, actor domain.Actor, now time.Time) Decision {
	if tx.Status != domain.TransactionCompleted {
		return deny("transaction status is %s, only completed transactions can be cancelled", tx.Status)
	}
	if tx.IsReversal() {
		return deny("reversal transactions cannot be cancelled")
	}

	if age := now.Sub(tx.BookingTime()); age > p.Window {
		return deny("transaction is older than %s", p.Window)
	}

	rp, ok := p.Roles[actor.Role]
	if !ok {
		return deny("role %q is not allowed to cancel transactions", actor.Role)
	}
	if rp.Scope == domain.ScopeOwnAgency && actor.AgencyID != tx.AgencyID {
		return deny("role %s can only cancel transactions of its own agency", actor.Role)
	}
	if rp.Ceiling != nil && tx.Amount.GreaterThan(*rp.Ceiling) {
		return deny("amount %s exceeds the %s ceiling of %s", tx.Amount, actor.Role, rp.Ceiling)
	}

	if tx.IsInternational() && tx.Amount.GreaterThan(p.InternationalThreshold) && actor.Role != domain.RoleAdministrator {
		return deny("international transfers above %s require an administrator", p.InternationalThreshold)
	}

	return Decision{Allowed: true}
}

// ReversalID is the deterministic identifier of a reversal built at now.
func ReversalID(originalID string, now time.Time) string {
	return fmt.Sprintf("reversal_%s_%d", originalID, now.UnixMilli())
}

var one = decimal.NewFromInt(1)

// BuildReversal builds the transaction that negates original: currencies and
// parties swapped, rates inverted, fees zero.
func BuildReversal(original *domain.Transaction, cancelledBy, cancelledByName, reason string, now time.Time) (*domain.ReversalTransaction, error) {
	verr := &domain.ValidationError{}
	if domain.TextLength(cancelledBy) < domain.MinActorIDLength {
		verr.Add("cancelled_by", fmt.Sprintf("must be at least %d characters", domain.MinActorIDLength))
	}
	if domain.TextLength(cancelledByName) < domain.MinActorNameLength {
		verr.Add("cancelled_by_name", fmt.Sprintf("must be at least %d characters", domain.MinActorNameLength))
	}
	if domain.TextLength(reason) < domain.MinCancelReasonLength {
		verr.Add("reason", fmt.Sprintf("must be at least %d characters", domain.MinCancelReasonLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if original.Status != domain.TransactionCompleted {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrTransactionNotCompleted, original.ID, original.Status)
	}
	if original.AppliedRate.IsZero() || original.ExchangeRate.IsZero() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidExchangeRate, original.ID)
	}

	return &domain.ReversalTransaction{
		ID:                    ReversalID(original.ID, now),
		OriginalTransactionID: original.ID,
		AgencyID:              original.AgencyID,
		AgentID:               original.AgentID,
		TillID:                original.TillID,
		Type:                  original.Type,
		SenderName:            original.ReceiverName,
		ReceiverName:          original.SenderName,
		Amount:                original.ConvertedAmount,
		FromCurrency:          original.ToCurrency,
		ToCurrency:            original.FromCurrency,
		ExchangeRate:          one.Div(original.ExchangeRate),
		AppliedRate:           one.Div(original.AppliedRate),
		ConvertedAmount:       original.Amount,
		Commission:            original.Commission,
		Fees:                  decimal.Zero,
		Reason:                strings.TrimSpace(reason),
		CancelledBy:           cancelledBy,
		CancelledByName:       cancelledByName,
		CreatedAt:             now,
	}, nil
}
