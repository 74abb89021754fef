// Package approval implements the maker-checker workflow gating
// high-value transactions.
package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/iho/goremit/internal/domain"
)

// Requirement tells whether a transaction needs approval and which rule fired.
type Requirement struct {
	Required bool
	Rule     *domain.ApprovalRule
}

// CheckRequiresApproval returns the first rule matching tx's type and
// currency whose threshold tx exceeds.
func CheckRequiresApproval(tx *domain.Transaction, rules []domain.ApprovalRule) Requirement {
	for i := range rules {
		if rules[i].Matches(tx) {
			r := rules[i]
			return Requirement{Required: true, Rule: &r}
		}
	}
	return Requirement{}
}

// Submit opens a pending approval case for tx under rule.
func Submit(tx *domain.Transaction, rule *domain.ApprovalRule, requestedBy, requestedByName, id string, now time.Time) (*domain.PendingTransaction, error) {
	if rule == nil {
		return nil, domain.ErrApprovalNotRequired
	}

	verr := &domain.ValidationError{}
	checkActor(verr, "requested_by", requestedBy, requestedByName)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &domain.PendingTransaction{
		ID:              id,
		TransactionID:   tx.ID,
		AgencyID:        tx.AgencyID,
		RuleID:          rule.ID,
		Amount:          tx.Amount,
		Currency:        tx.FromCurrency,
		Status:          domain.ApprovalPending,
		RequestedBy:     requestedBy,
		RequestedByName: requestedByName,
		CreatedAt:       now,
	}, nil
}

// Approve records the checker's approval. The checker cannot be the maker.
func Approve(p *domain.PendingTransaction, approvedBy, approvedByName string, now time.Time) (*domain.PendingTransaction, error) {
	if err := decidable(p, approvedBy); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	checkActor(verr, "approved_by", approvedBy, approvedByName)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	out := *p
	out.Status = domain.ApprovalApproved
	out.ApprovedBy = approvedBy
	out.ApprovedByName = approvedByName
	out.TreatedAt = &now
	return &out, nil
}

// Reject records the checker's rejection with its reason.
func Reject(p *domain.PendingTransaction, rejectedBy, rejectedByName, reason string, now time.Time) (*domain.PendingTransaction, error) {
	if err := decidable(p, rejectedBy); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	checkActor(verr, "rejected_by", rejectedBy, rejectedByName)
	reason = strings.TrimSpace(reason)
	if n := domain.TextLength(reason); n < domain.MinRejectReasonLength || n > domain.MaxRejectReasonLength {
		verr.Add("reason", fmt.Sprintf("must be between %d and %d characters", domain.MinRejectReasonLength, domain.MaxRejectReasonLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	out := *p
	out.Status = domain.ApprovalRejected
	out.ApprovedBy = rejectedBy
	out.ApprovedByName = rejectedByName
	out.RejectionReason = reason
	out.TreatedAt = &now
	return &out, nil
}

func decidable(p *domain.PendingTransaction, checker string) error {
	if p.IsTreated() {
		return fmt.Errorf("%w: %s is %s", domain.ErrAlreadyTreated, p.ID, p.Status)
	}
	if checker == p.RequestedBy {
		return domain.ErrSelfApproval
	}
	return nil
}

func checkActor(verr *domain.ValidationError, field, id, name string) {
	if domain.TextLength(id) < domain.MinActorIDLength {
		verr.Add(field, fmt.Sprintf("must be at least %d characters", domain.MinActorIDLength))
	}
	if domain.TextLength(name) < domain.MinActorNameLength {
		verr.Add(field+"_name", fmt.Sprintf("must be at least %d characters", domain.MinActorNameLength))
	}
}
