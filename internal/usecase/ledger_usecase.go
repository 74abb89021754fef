package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/ledger"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// ConsistencyReport lists posted totals per currency.
type ConsistencyReport struct {
	Balanced bool             `json:"balanced"`
	Totals   []CurrencyTotals `json:"totals"`
}

// LedgerUseCase handles ledger queries and consolidation.
type LedgerUseCase struct {
	entryRepo LedgerEntryRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(entryRepo LedgerEntryRepository) *LedgerUseCase {
	return &LedgerUseCase{
		entryRepo: entryRepo,
	}
}

// EntriesByTransaction returns the ledger entries posted for a transaction.
func (uc *LedgerUseCase) EntriesByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	return uc.entryRepo.GetByTransaction(ctx, transactionID)
}

// AgencyLedger aggregates an agency's entries per currency.
func (uc *LedgerUseCase) AgencyLedger(ctx context.Context, agencyID string) (domain.AgencyLedger, error) {
	entries, err := uc.entryRepo.ListByAgency(ctx, agencyID)
	if err != nil {
		return domain.AgencyLedger{}, err
	}
	return ledger.BuildAgencyLedger(agencyID, entries), nil
}

// Consolidated aggregates every agency's ledger per currency.
func (uc *LedgerUseCase) Consolidated(ctx context.Context) (domain.ConsolidatedLedger, error) {
	agencies, err := uc.entryRepo.ListAgencies(ctx)
	if err != nil {
		return domain.ConsolidatedLedger{}, err
	}

	ledgers := make([]domain.AgencyLedger, 0, len(agencies))
	for _, id := range agencies {
		l, err := uc.AgencyLedger(ctx, id)
		if err != nil {
			return domain.ConsolidatedLedger{}, err
		}
		ledgers = append(ledgers, l)
	}

	return ledger.Consolidate(ledgers, time.Now().UTC()), nil
}

// CheckConsistency verifies that debits equal credits in every currency.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.entryRepo.TotalsByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{Balanced: true, Totals: totals}
	for _, t := range totals {
		if !t.Debits.Equal(t.Credits) {
			report.Balanced = false
		}
	}

	if !report.Balanced {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
