package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/usecase"
	"github.com/iho/goremit/internal/usecase/mocks"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// world wires every use case to in-memory repositories.
type world struct {
	txMgr     *mocks.MockTransactionManager
	rates     *mocks.MockExchangeRateRepository
	tiers     *mocks.MockCommissionTierRepository
	fees      *mocks.MockFeeRepository
	rules     *mocks.MockApprovalRuleRepository
	txs       *mocks.MockTransactionRepository
	entries   *mocks.MockLedgerEntryRepository
	approvals *mocks.MockApprovalRepository
	cancels   *mocks.MockCancellationRepository
	cash      *mocks.MockCashOperationRepository
	recs      *mocks.MockReconciliationRepository
	transfers *mocks.MockLiquidityRepository
	balances  *mocks.MockAgencyBalanceRepository
	outbox    *mocks.MockOutboxRepository
	audit     *mocks.MockAuditRepository
	cache     *mocks.MockRateCache
	idGen     *mocks.MockIDGenerator

	settings       *usecase.SettingsUseCase
	transactions   *usecase.TransactionUseCase
	approvalsUC    *usecase.ApprovalUseCase
	cancellations  *usecase.CancellationUseCase
	ledger         *usecase.LedgerUseCase
	reconciliation *usecase.ReconciliationUseCase
	liquidity      *usecase.LiquidityUseCase
}

func newWorld(t *testing.T) *world {
	t.Helper()

	eurUsd, err := domain.NewExchangeRateSetting("rate-eur-usd", "EUR", "USD", d("1.085"), d("0.01"), true, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to build rate: %v", err)
	}

	w := &world{
		txMgr: mocks.NewMockTransactionManager(),
		rates: mocks.NewMockExchangeRateRepository(*eurUsd),
		tiers: mocks.NewMockCommissionTierRepository(domain.CommissionTier{
			ID: "tier-1", Name: "default", MinAmount: d("0"), Type: domain.CommissionPercentagePlusFixed,
			Percentage: d("1"), FixedAmount: d("2"), Order: 1, IsActive: true,
		}),
		fees: mocks.NewMockFeeRepository(domain.FeeSetting{
			ID: "fee-1", Name: "network", Type: domain.FeeFixed, FixedAmount: d("2.50"), IsActive: true,
		}),
		rules:     mocks.NewMockApprovalRuleRepository(),
		txs:       mocks.NewMockTransactionRepository(),
		entries:   mocks.NewMockLedgerEntryRepository(),
		approvals: mocks.NewMockApprovalRepository(),
		cancels:   mocks.NewMockCancellationRepository(),
		cash:      mocks.NewMockCashOperationRepository(),
		recs:      mocks.NewMockReconciliationRepository(),
		transfers: mocks.NewMockLiquidityRepository(),
		balances:  mocks.NewMockAgencyBalanceRepository(),
		outbox:    mocks.NewMockOutboxRepository(),
		audit:     mocks.NewMockAuditRepository(),
		cache:     mocks.NewMockRateCache(),
		idGen:     mocks.NewMockIDGenerator(),
	}

	logger := zerolog.Nop()

	w.settings = usecase.NewSettingsUseCase(w.txMgr, w.rates, w.tiers, w.fees, w.rules, w.outbox, w.audit, w.cache, w.idGen, nil, logger, nil)
	w.transactions = usecase.NewTransactionUseCase(w.txMgr, w.settings, w.txs, w.approvals, w.entries, w.outbox, w.audit, w.idGen, nil, logger, nil)
	w.transactions.SetMargin(rate.Margin{})
	w.approvalsUC = usecase.NewApprovalUseCase(w.txMgr, w.approvals, w.txs, w.entries, w.outbox, w.audit, w.idGen, nil, logger, nil)
	w.cancellations = usecase.NewCancellationUseCase(w.txMgr, w.cancels, w.txs, w.entries, w.outbox, w.audit, w.idGen, nil, logger, nil)
	w.ledger = usecase.NewLedgerUseCase(w.entries)
	w.reconciliation = usecase.NewReconciliationUseCase(w.txMgr, w.recs, w.cash, w.txs, w.balances, w.outbox, w.audit, w.idGen, nil, nil)
	w.liquidity = usecase.NewLiquidityUseCase(w.txMgr, w.transfers, w.balances, w.outbox, w.audit, w.idGen, nil, nil)

	balanceLocks := usecase.NewKeyedLocker()
	w.reconciliation.SetLocker(balanceLocks)
	w.liquidity.SetLocker(balanceLocks)

	return w
}

func as(role domain.Role, id, agency string) context.Context {
	return domain.ContextWithActor(context.Background(), &domain.Actor{
		ID:       id,
		Name:     "User " + id,
		Role:     role,
		AgencyID: agency,
	})
}

func submitInput(amount string) usecase.SubmitTransactionInput {
	return usecase.SubmitTransactionInput{
		AgencyID:     "agency-1",
		AgentID:      "agent-1",
		TillID:       "till-1",
		SenderName:   "Alice",
		ReceiverName: "Bob",
		PriceInput: usecase.PriceInput{
			Amount:       d(amount),
			FromCurrency: "EUR",
			ToCurrency:   "USD",
			Direction:    domain.DirectionReceive,
		},
	}
}
