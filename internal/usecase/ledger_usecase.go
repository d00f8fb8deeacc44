package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when balances and recorded flows disagree.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not equal deposits minus withdrawals")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport is the outcome of a conservation check.
type ConsistencyReport struct {
	Totals     LedgerTotals
	Difference decimal.Decimal
	Consistent bool
	CheckedAt  time.Time
}

// CheckConsistency verifies that the sum of all balances equals total deposits
// minus total withdrawals. Transfers move money without changing the sum.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, classify(err)
	}

	expected := totals.TotalDeposits.Sub(totals.TotalWithdrawals)
	report := &ConsistencyReport{
		Totals:     totals,
		Difference: totals.TotalBalance.Sub(expected),
		CheckedAt:  time.Now().UTC(),
	}
	report.Consistent = report.Difference.IsZero()

	if !report.Consistent {
		return report, fmt.Errorf(
			"%w: balances=%s deposits=%s withdrawals=%s",
			ErrInconsistentLedger,
			totals.TotalBalance.StringFixed(2),
			totals.TotalDeposits.StringFixed(2),
			totals.TotalWithdrawals.StringFixed(2),
		)
	}

	return report, nil
}
