package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the type of monetary event recorded in the ledger.
type TransactionKind string

const (
	TransactionKindTransfer   TransactionKind = "TRANSFER"
	TransactionKindDeposit    TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
)

// Direction is the sign of a transaction relative to one owner.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// Transaction is an immutable ledger record. Deposits have no source account,
// withdrawals have no destination, transfers have both.
type Transaction struct {
	ID            int64
	FromAccountID *string
	ToAccountID   *string
	Amount        decimal.Decimal
	Kind          TransactionKind
	Description   string
	CommittedAt   time.Time
}

// Validate checks the shape invariant between Kind and the account references.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	hasFrom := t.FromAccountID != nil
	hasTo := t.ToAccountID != nil

	switch t.Kind {
	case TransactionKindDeposit:
		if hasFrom || !hasTo {
			return fmt.Errorf("%w: deposit must reference only a destination", ErrValidation)
		}
	case TransactionKindWithdrawal:
		if !hasFrom || hasTo {
			return fmt.Errorf("%w: withdrawal must reference only a source", ErrValidation)
		}
	case TransactionKindTransfer:
		if !hasFrom || !hasTo {
			return fmt.Errorf("%w: transfer must reference both accounts", ErrValidation)
		}
		if *t.FromAccountID == *t.ToAccountID {
			return ErrSameAccount
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", ErrValidation, t.Kind)
	}

	return nil
}

// Touches reports whether the transaction references accountID on either side.
func (t *Transaction) Touches(accountID string) bool {
	return (t.FromAccountID != nil && *t.FromAccountID == accountID) ||
		(t.ToAccountID != nil && *t.ToAccountID == accountID)
}

// Clone returns a deep copy of t.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.FromAccountID != nil {
		from := *t.FromAccountID
		cp.FromAccountID = &from
	}
	if t.ToAccountID != nil {
		to := *t.ToAccountID
		cp.ToAccountID = &to
	}

	return &cp
}

// DirectionFor derives the direction of t for an owner holding the given accounts.
// It only looks at the record and the owned ids.
func DirectionFor(t *Transaction, owned map[string]bool) Direction {
	switch t.Kind {
	case TransactionKindDeposit:
		return DirectionIncoming
	case TransactionKindWithdrawal:
		return DirectionOutgoing
	}

	if t.FromAccountID != nil && owned[*t.FromAccountID] {
		return DirectionOutgoing
	}

	return DirectionIncoming
}

// DefaultDescription is used when the caller leaves the description empty.
func DefaultDescription(kind TransactionKind, fromNumber, toNumber string) string {
	switch kind {
	case TransactionKindTransfer:
		return fmt.Sprintf("Transfer from %s to %s", fromNumber, toNumber)
	case TransactionKindDeposit:
		return "Deposit to " + toNumber
	case TransactionKindWithdrawal:
		return "Withdrawal from " + fromNumber
	default:
		return ""
	}
}

// OpeningBalanceDescription labels the deposit booked when an account is opened with funds.
const OpeningBalanceDescription = "Opening balance"
