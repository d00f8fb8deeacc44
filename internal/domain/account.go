package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the product kind of an account.
type AccountType string

const (
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeChecking AccountType = "Checking"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return t == AccountTypeSavings || t == AccountTypeChecking
}

// Account is a customer account holding a non-negative balance.
type Account struct {
	ID        string
	OwnerID   string
	Number    string
	Type      AccountType
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether the account belongs to ownerID.
func (a *Account) IsOwnedBy(ownerID string) bool {
	return ownerID != "" && a.OwnerID == ownerID
}

// ApplyDelta returns the balance after adding delta. It fails with
// ErrNegativeBalance when the result would drop below zero and with
// ErrBalanceTooLarge when it would exceed MaxAmount.
func (a *Account) ApplyDelta(delta decimal.Decimal) (decimal.Decimal, error) {
	newBalance := a.Balance.Add(delta)
	if newBalance.IsNegative() {
		return a.Balance, ErrNegativeBalance
	}

	if newBalance.GreaterThan(maxAmount) {
		return a.Balance, ErrBalanceTooLarge
	}

	return newBalance, nil
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	_, err := a.ApplyDelta(amount.Neg())
	return err
}

// Clone returns a copy that can be handed out without sharing state.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
