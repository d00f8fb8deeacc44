package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MoneyScale           = 2
	MaxAmount            = "9999999999999.99" // NUMERIC(15,2)
	MaxDescriptionLength = 200
	AccountNumberLength  = 10
	MaxOwnerIDLength     = 128
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAmount validates a deposit, withdrawal or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: got %s", ErrInvalidScale, amount)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateOpeningBalance validates the balance an account is created with. Zero is allowed.
func ValidateOpeningBalance(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}

	if amount.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", ErrValidation)
	}

	return ValidateAmount(amount)
}

// ValidateOwnerID validates a caller identity.
func ValidateOwnerID(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrInvalidOwner
	}

	if len(ownerID) > MaxOwnerIDLength {
		return fmt.Errorf("%w: identity exceeds %d characters", ErrInvalidOwner, MaxOwnerIDLength)
	}

	return nil
}

// ValidateAccountType validates an account type.
func ValidateAccountType(t AccountType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, t)
	}

	return nil
}

// ValidateDescription validates a free-form transaction description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: limit is %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateAccountNumber validates an external account number.
func ValidateAccountNumber(number string) error {
	if len(number) != AccountNumberLength {
		return fmt.Errorf("%w: must be %d digits", ErrInvalidNumber, AccountNumberLength)
	}

	for _, r := range number {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: must be %d digits", ErrInvalidNumber, AccountNumberLength)
		}
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
