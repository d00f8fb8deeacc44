package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func ptr(s string) *string { return &s }

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		tx          Transaction
		expectError error
	}{
		{
			name:        "valid transfer",
			tx:          Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("a"), ToAccountID: ptr("b"), Amount: decimal.NewFromInt(1)},
			expectError: nil,
		},
		{
			name:        "transfer to same account",
			tx:          Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("a"), ToAccountID: ptr("a"), Amount: decimal.NewFromInt(1)},
			expectError: ErrSameAccount,
		},
		{
			name:        "deposit with source",
			tx:          Transaction{Kind: TransactionKindDeposit, FromAccountID: ptr("a"), ToAccountID: ptr("b"), Amount: decimal.NewFromInt(1)},
			expectError: ErrValidation,
		},
		{
			name:        "valid deposit",
			tx:          Transaction{Kind: TransactionKindDeposit, ToAccountID: ptr("b"), Amount: decimal.NewFromInt(1)},
			expectError: nil,
		},
		{
			name:        "withdrawal with destination",
			tx:          Transaction{Kind: TransactionKindWithdrawal, FromAccountID: ptr("a"), ToAccountID: ptr("b"), Amount: decimal.NewFromInt(1)},
			expectError: ErrValidation,
		},
		{
			name:        "zero amount",
			tx:          Transaction{Kind: TransactionKindWithdrawal, FromAccountID: ptr("a"), Amount: decimal.Zero},
			expectError: ErrInvalidAmount,
		},
		{
			name:        "unknown kind",
			tx:          Transaction{Kind: "REFUND", ToAccountID: ptr("a"), Amount: decimal.NewFromInt(1)},
			expectError: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestDirectionFor(t *testing.T) {
	owned := map[string]bool{"mine": true}

	tests := []struct {
		name string
		tx   *Transaction
		want Direction
	}{
		{"deposit is incoming", &Transaction{Kind: TransactionKindDeposit, ToAccountID: ptr("mine")}, DirectionIncoming},
		{"withdrawal is outgoing", &Transaction{Kind: TransactionKindWithdrawal, FromAccountID: ptr("mine")}, DirectionOutgoing},
		{"transfer from own account", &Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("mine"), ToAccountID: ptr("theirs")}, DirectionOutgoing},
		{"transfer to own account", &Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("theirs"), ToAccountID: ptr("mine")}, DirectionIncoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DirectionFor(tt.tx, owned); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDefaultDescription(t *testing.T) {
	if got := DefaultDescription(TransactionKindTransfer, "111", "222"); got != "Transfer from 111 to 222" {
		t.Fatalf("unexpected transfer description %q", got)
	}

	if got := DefaultDescription(TransactionKindDeposit, "", "222"); got != "Deposit to 222" {
		t.Fatalf("unexpected deposit description %q", got)
	}

	if got := DefaultDescription(TransactionKindWithdrawal, "111", ""); got != "Withdrawal from 111" {
		t.Fatalf("unexpected withdrawal description %q", got)
	}
}

func TestTransaction_Touches(t *testing.T) {
	tx := &Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("a"), ToAccountID: ptr("b")}

	if !tx.Touches("a") || !tx.Touches("b") {
		t.Fatal("expected transfer to touch both accounts")
	}

	if tx.Touches("c") {
		t.Fatal("expected transfer not to touch unrelated account")
	}
}

func TestTransaction_Clone(t *testing.T) {
	orig := &Transaction{Kind: TransactionKindTransfer, FromAccountID: ptr("a"), ToAccountID: ptr("b"), Amount: decimal.NewFromInt(3)}

	cp := orig.Clone()
	*cp.FromAccountID = "z"

	if *orig.FromAccountID != "a" {
		t.Fatalf("expected clone not to share account references, got %s", *orig.FromAccountID)
	}
}
