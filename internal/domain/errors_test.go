package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind *ErrorKind
	}{
		{ErrInvalidAmount, ErrValidation},
		{ErrSameAccount, ErrValidation},
		{ErrAccountNotFound, ErrNotFound},
		{ErrNegativeBalance, ErrInsufficientFunds},
		{ErrBalanceTooLarge, ErrValidation},
		{ErrVersionConflict, ErrContention},
		{ErrLockTimeout, ErrContention},
		{fmt.Errorf("%w: detail", ErrInvalidScale), ErrValidation},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.kind {
			t.Fatalf("Kind(%v) = %v, want %v", tt.err, got, tt.kind)
		}
	}

	if Kind(errors.New("boom")) != nil {
		t.Fatal("expected unclassified error to have no kind")
	}
}

func TestIsBusiness(t *testing.T) {
	if !IsBusiness(ErrAccountNotFound) || !IsBusiness(ErrNegativeBalance) || !IsBusiness(ErrInvalidAmount) {
		t.Fatal("expected business errors to be classified as business")
	}

	if IsBusiness(ErrVersionConflict) || IsBusiness(Persistence(errors.New("disk"))) {
		t.Fatal("expected contention and persistence not to be business errors")
	}
}

func TestPersistence(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence(cause)

	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence kind, got %v", err)
	}

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay reachable, got %v", err)
	}

	if Persistence(ErrAccountNotFound) != ErrAccountNotFound {
		t.Fatal("expected classified errors to pass through unchanged")
	}

	if Persistence(nil) != nil {
		t.Fatal("expected nil to stay nil")
	}
}
