package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewTransactionCommittedEvent(t *testing.T) {
	from := "acc-1"
	tx := &Transaction{
		ID:            42,
		FromAccountID: &from,
		Amount:        decimal.RequireFromString("12.5"),
		Kind:          TransactionKindWithdrawal,
		CommittedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	event := NewTransactionCommittedEvent("evt-1", tx)

	if event.AggregateID != "42" || event.EventType != EventTypeTransactionCommitted {
		t.Fatalf("unexpected event header: %+v", event)
	}

	if event.Payload["amount"] != "12.50" {
		t.Fatalf("expected fixed-scale amount, got %v", event.Payload["amount"])
	}

	if _, ok := event.Payload["to_account_id"]; ok {
		t.Fatal("withdrawal event must not carry a destination")
	}
}

func TestNewAccountCreatedEvent(t *testing.T) {
	acc := &Account{ID: "acc-1", OwnerID: "alice", Number: "0123456789", Type: AccountTypeSavings}

	event := NewAccountCreatedEvent("evt-2", acc)

	if event.AggregateType != AggregateTypeAccount || event.Payload["number"] != "0123456789" {
		t.Fatalf("unexpected event: %+v", event)
	}
}
