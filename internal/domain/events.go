package domain

import (
	"strconv"
	"time"
)

// Event types
const (
	EventTypeTransactionCommitted = "transaction.committed"
	EventTypeAccountCreated       = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionCommittedEvent builds the outbox event announcing t.
func NewTransactionCommittedEvent(id string, t *Transaction) *OutboxEvent {
	payload := map[string]any{
		"transaction_id": t.ID,
		"kind":           string(t.Kind),
		"amount":         t.Amount.StringFixed(MoneyScale),
		"committed_at":   t.CommittedAt.Format(time.RFC3339Nano),
	}
	if t.FromAccountID != nil {
		payload["from_account_id"] = *t.FromAccountID
	}
	if t.ToAccountID != nil {
		payload["to_account_id"] = *t.ToAccountID
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   strconv.FormatInt(t.ID, 10),
		AggregateType: AggregateTypeTransaction,
		EventType:     EventTypeTransactionCommitted,
		Payload:       payload,
		CreatedAt:     t.CommittedAt,
	}
}

// NewAccountCreatedEvent builds the outbox event announcing a.
func NewAccountCreatedEvent(id string, a *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": a.ID,
			"owner_id":   a.OwnerID,
			"number":     a.Number,
			"type":       string(a.Type),
		},
		CreatedAt: a.CreatedAt,
	}
}
