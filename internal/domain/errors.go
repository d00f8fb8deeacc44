package domain

import "errors"

// ErrorKind classifies every failure the engine can report. Callers branch on the
// kind with errors.Is, never on message text.
type ErrorKind struct {
	name string
}

func (k *ErrorKind) Error() string {
	return k.name
}

var (
	ErrValidation        = &ErrorKind{name: "validation error"}
	ErrNotFound          = &ErrorKind{name: "not found"}
	ErrInsufficientFunds = &ErrorKind{name: "insufficient funds"}
	ErrContention        = &ErrorKind{name: "contention"}
	ErrPersistence       = &ErrorKind{name: "persistence error"}
)

// kindError is a sentinel that belongs to one ErrorKind.
type kindError struct {
	kind *ErrorKind
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

func newKindError(kind *ErrorKind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	// Validation errors
	ErrInvalidAmount      = newKindError(ErrValidation, "amount must be positive")
	ErrInvalidScale       = newKindError(ErrValidation, "amount must have at most two decimal places")
	ErrAmountTooLarge     = newKindError(ErrValidation, "amount exceeds maximum allowed")
	ErrSameAccount        = newKindError(ErrValidation, "cannot transfer to same account")
	ErrInvalidAccountType = newKindError(ErrValidation, "invalid account type")
	ErrInvalidOwner       = newKindError(ErrValidation, "owner identity is required")
	ErrDescriptionTooLong = newKindError(ErrValidation, "description exceeds maximum length")
	ErrInvalidNumber      = newKindError(ErrValidation, "invalid account number")
	ErrBalanceTooLarge    = newKindError(ErrValidation, "balance would exceed maximum allowed")

	// Lookup errors
	ErrAccountNotFound = newKindError(ErrNotFound, "account not found")

	// Balance errors
	ErrNegativeBalance = newKindError(ErrInsufficientFunds, "balance would become negative")

	// Concurrency errors
	ErrVersionConflict = newKindError(ErrContention, "account version changed concurrently")
	ErrLockTimeout     = newKindError(ErrContention, "timed out acquiring account locks")
	ErrRetriesExceeded = newKindError(ErrContention, "retries exhausted")
	ErrNumberTaken     = newKindError(ErrContention, "account number already allocated")
)

// Kind returns the ErrorKind err belongs to, or nil for errors outside the taxonomy.
func Kind(err error) *ErrorKind {
	for _, k := range []*ErrorKind{ErrValidation, ErrNotFound, ErrInsufficientFunds, ErrContention, ErrPersistence} {
		if errors.Is(err, k) {
			return k
		}
	}

	return nil
}

// IsBusiness reports whether err is a non-retryable business outcome.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientFunds)
}

// persistenceError wraps an infrastructure fault so that both the kind and the cause
// stay reachable through errors.Is / errors.As.
type persistenceError struct {
	cause error
}

func (e *persistenceError) Error() string {
	return "persistence error: " + e.cause.Error()
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.cause}
}

// Persistence marks err as a storage failure. Errors already carrying a kind are
// returned unchanged.
func Persistence(err error) error {
	if err == nil || Kind(err) != nil {
		return err
	}

	return &persistenceError{cause: err}
}
