package dto

import (
	"time"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Number      string    `json:"account_number"`
	AccountType string    `json:"account_type"`
	Balance     string    `json:"balance"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Number:      a.Number,
		AccountType: string(a.Type),
		Balance:     a.Balance.StringFixed(domain.MoneyScale),
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse carries the committed balance of one account.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Number    string `json:"account_number"`
	Balance   string `json:"balance"`
}

// TransactionResponse represents a ledger record in API responses.
type TransactionResponse struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	FromAccountID *string   `json:"from_account_id,omitempty"`
	ToAccountID   *string   `json:"to_account_id,omitempty"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	CommittedAt   time.Time `json:"committed_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		Kind:          string(t.Kind),
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount.StringFixed(domain.MoneyScale),
		Description:   t.Description,
		CommittedAt:   t.CommittedAt,
	}
}

// HistoryEntryResponse is one line of a caller's history.
type HistoryEntryResponse struct {
	TransactionResponse

	Direction         string `json:"direction"`
	FromAccountNumber string `json:"from_account_number,omitempty"`
	ToAccountNumber   string `json:"to_account_number,omitempty"`
}

// HistoryEntryFromUseCase converts a history entry to response.
func HistoryEntryFromUseCase(e usecase.HistoryEntry) *HistoryEntryResponse {
	return &HistoryEntryResponse{
		TransactionResponse: *TransactionFromDomain(e.Transaction),
		Direction:           string(e.Direction),
		FromAccountNumber:   e.FromNumber,
		ToAccountNumber:     e.ToNumber,
	}
}

// HistoryResponse is a caller's history, newest first.
type HistoryResponse struct {
	Entries []*HistoryEntryResponse `json:"entries"`
}

// ConsistencyResponse reports the global conservation check.
type ConsistencyResponse struct {
	Status           string    `json:"status"`
	Consistent       bool      `json:"consistent"`
	TotalBalance     string    `json:"total_balance"`
	TotalDeposits    string    `json:"total_deposits"`
	TotalWithdrawals string    `json:"total_withdrawals"`
	Difference       string    `json:"difference"`
	Accounts         int64     `json:"accounts"`
	Transactions     int64     `json:"transactions"`
	CheckedAt        time.Time `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		Status:           status,
		Consistent:       r.Consistent,
		TotalBalance:     r.Totals.TotalBalance.StringFixed(domain.MoneyScale),
		TotalDeposits:    r.Totals.TotalDeposits.StringFixed(domain.MoneyScale),
		TotalWithdrawals: r.Totals.TotalWithdrawals.StringFixed(domain.MoneyScale),
		Difference:       r.Difference.StringFixed(domain.MoneyScale),
		Accounts:         r.Totals.Accounts,
		Transactions:     r.Totals.Transactions,
		CheckedAt:        r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// DiscrepancyResponse is one account whose balance disagrees with its records.
type DiscrepancyResponse struct {
	AccountID         string `json:"account_id"`
	AccountNumber     string `json:"account_number"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
}

// ReconciliationResponse summarises a reconciliation run.
type ReconciliationResponse struct {
	TotalAccounts      int                    `json:"total_accounts"`
	ReconciledAccounts int                    `json:"reconciled_accounts"`
	LedgerConsistent   bool                   `json:"ledger_consistent"`
	Discrepancies      []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt          time.Time              `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation report to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	discrepancies := make([]*DiscrepancyResponse, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		discrepancies = append(discrepancies, &DiscrepancyResponse{
			AccountID:         d.AccountID,
			AccountNumber:     d.AccountNumber,
			RecordedBalance:   d.RecordedBalance.StringFixed(domain.MoneyScale),
			CalculatedBalance: d.CalculatedBalance.StringFixed(domain.MoneyScale),
			Difference:        d.Difference.StringFixed(domain.MoneyScale),
		})
	}

	return &ReconciliationResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		LedgerConsistent:   r.LedgerConsistent,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}
