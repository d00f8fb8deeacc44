package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	AccountType    string `json:"account_type"`
	InitialBalance string `json:"initial_balance,omitempty"`
}

// ToUseCaseInput converts to use case input for ownerID.
func (r *CreateAccountRequest) ToUseCaseInput(ownerID string) (usecase.CreateAccountInput, error) {
	input := usecase.CreateAccountInput{
		OwnerID: ownerID,
		Type:    domain.AccountType(r.AccountType),
	}

	if strings.TrimSpace(r.InitialBalance) != "" {
		balance, err := parseAmount(r.InitialBalance)
		if err != nil {
			return usecase.CreateAccountInput{}, err
		}
		input.OpeningBalance = &balance
	}

	return input, nil
}

// MovementRequest is the body of a deposit or a withdrawal.
type MovementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ToDepositInput converts to a deposit on accountID.
func (r *MovementRequest) ToDepositInput(callerID, accountID string) (usecase.DepositInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	return usecase.DepositInput{
		CallerID:    callerID,
		AccountID:   accountID,
		Amount:      amount,
		Description: r.Description,
	}, nil
}

// ToWithdrawInput converts to a withdrawal from accountID.
func (r *MovementRequest) ToWithdrawInput(callerID, accountID string) (usecase.WithdrawInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.WithdrawInput{}, err
	}

	return usecase.WithdrawInput{
		CallerID:    callerID,
		AccountID:   accountID,
		Amount:      amount,
		Description: r.Description,
	}, nil
}

// CreateTransferRequest represents a request to move money between account numbers.
type CreateTransferRequest struct {
	FromAccountNumber string `json:"from_account_number"`
	ToAccountNumber   string `json:"to_account_number"`
	Amount            string `json:"amount"`
	Description       string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(callerID string) (usecase.TransferInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		CallerID:          callerID,
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            amount,
		Description:       r.Description,
	}, nil
}

// parseAmount accepts decimal strings only, so no value passes through a float.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal amount", domain.ErrValidation, s)
	}

	return amount, nil
}
