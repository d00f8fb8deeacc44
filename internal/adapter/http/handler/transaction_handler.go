package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// BankingService defines the money movements exposed over HTTP.
type BankingService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
}

// TransactionHandler handles deposits, withdrawals and transfers.
type TransactionHandler struct {
	bankingUC BankingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(bankingUC BankingService) *TransactionHandler {
	return &TransactionHandler{bankingUC: bankingUC}
}

// Deposit credits one of the caller's accounts.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", err)
		return
	}

	input, err := req.ToDepositInput(owner, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid amount", err)
		return
	}

	t, err := h.bankingUC.Deposit(r.Context(), input)
	if err != nil {
		respondError(w, "deposit failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// Withdraw debits one of the caller's accounts.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", err)
		return
	}

	input, err := req.ToWithdrawInput(owner, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid amount", err)
		return
	}

	t, err := h.bankingUC.Withdraw(r.Context(), input)
	if err != nil {
		respondError(w, "withdrawal failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// Transfer moves money from one of the caller's accounts to any account number.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput(owner)
	if err != nil {
		respondError(w, "invalid amount", err)
		return
	}

	t, err := h.bankingUC.Transfer(r.Context(), input)
	if err != nil {
		respondError(w, "transfer failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}
