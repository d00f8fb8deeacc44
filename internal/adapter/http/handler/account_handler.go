package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens an account for the caller.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput(owner)
	if err != nil {
		respondError(w, "invalid initial balance", err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), input)
	if err != nil {
		respondError(w, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves one of the caller's accounts.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.owned(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Balance returns the committed balance of one of the caller's accounts.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.owned(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: account.ID,
		Number:    account.Number,
		Balance:   account.Balance.StringFixed(domain.MoneyScale),
	})
}

// List lists the caller's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), owner)
	if err != nil {
		respondError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

func (h *AccountHandler) owned(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return nil, false
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return nil, false
	}

	account, err := h.accountUC.GetAccount(r.Context(), owner, id)
	if err != nil {
		respondError(w, "failed to get account", err)
		return nil, false
	}

	return account, true
}
