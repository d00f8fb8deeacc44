package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Account, error)
	listFn   func(ctx context.Context, ownerID string) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	return s.listFn(ctx, ownerID)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:      "acc-1",
		OwnerID: "alice",
		Number:  "1234567890",
		Type:    domain.AccountTypeSavings,
		Balance: decimal.RequireFromString("1000"),
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{AccountType: "Savings", InitialBalance: "1000.00"})
	req := withRequest(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), "alice", nil)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerID != "alice" || captured.Type != domain.AccountTypeSavings || captured.OpeningBalance == nil {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Number != "1234567890" || resp.Balance != "1000.00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_RequiresOwner(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called without an owner")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"account_type":"Savings"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{bad json"},
		{name: "unknown field", body: `{"account_type":"Savings","currency":"USD"}`},
		{name: "empty body", body: ""},
		{name: "bad balance", body: `{"account_type":"Savings","initial_balance":"ten"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
					t.Fatal("CreateAccount should not be called")
					return nil, nil
				},
			})

			req := withRequest(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(tt.body)), "alice", nil)
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAccountHandler_Create_ValidationError(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidAccountType
		},
	})

	req := withRequest(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"account_type":"Gold"}`)), "alice", nil)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Balance(t *testing.T) {
	tests := []struct {
		name       string
		getErr     error
		wantStatus int
	}{
		{name: "own account", wantStatus: http.StatusOK},
		{name: "someone else's account", getErr: domain.ErrAccountNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				getFn: func(ctx context.Context, ownerID, id string) (*domain.Account, error) {
					if ownerID != "alice" || id != "acc-1" {
						t.Fatalf("unexpected lookup %s/%s", ownerID, id)
					}
					if tt.getErr != nil {
						return nil, tt.getErr
					}
					return &domain.Account{ID: id, Number: "1234567890", Balance: decimal.RequireFromString("5.5")}, nil
				},
			})

			req := withRequest(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance", nil), "alice", map[string]string{"id": "acc-1"})
			rec := httptest.NewRecorder()

			handler.Balance(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp dto.BalanceResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Balance != "5.50" {
				t.Fatalf("expected balance 5.50, got %s", resp.Balance)
			}
		})
	}
}

func TestAccountHandler_List(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, ownerID string) ([]*domain.Account, error) {
			return []*domain.Account{{ID: "a1", OwnerID: ownerID}, {ID: "a2", OwnerID: ownerID}}, nil
		},
	})

	req := withRequest(httptest.NewRequest(http.MethodGet, "/accounts", nil), "alice", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Total != 2 || resp.Accounts[1].OwnerID != "alice" {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}
