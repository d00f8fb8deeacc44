package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/usecase"
)

type consistencyStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s consistencyStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

type reconcilerStub struct {
	report *usecase.ReconciliationReport
	err    error
}

func (s reconcilerStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	drifted := &usecase.ConsistencyReport{
		Totals: usecase.LedgerTotals{
			TotalBalance:  decimal.RequireFromString("11"),
			TotalDeposits: decimal.RequireFromString("10"),
		},
		Difference: decimal.RequireFromString("1"),
	}

	tests := []struct {
		name       string
		stub       consistencyStub
		wantStatus int
		wantState  string
	}{
		{
			name:       "consistent",
			stub:       consistencyStub{report: &usecase.ConsistencyReport{Consistent: true}},
			wantStatus: http.StatusOK,
			wantState:  "consistent",
		},
		{
			name:       "inconsistent",
			stub:       consistencyStub{report: drifted, err: fmt.Errorf("%w: drift", usecase.ErrInconsistentLedger)},
			wantStatus: http.StatusConflict,
			wantState:  "inconsistent",
		},
		{
			name:       "storage failure",
			stub:       consistencyStub{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLedgerHandler(tt.stub, reconcilerStub{})

			rec := httptest.NewRecorder()
			handler.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantState == "" {
				return
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Fatalf("expected status %s, got %s", tt.wantState, resp.Status)
			}
		})
	}
}

func TestLedgerHandler_Reconcile(t *testing.T) {
	handler := NewLedgerHandler(consistencyStub{}, reconcilerStub{report: &usecase.ReconciliationReport{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		LedgerConsistent:   true,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountID:         "acc-2",
			RecordedBalance:   decimal.RequireFromString("5"),
			CalculatedBalance: decimal.RequireFromString("4"),
			Difference:        decimal.RequireFromString("1"),
		}},
	}})

	rec := httptest.NewRecorder()
	handler.Reconcile(rec, httptest.NewRequest(http.MethodGet, "/ledger/reconciliation", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 with discrepancies, got %d", rec.Code)
	}

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != "1.00" {
		t.Fatalf("unexpected reconciliation response: %+v", resp)
	}
}
