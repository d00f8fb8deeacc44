package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/adapter/http/dto"
)

type recorded struct {
	method string
	path   string
	query  string
	owner  string
	key    string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.owner = r.Header.Get("X-Owner-ID")
		rec.key = r.Header.Get("Idempotency-Key")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL, "--owner", "alice"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestAccountsCreate(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated, dto.AccountResponse{
		ID:          "01HZACCOUNT",
		Number:      "1234567890",
		AccountType: "Savings",
		Balance:     "10.00",
	})

	out, err := execute(t, srv, "accounts", "create", "--type", "Savings", "--initial-balance", "10")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/accounts/", rec.path)
	assert.Equal(t, "alice", rec.owner)
	assert.Equal(t, "Savings", rec.body["account_type"])
	assert.Equal(t, "10", rec.body["initial_balance"])
	assert.Contains(t, out, "1234567890")
	assert.Contains(t, out, "10.00")
}

func TestDepositSendsIdempotencyKey(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated, dto.TransactionResponse{
		ID:          7,
		Kind:        "deposit",
		Amount:      "5.00",
		Description: "Deposit",
		CommittedAt: time.Now(),
	})

	out, err := execute(t, srv, "--idempotency-key", "k-1", "deposit", "01HZACCOUNT", "5.00")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/accounts/01HZACCOUNT/deposits", rec.path)
	assert.Equal(t, "k-1", rec.key)
	assert.Equal(t, "5.00", rec.body["amount"])
	assert.Contains(t, out, "Transaction 7 committed")
}

func TestTransferErrorIsReported(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:   "failed to transfer",
		Kind:    "insufficient funds",
		Message: "insufficient funds: balance 5.00, requested 80.00",
	})

	_, err := execute(t, srv, "transfer", "1111111111", "2222222222", "80.00")
	require.Error(t, err)

	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "insufficient funds", apiErr.Kind)
	assert.Contains(t, apiErr.Error(), "requested 80.00")

	assert.Equal(t, "/api/v1/transfers", rec.path)
	assert.Equal(t, "1111111111", rec.body["from_account_number"])
}

func TestHistoryJSON(t *testing.T) {
	entry := &dto.HistoryEntryResponse{
		TransactionResponse: dto.TransactionResponse{ID: 3, Kind: "transfer", Amount: "1.50"},
		Direction:           "outgoing",
		FromAccountNumber:   "1111111111",
		ToAccountNumber:     "2222222222",
	}
	srv, rec := newTestServer(t, http.StatusOK, dto.HistoryResponse{Entries: []*dto.HistoryEntryResponse{entry}})

	out, err := execute(t, srv, "--json", "history", "--limit", "5")
	require.NoError(t, err)

	assert.Equal(t, "limit=5", rec.query)

	var got dto.HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "outgoing", got.Entries[0].Direction)
}

func TestHistoryTable(t *testing.T) {
	entry := &dto.HistoryEntryResponse{
		TransactionResponse: dto.TransactionResponse{ID: 4, Kind: "deposit", Amount: "9.00", Description: "Deposit"},
		Direction:           "incoming",
		ToAccountNumber:     "2222222222",
	}
	srv, _ := newTestServer(t, http.StatusOK, dto.HistoryResponse{Entries: []*dto.HistoryEntryResponse{entry}})

	out, err := execute(t, srv, "history")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "incoming")
	assert.Contains(t, lines[1], " - ")
}

func TestLedgerConsistency(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, dto.ConsistencyResponse{
			Status:       "consistent",
			Consistent:   true,
			TotalBalance: "100.00",
		})

		out, err := execute(t, srv, "ledger", "consistency")
		require.NoError(t, err)
		assert.Contains(t, out, "Consistency check PASSED")
	})

	t.Run("inconsistent", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusConflict, dto.ConsistencyResponse{
			Status:     "inconsistent",
			Consistent: false,
			Difference: "3.00",
		})

		out, err := execute(t, srv, "ledger", "consistency")
		require.ErrorIs(t, err, errCheckFailed)
		assert.Contains(t, out, "Consistency check FAILED")
		assert.Contains(t, out, "3.00")
	})
}

func TestLedgerReconcileDiscrepancy(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusConflict, dto.ReconciliationResponse{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		LedgerConsistent:   true,
		Discrepancies: []*dto.DiscrepancyResponse{{
			AccountNumber:     "1111111111",
			RecordedBalance:   "10.00",
			CalculatedBalance: "7.00",
			Difference:        "3.00",
		}},
		CheckedAt: time.Now(),
	})

	out, err := execute(t, srv, "ledger", "reconcile")
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "Reconciled 1 of 2 accounts")
	assert.Contains(t, out, "1111111111")
}

func TestArgumentValidation(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, nil)

	_, err := execute(t, srv, "deposit", "only-account")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
