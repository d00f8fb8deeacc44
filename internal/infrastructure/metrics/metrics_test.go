package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveOperation(domain.TransactionKindDeposit, usecase.OutcomeSuccess, time.Millisecond)
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveOperationCountsContention(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation(domain.TransactionKindTransfer, usecase.OutcomeSuccess, time.Millisecond)
	m.ObserveOperation(domain.TransactionKindTransfer, usecase.OutcomeConflict, time.Millisecond)
	m.ObserveOperation(domain.TransactionKindTransfer, usecase.OutcomeConflict, time.Millisecond)

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("TRANSFER", usecase.OutcomeConflict)); got != 2 {
		t.Fatalf("conflict operations = %v, want 2", got)
	}

	if got := testutil.ToFloat64(m.Contention.WithLabelValues("TRANSFER")); got != 2 {
		t.Fatalf("contention = %v, want 2", got)
	}

	if got := testutil.CollectAndCount(m.OperationDuration); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestRecorderCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRetry(domain.TransactionKindWithdrawal)
	m.ObserveRetry(domain.TransactionKindWithdrawal)
	m.IncAccountsCreated(domain.AccountTypeSavings)
	m.ObserveLockWait(3 * time.Millisecond)

	if got := testutil.ToFloat64(m.Retries.WithLabelValues("WITHDRAWAL")); got != 2 {
		t.Fatalf("retries = %v, want 2", got)
	}

	if got := testutil.ToFloat64(m.AccountsCreated.WithLabelValues("Savings")); got != 1 {
		t.Fatalf("accounts created = %v, want 1", got)
	}

	if got := testutil.CollectAndCount(m.LockWait); got != 1 {
		t.Fatalf("lock wait series = %d, want 1", got)
	}
}

func TestMetricsAsEngineRecorder(t *testing.T) {
	var recorder usecase.MetricsRecorder = New(prometheus.NewRegistry())

	recorder.ObserveOperation(domain.TransactionKindDeposit, usecase.OutcomeRejected, time.Millisecond)
	recorder.ObserveRetry(domain.TransactionKindDeposit)

	m := recorder.(*Metrics)
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("DEPOSIT", usecase.OutcomeRejected)); got != 1 {
		t.Fatalf("rejected deposits = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.Retries.WithLabelValues("DEPOSIT")); got != 1 {
		t.Fatalf("deposit retries = %v, want 1", got)
	}
}
