package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifySaveFailureReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: SaveFailureReasonDeadlineExceeded,
		},
		{
			name: "db_lock_timeout",
			err:  &pgconn.PgError{Code: "55P03"},
			want: SaveFailureReasonDBLockTimeout,
		},
		{
			name: "serialization_failure",
			err:  fmt.Errorf("save: %w", &pgconn.PgError{Code: "40001"}),
			want: SaveFailureReasonSerializationFailure,
		},
		{
			name: "unique_violation",
			err:  gorm.ErrDuplicatedKey,
			want: SaveFailureReasonUniqueViolation,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: SaveFailureReasonUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySaveFailureReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPricingMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newPricingMetrics(registry, Config{
		ServiceName: "dealdesk",
		Environment: "test",
	})

	metrics.IncSave(SaveOutcomeSaved)
	metrics.IncSave(SaveOutcomeSaved)
	metrics.IncSaveFailure(&pgconn.PgError{Code: "40001"})
	metrics.IncTaxResolution(TaxCaseReverseCharge)
	metrics.ObserveSaveDuration(20 * time.Millisecond)

	if got := testutil.ToFloat64(metrics.saves.WithLabelValues(SaveOutcomeSaved)); got != 2 {
		t.Fatalf("expected 2 saves, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.saveFailures.WithLabelValues(SaveFailureReasonSerializationFailure)); got != 1 {
		t.Fatalf("expected 1 serialization failure, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.taxResolutions.WithLabelValues(TaxCaseReverseCharge)); got != 1 {
		t.Fatalf("expected 1 reverse charge resolution, got %v", got)
	}
}

func TestPricingMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newPricingMetrics(registry, Config{ServiceName: "dealdesk", Environment: "test"})
	second := newPricingMetrics(registry, Config{ServiceName: "dealdesk", Environment: "test"})

	first.IncTaxResolution(TaxCaseTable)
	second.IncTaxResolution(TaxCaseTable)

	if got := testutil.ToFloat64(first.taxResolutions.WithLabelValues(TaxCaseTable)); got != 2 {
		t.Fatalf("expected shared collector count 2, got %v", got)
	}
}

func TestNilPricingMetricsIsSafe(t *testing.T) {
	var m *PricingMetrics
	m.IncSave(SaveOutcomeFailed)
	m.IncSaveFailure(errors.New("boom"))
	m.IncTaxResolution(TaxCaseDefault)
	m.ObserveSaveDuration(time.Second)
}
