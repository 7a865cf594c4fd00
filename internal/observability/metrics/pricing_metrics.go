package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	SaveOutcomeSaved           = "saved"
	SaveOutcomeMissingCustomer = "missing_customer"
	SaveOutcomeFailed          = "failed"
	SaveOutcomeInProgress      = "in_progress"
)

const (
	TaxCaseReverseCharge = "reverse_charge"
	TaxCaseTable         = "table"
	TaxCaseDefault       = "default"
)

const (
	SaveFailureReasonDeadlineExceeded     = "deadline_exceeded"
	SaveFailureReasonDBLockTimeout        = "db_lock_timeout"
	SaveFailureReasonSerializationFailure = "serialization_failure"
	SaveFailureReasonUniqueViolation      = "unique_violation"
	SaveFailureReasonUnknown              = "unknown"
)

// PricingMetrics captures proposal pricing and save health signals.
type PricingMetrics struct {
	saves          *prometheus.CounterVec
	saveDuration   prometheus.Observer
	saveFailures   *prometheus.CounterVec
	taxResolutions *prometheus.CounterVec
}

var (
	pricingMetricsOnce sync.Once
	pricingMetrics     *PricingMetrics
)

// Pricing returns the singleton pricing metrics registry.
func Pricing() *PricingMetrics {
	return PricingWithConfig(Config{})
}

// PricingWithConfig returns the singleton pricing metrics registry using config labels.
func PricingWithConfig(cfg Config) *PricingMetrics {
	pricingMetricsOnce.Do(func() {
		pricingMetrics = newPricingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return pricingMetrics
}

// ResetPricingMetricsForTest resets the pricing metrics singleton for tests.
func ResetPricingMetricsForTest() {
	pricingMetricsOnce = sync.Once{}
	pricingMetrics = nil
}

// NewPricingMetrics registers pricing instruments on registerer. Collectors that
// are already registered are reused.
func NewPricingMetrics(registerer prometheus.Registerer, cfg Config) *PricingMetrics {
	return newPricingMetrics(registerer, cfg)
}

func newPricingMetrics(registerer prometheus.Registerer, cfg Config) *PricingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "dealdesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "dealdesk_proposal_saves_total",
		Help:        "Proposal save attempts by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	saveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "dealdesk_proposal_save_duration_seconds",
		Help:        "Proposal save latency including persistence.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	})
	saveFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "dealdesk_proposal_save_failures_total",
		Help:        "Proposal save failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	taxResolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "dealdesk_tax_resolutions_total",
		Help:        "Jurisdiction tax resolutions by decision case.",
		ConstLabels: constLabels,
	}, []string{"case"})

	saves = registerCounterVec(registerer, saves)
	saveFailures = registerCounterVec(registerer, saveFailures)
	taxResolutions = registerCounterVec(registerer, taxResolutions)
	saveDurationObserver := registerHistogram(registerer, saveDuration)

	return &PricingMetrics{
		saves:          saves,
		saveDuration:   saveDurationObserver,
		saveFailures:   saveFailures,
		taxResolutions: taxResolutions,
	}
}

func registerCounterVec(registerer prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogram(registerer prometheus.Registerer, h prometheus.Histogram) prometheus.Observer {
	if err := registerer.Register(h); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
	}
	return h
}

func (m *PricingMetrics) IncSave(outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
}

func (m *PricingMetrics) ObserveSaveDuration(duration time.Duration) {
	if m == nil || duration < 0 {
		return
	}
	m.saveDuration.Observe(duration.Seconds())
}

// IncSaveFailure records a failed save classified by its underlying cause.
func (m *PricingMetrics) IncSaveFailure(err error) {
	if m == nil {
		return
	}
	m.saveFailures.WithLabelValues(ClassifySaveFailureReason(err)).Inc()
}

func (m *PricingMetrics) IncTaxResolution(taxCase string) {
	if m == nil {
		return
	}
	m.taxResolutions.WithLabelValues(taxCase).Inc()
}

func ClassifySaveFailureReason(err error) string {
	if err == nil {
		return SaveFailureReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return SaveFailureReasonDeadlineExceeded
	}
	if hasPGCode(err, "55P03") {
		return SaveFailureReasonDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return SaveFailureReasonSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return SaveFailureReasonUniqueViolation
	}
	return SaveFailureReasonUnknown
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
