package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	Postings        *prometheus.CounterVec
	PostingErrors   *prometheus.CounterVec
	PostingDuration prometheus.Histogram
	PostedAmount    *prometheus.CounterVec

	// Account metrics
	AccountsOpened         prometheus.Counter
	AccountStatusChanges   *prometheus.CounterVec
	ReconciliationFailures prometheus.Counter

	// Accrual metrics
	Accruals       *prometheus.CounterVec
	InterestPosted *prometheus.CounterVec
	BatchRuns      *prometheus.CounterVec
	BatchDuration  prometheus.Histogram
	BatchAccounts  *prometheus.CounterVec
	FeesCharged    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Posting metrics
		Postings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_postings_total",
				Help: "Total journal postings by direction and category",
			},
			[]string{"direction", "category"},
		),
		PostingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_posting_errors_total",
				Help: "Total rejected or failed postings by error type",
			},
			[]string{"error_type"},
		),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coreledger_posting_duration_seconds",
			Help:    "Duration of posting transactions",
			Buckets: prometheus.DefBuckets,
		}),
		PostedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_posted_amount_total",
				Help: "Sum of posted amounts by currency and direction",
			},
			[]string{"currency", "direction"},
		),

		// Account metrics
		AccountsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "coreledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		AccountStatusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_account_status_changes_total",
				Help: "Account status transitions by target status",
			},
			[]string{"status"},
		),
		ReconciliationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "coreledger_reconciliation_failures_total",
			Help: "Accounts whose stored balance disagrees with the journal",
		}),

		// Accrual metrics
		Accruals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_accruals_total",
				Help: "Monthly accrual rows recorded by status",
			},
			[]string{"status"},
		),
		InterestPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_interest_posted_total",
				Help: "Interest credited by currency",
			},
			[]string{"currency"},
		),
		BatchRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_batch_runs_total",
				Help: "Batch runs by job and outcome",
			},
			[]string{"job", "outcome"},
		),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coreledger_batch_duration_seconds",
			Help:    "Duration of batch runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		BatchAccounts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_batch_accounts_total",
				Help: "Accounts handled by batch runs by result",
			},
			[]string{"result"},
		),
		FeesCharged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_fees_charged_total",
				Help: "Maintenance fees debited by currency",
			},
			[]string{"currency"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coreledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coreledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
