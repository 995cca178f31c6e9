package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	EarningsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_applied_total",
			Help: "Earning events applied to the rank store",
		},
	)

	PoolContributionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_contribution_failures_total",
			Help: "Earning events whose pool contribution failed after the rank write",
		},
	)

	ConsistencyAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consistency_anomalies_total",
			Help: "Identity/rank store membership mismatches detected",
		},
		[]string{"direction"},
	)

	SelfHeals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_self_heals_total",
			Help: "Zero-score entries inserted to restore identity/rank consistency",
		},
	)

	SettlementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Settlement job runs by outcome",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(EarningsApplied)
	prometheus.MustRegister(PoolContributionFailures)
	prometheus.MustRegister(ConsistencyAnomalies)
	prometheus.MustRegister(SelfHeals)
	prometheus.MustRegister(SettlementRuns)
}
