// Package metrics exposes ledger and RPC activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

const namespace = "splitledger"

var _ ledger.Observer = (*Metrics)(nil)

// Metrics holds every collector. It implements ledger.Observer.
type Metrics struct {
	usersAdded            prometheus.Counter
	transactionsAdded     *prometheus.CounterVec
	cacheHits             prometheus.Counter
	recomputes            prometheus.Counter
	recomputeSeconds      prometheus.Histogram
	recomputeTransactions prometheus.Gauge
	rpcRequests           *prometheus.CounterVec
	rpcSeconds            *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		usersAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_added_total",
			Help:      "Users registered since start.",
		}),
		transactionsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_added_total",
			Help:      "Transactions recorded since start, by split rule.",
		}, []string{"split_rule"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_hits_total",
			Help:      "Balance reads served from the cached matrix.",
		}),
		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_recomputes_total",
			Help:      "Full recomputations of the balance matrix.",
		}),
		recomputeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_recompute_duration_seconds",
			Help:      "Time spent recomputing the balance matrix.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		recomputeTransactions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance_recompute_transactions",
			Help:      "Transactions folded into the last recomputation.",
		}),
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
}

func (m *Metrics) UserAdded() {
	m.usersAdded.Inc()
}

func (m *Metrics) TransactionAdded(kind models.SplitKind) {
	m.transactionsAdded.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) BalanceCacheHit() {
	m.cacheHits.Inc()
}

func (m *Metrics) BalanceRecomputed(elapsed time.Duration, transactions int) {
	m.recomputes.Inc()
	m.recomputeSeconds.Observe(elapsed.Seconds())
	m.recomputeTransactions.Set(float64(transactions))
}

// Interceptor returns a Connect interceptor counting calls and their latency.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcSeconds.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}

// Handler serves the collectors registered with g in the Prometheus text
// format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
