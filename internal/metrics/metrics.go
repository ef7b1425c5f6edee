// Package metrics holds the Prometheus collectors for the service. Collectors
// exist from package init so recording never needs a nil check; Register only
// decides which registry exposes them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	codesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_codes_issued_total",
		Help: "Verification codes written to the code store",
	})

	redemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_redemptions_total",
		Help: "Code redemption attempts by outcome",
	}, []string{"result"}) // redeemed|mismatch|expired|not_found|exists|error

	mailSendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_sends_total",
		Help: "Mail provider calls by kind and outcome",
	}, []string{"kind", "result"})

	mailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mail_send_duration_seconds",
		Help:    "Latency of mail provider calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})
)

// Register adds every collector to reg, ignoring collectors that are already registered.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		httpRequestsTotal, httpRequestDuration, codesIssuedTotal,
		redemptionsTotal, mailSendsTotal, mailSendDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveHTTP(method, route string, status int, start time.Time) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func AddCodesIssued(n int) {
	codesIssuedTotal.Add(float64(n))
}

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(result).Inc()
}

func ObserveMailSend(kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mailSendsTotal.WithLabelValues(kind, result).Inc()
	mailSendDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
