package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OTP outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeThrottled = "throttled"
	OutcomeDelivery  = "delivery_failed"
	OutcomeError     = "error"
)

var (
	OTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_requests_total",
			Help: "One-time passcode issuance attempts by outcome",
		},
		[]string{"outcome"},
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "One-time passcode verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	OTPCleanupRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_cleanup_removed_total",
			Help: "Expired one-time passcodes removed by the cleanup job",
		},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"prefix"},
	)
)

// LiveSubscribers tracks open connections on the live stats feed.
var LiveSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "live_stats_subscribers",
		Help: "Open websocket connections on the live stats feed",
	},
)
