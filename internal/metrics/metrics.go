package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts daily claim attempts by outcome
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covenant_claims_total",
			Help: "Total number of daily claim attempts",
		},
		[]string{"outcome"},
	)

	// RepostsTotal counts accepted repost submissions by platform
	RepostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covenant_reposts_total",
			Help: "Total number of accepted repost submissions",
		},
		[]string{"platform"},
	)

	// EmailsSentTotal counts magic-link emails by token type and status
	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covenant_emails_sent_total",
			Help: "Total number of magic-link emails sent",
		},
		[]string{"type", "status"},
	)

	// RateLimitedTotal counts requests denied by the email rate limiter
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covenant_rate_limited_total",
			Help: "Total number of requests denied by the email rate limiter",
		},
	)

	// VideoPrepareDuration tracks remote video preparation time
	VideoPrepareDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "covenant_video_prepare_duration_seconds",
			Help:    "Remote video preparation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AssetsSweptTotal counts expired prepared assets removed by lazy cleanup
	AssetsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covenant_assets_swept_total",
			Help: "Total number of expired prepared assets removed by lazy cleanup",
		},
	)
)
