package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corebooks",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corebooks",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// JournalsPosted counts journals transitioned to POSTED, labelled by
	// whether the posting came from a reversal.
	JournalsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corebooks",
			Name:      "journals_posted_total",
			Help:      "Total number of journals posted",
		},
		[]string{"kind"}, // "entry" or "reversal"
	)

	// VouchersPosted counts vouchers transitioned to POSTED by voucher type.
	VouchersPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corebooks",
			Name:      "vouchers_posted_total",
			Help:      "Total number of vouchers posted",
		},
		[]string{"type"},
	)
)

// Middleware records request counts and latencies per method/status.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
