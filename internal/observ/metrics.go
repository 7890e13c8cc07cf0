package observ

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookprice_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lookprice_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookprice_scans_total",
		Help: "Public barcode scans by outcome",
	}, []string{"result"})
)

// MetricsMiddleware records a counter and duration sample per request,
// labeled by route template (c.FullPath, not the raw URL — raw URLs with
// slugs and barcodes in them would explode label cardinality).
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveScan counts a public scan with its outcome: "hit", "product_miss",
// or "store_miss".
func ObserveScan(result string) {
	scansTotal.WithLabelValues(result).Inc()
}
