package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-pms-api/internal/service"
)

// unmatchedRoute labels requests no route matched, keeping raw URLs with
// ids out of the label set.
const unmatchedRoute = "unmatched"

// Metrics observes request latency per route template. Routes listed in
// skip (health and scrape endpoints) are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		if _, ok := skipped[route]; ok {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
