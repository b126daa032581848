package devapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agenda_devapi"

// RequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern (e.g. "/api/clients/:id")
//   - status: response status code
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid" or "inactive"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// Metrics records RequestsTotal and RequestDuration. It runs inside the
// error handler so the status reflects the rendered error.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).Inc()
			RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
