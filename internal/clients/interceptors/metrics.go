package interceptors

import (
	"net/http"
	"time"

	"github.com/pribylovaa/go-catalog/internal/metrics"
)

// ClientMetrics считает вызовы и латентность по пути запроса (/post, /auth/login, ...).
func ClientMetrics() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			code := 0
			if err == nil {
				code = resp.StatusCode
			}

			endpoint := r.URL.Path
			metrics.BackendRequests.WithLabelValues(endpoint, metrics.StatusClass(code)).Inc()
			metrics.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

			return resp, err
		})
	}
}
