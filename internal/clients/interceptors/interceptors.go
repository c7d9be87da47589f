// interceptors предоставляет набор клиентских http.RoundTripper-обёрток для
// исходящих вызовов к REST-бэкенду.
package interceptors

import (
	"net/http"
)

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Interceptor — обёртка над http.RoundTripper.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// Chain применяет интерсепторы к base в порядке перечисления:
// первый в списке — внешний. base == nil — http.DefaultTransport.
func Chain(base http.RoundTripper, ics ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	for i := len(ics) - 1; i >= 0; i-- {
		rt = ics[i](rt)
	}

	return rt
}
