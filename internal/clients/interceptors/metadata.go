package interceptors

import (
	"net/http"
)

type CtxKey string

const CtxRequestID CtxKey = "request_id"

// ClientWithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и не задан вызывающим),
//   - User-Agent (если передан параметром).
//
// Authorization не трогается: токен ставит только вызов /auth/me.
// Исходный *http.Request не меняется: заголовки пишутся в клон.
func ClientWithMetadata(userAgent string) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()

			var rid string
			if v, _ := ctx.Value(CtxRequestID).(string); v != "" && r.Header.Get("X-Request-Id") == "" {
				rid = v
			}

			if rid == "" && userAgent == "" {
				return next.RoundTrip(r)
			}

			out := r.Clone(ctx)
			if rid != "" {
				out.Header.Set("X-Request-Id", rid)
			}
			if userAgent != "" {
				out.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(out)
		})
	}
}
