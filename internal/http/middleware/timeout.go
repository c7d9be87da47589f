package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/go-catalog/pkg/log"
)

// Timeout ограничивает запрос бюджетом d: действует более ранний из
// уже стоящего deadline и now+d. Бюджет попадает атрибутом timeout во все
// записи request-scoped логгера ниже по стеку (каталог, бэкенд-клиент).
// Значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			ctx = logctx.With(ctx, slog.Duration("timeout", d))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
