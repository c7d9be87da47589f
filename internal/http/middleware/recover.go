package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	apierrors "github.com/pribylovaa/go-catalog/internal/errors"
	logctx "github.com/pribylovaa/go-catalog/pkg/log"
)

var errPanic = errors.New("internal")

// Recover перехватывает panic и отвечает 500 без деталей.
// Браузеру (Accept: text/html) — текстовая страница, остальным — JSON-конверт ошибки.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic_recovered",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
							slog.String("stack", string(debug.Stack())),
						)

					if strings.Contains(r.Header.Get("Accept"), "text/html") {
						http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
						return
					}

					apierrors.WriteError(w, r, errPanic)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
