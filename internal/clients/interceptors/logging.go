package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-catalog/pkg/log"
)

// ClientLogging — логирование исходящих вызовов.
// Поведение:
//   - берёт X-Request-Id из запроса (или генерирует UUID и добавляет в клон);
//   - добавляет поля method/path/host, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись: msg="backend", status, dur (Warn при ошибке транспорта).
//
// Безопасность: не логирует тело и заголовок Authorization.
func ClientLogging(base *slog.Logger) Interceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("host", r.URL.Host),
			)

			out := r.Clone(log.Into(r.Context(), l))
			out.Header.Set("X-Request-Id", rid)

			resp, err := next.RoundTrip(out)
			if err != nil {
				l.Warn("backend",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("backend",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
