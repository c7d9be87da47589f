package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-catalog/internal/clients/interceptors"
)

// maxRequestIDLen — длиннее входящий X-Request-Id не принимаем.
const maxRequestIDLen = 64

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт входящий X-Request-Id, если он годится (isValidRequestID);
//  2. иначе генерирует uuid без дефисов (32 hex-символа);
//  3. кладёт id в Response Header, Request Header и в контекст по ключу
//     interceptors.CtxRequestID (его читает ClientWithMetadata при вызовах бэкенда).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if !isValidRequestID(id) {
				id = genID()
				// errors.WriteError берёт id из заголовка запроса.
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), interceptors.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isValidRequestID: непустой, не длиннее maxRequestIDLen,
// только [A-Za-z0-9._-]. Такой id безопасно уходит в логи и к бэкенду.
func isValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}

	return strings.IndexFunc(id, func(c rune) bool {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return false
		case c == '.', c == '_', c == '-':
			return false
		default:
			return true
		}
	}) < 0
}

func genID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
