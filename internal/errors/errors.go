// errors стандартизирует ответы об ошибках JSON API (/api).
// На вход он принимает ошибку сервисного слоя или клиента бэкенда,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Исключение — AuthError: его текст пришёл от бэкенда и предназначен пользователю.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-catalog/internal/clients/backend"
	"github.com/pribylovaa/go-catalog/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - *backend.AuthError -> 401 с сообщением бэкенда;
//   - *backend.NetworkError -> 502 (отмена/таймаут внутри неё — 499/504);
//   - сентинелы сервиса: ErrEntryNotFound -> 404, ErrInvalidArgument -> 400;
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504;
//   - прочее -> 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	httpStatus, code, msg := classify(err)

	return httpStatus, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	// Отмена и дедлайн важнее транспорта: NetworkError их оборачивает.
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	}

	var ae *backend.AuthError
	if errors.As(err, &ae) {
		msg := ae.Message
		if msg == "" {
			msg = "unauthenticated"
		}
		return http.StatusUnauthorized, "unauthenticated", msg
	}

	var ne *backend.NetworkError
	if errors.As(err, &ne) {
		return http.StatusBadGateway, "bad_gateway", "backend unavailable"
	}

	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict, "superseded", "superseded by a newer request"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
