package backend

import (
	"fmt"
)

// Сообщения AuthError, когда бэкенд не прислал тела.
const (
	MsgLoginFailed    = "Failed to login"
	MsgRegisterFailed = "Failed to register"
)

// NetworkError — вызов не состоялся или вернул неуспешный статус.
// Status == 0 — ответа не было (транспорт, отмена, таймаут); тогда Err содержит причину.
// Тело ответа в ошибку не попадает.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError — неуспешный статус на login/register.
// Message — текст тела ответа бэкенда (или общий текст), его показываем пользователю как есть.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }
