// storage определяет контракт «долговременного локального хранилища»
// для сессии: плоское key/value, ключи token и user.
package storage

import (
	"context"
	"errors"
)

// Ключи, под которыми хранится сессия.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNotFound — ключ отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
)

// LocalStorage — долговременное key/value хранилище.
type LocalStorage interface {
	// Get возвращает значение по ключу; ErrNotFound, если ключа нет.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение (перезаписывая существующее).
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается.
	Remove(ctx context.Context, key string) error
	// Close освобождает ресурсы драйвера.
	Close() error
}
