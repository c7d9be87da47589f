// service содержит прикладную логику каталога: контроллер листинга
// (владелец загруженного набора записей и текущих sort/page) и поиск записи по id.
package service

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-catalog/internal/models"
)

var (
	// ErrEntryNotFound — записи с таким id нет в наборе бэкенда.
	// Транспорт: 404.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidArgument - некорректные входные аргументы (sort, page, id).
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSuperseded — загрузку вытеснил более поздний Load; состояние она не меняла.
	// Транспорт: 409 (в UI не показывается, рисуется актуальное состояние).
	ErrSuperseded = errors.New("superseded by a newer load")
)

// EntryFetcher — источник полного списка записей (GET /post).
type EntryFetcher interface {
	FetchEntries(ctx context.Context) ([]models.Entry, error)
}
