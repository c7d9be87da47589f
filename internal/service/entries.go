package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/pkg/log"
)

// EntryByID возвращает запись по идентификатору.
// У бэкенда нет эндпоинта по id, поэтому берётся полный список и ищется в нём.
// Состояние листинга не меняется.
//
// Ошибки:
//   - ErrEntryNotFound — записи нет в ответе бэкенда;
//   - ошибки фетчера — обёрнутые и прокинуты наверх.
func (c *Catalog) EntryByID(ctx context.Context, id int64) (models.Entry, error) {
	const op = "service.entries.EntryByID"

	lg := log.From(ctx)

	entries, err := c.fetcher.FetchEntries(ctx)
	if err != nil {
		lg.Error("entry_by_id_fetch_failed",
			slog.String("op", op),
			slog.Int64("id", id),
			slog.String("err", err.Error()),
		)

		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, e := range entries {
		if e.ID == id {
			lg.Info("entry_by_id_ok",
				slog.String("op", op),
				slog.Int64("id", id),
			)

			return e, nil
		}
	}

	lg.Warn("entry_by_id_not_found",
		slog.String("op", op),
		slog.Int64("id", id),
	)

	return models.Entry{}, fmt.Errorf("%s: id %d: %w", op, id, ErrEntryNotFound)
}
