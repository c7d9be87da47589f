package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pribylovaa/go-catalog/internal/listing"
	"github.com/pribylovaa/go-catalog/internal/metrics"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/pkg/log"
)

// Catalog — контроллер листинга. Один на процесс, внедряется в слой представления.
//
// Политика конкурентных загрузок — cancel-and-replace:
//   - каждый Load отменяет незавершённый предыдущий;
//   - вытесненный Load возвращает ErrSuperseded и состояние не пишет,
//     поэтому State() всегда отражает ПОСЛЕДНИЕ запрошенные параметры.
type Catalog struct {
	fetcher EntryFetcher

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	entries []models.Entry // как пришло от бэкенда
	sorted  []models.Entry
	sort    models.SortSelection
	page    int
	loading bool
	failed  bool
	loaded  bool
}

// NewCatalog создаёт пустой контроллер (sort=recent, page=1, ничего не загружено).
func NewCatalog(fetcher EntryFetcher) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		sort:    models.SortRecent,
		page:    1,
	}
}

// Load загружает полный набор и пересобирает вид под sort. Страница сбрасывается на 1.
//
// Ошибки:
//   - ErrInvalidArgument — неизвестный sort;
//   - ErrSuperseded — загрузку вытеснил следующий Load;
//   - ошибка фетчера — набор очищается, выставляется Failed, ошибка возвращается наверх;
//   - отмена ctx вызывающего — набор не трогается, снимается только Loading.
func (c *Catalog) Load(ctx context.Context, sort models.SortSelection) (models.View, error) {
	const op = "service.catalog.Load"

	if sort != models.SortRecent && sort != models.SortPopular {
		return models.View{}, fmt.Errorf("%s: sort %q: %w", op, sort, ErrInvalidArgument)
	}

	// sort нужен и записям бэкенд-клиента ниже по стеку.
	ctx = log.With(ctx, slog.String("sort", sort.String()))
	lg := log.From(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	my := c.seq
	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.sort = sort
	c.page = 1
	c.loading = true
	// До прихода свежих данных держим старый набор, но уже в новом порядке.
	c.sorted = listing.Sort(c.entries, sort)
	c.mu.Unlock()
	defer cancel()

	lg.Debug("list_entries_request",
		slog.String("op", op),
		slog.Uint64("seq", my),
	)

	entries, err := c.fetcher.FetchEntries(lctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if my != c.seq {
		metrics.ListingLoads.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		lg.Debug("list_entries_superseded",
			slog.String("op", op),
			slog.Uint64("seq", my),
			slog.Uint64("latest", c.seq),
		)

		return models.View{}, fmt.Errorf("%s: %w", op, ErrSuperseded)
	}

	c.cancel = nil
	c.loading = false

	if err != nil {
		metrics.ListingLoads.WithLabelValues(metrics.OutcomeError).Inc()

		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			lg.Warn("list_entries_canceled",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)

			return listing.Paginate(c.sorted, c.page), fmt.Errorf("%s: %w", op, err)
		}

		c.entries = nil
		c.sorted = nil
		c.failed = true
		c.loaded = true

		lg.Error("list_entries_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return listing.Paginate(nil, 1), fmt.Errorf("%s: %w", op, err)
	}

	metrics.ListingLoads.WithLabelValues(metrics.OutcomeOK).Inc()

	c.entries = entries
	c.sorted = listing.Sort(entries, sort)
	c.failed = false
	c.loaded = true
	view := listing.Paginate(c.sorted, c.page)

	lg.Info("list_entries_ok",
		slog.String("op", op),
		slog.Int("total", view.Total),
		slog.Int("total_pages", view.TotalPages),
	)

	return view, nil
}

// SetPage переключает страницу внутри уже загруженного набора, без запроса к бэкенду.
// Номер вне [1, TotalPages] приводится к ближайшей границе.
func (c *Catalog) SetPage(page int) models.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.page = listing.ClampPage(page, len(c.sorted))
	return listing.Paginate(c.sorted, c.page)
}

// State — снимок для отрисовки.
func (c *Catalog) State() models.ListingState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ListingState{
		Sort:    c.sort,
		Loading: c.loading,
		Failed:  c.failed,
		View:    listing.Paginate(c.sorted, c.page),
	}
}

// Loaded — был ли хотя бы один завершённый Load (успешный или нет).
func (c *Catalog) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loaded
}
