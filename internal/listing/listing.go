// listing — чистый конвейер «сортировка -> пагинация» над уже загруженным
// набором карточек. Пакет не делает I/O, не логирует и не мутирует вход,
// поэтому тестируется без сети и моков.
package listing

import (
	"cmp"
	"slices"
	"time"

	"github.com/pribylovaa/go-catalog/internal/models"
)

// PageSize — фиксированный размер страницы.
const PageSize = 12

// Sort возвращает НОВЫЙ срез, упорядоченный по sel.
//
// Правила:
//   - SortRecent  — createdAt по убыванию;
//   - SortPopular — views по убыванию;
//   - равные ключи сохраняют исходный относительный порядок (стабильная сортировка).
//
// Неизвестный sel трактуется как SortRecent.
func Sort(entries []models.Entry, sel models.SortSelection) []models.Entry {
	type keyed struct {
		entry   models.Entry
		created time.Time
	}

	// Время разбираем один раз, а не в каждом сравнении.
	ks := make([]keyed, len(entries))
	for i, e := range entries {
		ks[i] = keyed{entry: e}
		if sel != models.SortPopular {
			ks[i].created = e.CreatedTime()
		}
	}

	if sel == models.SortPopular {
		slices.SortStableFunc(ks, func(a, b keyed) int {
			return cmp.Compare(b.entry.Views, a.entry.Views)
		})
	} else {
		slices.SortStableFunc(ks, func(a, b keyed) int {
			return b.created.Compare(a.created)
		})
	}

	out := make([]models.Entry, len(ks))
	for i, k := range ks {
		out[i] = k.entry
	}

	return out
}

// TotalPages = ceil(n/PageSize), но не меньше 1 (пустой набор — одна пустая страница).
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}

	return (n + PageSize - 1) / PageSize
}

// ClampPage приводит номер страницы к диапазону [1, TotalPages(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}

	if total := TotalPages(n); page > total {
		return total
	}

	return page
}

// BuildView — чистая функция своих трёх аргументов:
// Items == Sort(entries, sel)[(page-1)*PageSize : page*PageSize].
//
// Номер страницы вне диапазона приводится через ClampPage; фактический
// номер возвращается в View.Page.
func BuildView(entries []models.Entry, sel models.SortSelection, page int) models.View {
	sorted := Sort(entries, sel)
	return Paginate(sorted, page)
}

// Paginate режет уже отсортированный набор на страницу без повторной сортировки.
func Paginate(sorted []models.Entry, page int) models.View {
	n := len(sorted)
	page = ClampPage(page, n)

	start := min((page-1)*PageSize, n)
	end := min(start+PageSize, n)

	items := make([]models.Entry, end-start)
	copy(items, sorted[start:end])

	return models.View{
		Items:      items,
		Page:       page,
		TotalPages: TotalPages(n),
		Total:      n,
	}
}
