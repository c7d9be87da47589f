// models содержит доменные сущности каталога.
// Эти типы используются конвейером листинга, клиентом бэкенда,
// хранилищем сессии и слоем представления.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Entry — карточка каталога в том виде, в каком её отдаёт GET /post.
//
// Особенности:
//   - после загрузки не мутируется (на время жизни страницы);
//   - CreatedAt хранится строкой ISO-8601 как пришла с бэкенда.
type Entry struct {
	// ID — уникальный стабильный идентификатор.
	ID int64 `json:"id" yaml:"id"`
	// Name — отображаемое имя.
	Name string `json:"name" yaml:"name"`
	// ImageURL — ссылка на обложку.
	ImageURL string `json:"imageUrl" yaml:"image_url"`
	// Description — текст описания.
	Description string `json:"description" yaml:"description"`
	// Link — внешняя ссылка (поле megaLink на бэкенде).
	Link string `json:"megaLink" yaml:"link"`
	// Views — число просмотров (>= 0).
	Views int64 `json:"views" yaml:"views"`
	// CreatedAt — время создания, ISO-8601.
	CreatedAt string `json:"createdAt" yaml:"created_at"`
}

// Форматы createdAt, которые встречаются у бэкенда (по убыванию точности).
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime разбирает CreatedAt. Нераспознанное значение даёт нулевое время,
// то есть такая карточка считается самой старой.
func (e Entry) CreatedTime() time.Time {
	raw := strings.TrimSpace(e.CreatedAt)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}

	return time.Time{}
}

// SortSelection — выбранный порядок листинга.
type SortSelection string

const (
	// SortRecent — по убыванию времени создания.
	SortRecent SortSelection = "recent"
	// SortPopular — по убыванию просмотров.
	SortPopular SortSelection = "popular"
)

// ParseSort разбирает значение из query/флага. Пустая строка — SortRecent.
func ParseSort(s string) (SortSelection, error) {
	switch SortSelection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRecent:
		return SortRecent, nil
	case SortPopular:
		return SortPopular, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

func (s SortSelection) String() string { return string(s) }

// View — результат конвейера листинга для одной страницы.
type View struct {
	// Items — карточки текущей страницы (не больше размера страницы).
	Items []Entry `json:"items" yaml:"items"`
	// Page — фактический номер страницы (1-based, после приведения к диапазону).
	Page int `json:"page" yaml:"page"`
	// TotalPages — ceil(Total/size), но не меньше 1.
	TotalPages int `json:"total_pages" yaml:"total_pages"`
	// Total — размер всего набора.
	Total int `json:"total" yaml:"total"`
}

// ShowPagination — нужны ли контролы пагинации.
func (v View) ShowPagination() bool { return v.TotalPages > 1 }

// Pages — номера страниц 1..TotalPages для отрисовки контролов.
func (v View) Pages() []int {
	out := make([]int, v.TotalPages)
	for i := range out {
		out[i] = i + 1
	}

	return out
}

// ListingState — снимок контроллера листинга для слоя представления.
type ListingState struct {
	Sort SortSelection `json:"sort"`
	// Loading — идёт загрузка (рисуем скелетоны).
	Loading bool `json:"loading"`
	// Failed — последняя загрузка упала; View пустой.
	Failed bool `json:"failed"`
	View   View `json:"view"`
}
