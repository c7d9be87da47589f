// views — серверная отрисовка страниц каталога (html/template, шаблоны встроены в бинарник).
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Страницы; имя совпадает с файлом в templates/.
const (
	PageHome     = "home"
	PageModel    = "model"
	PagePremium  = "premium"
	PageDMCA     = "dmca"
	PageLogin    = "login"
	PageRegister = "register"
	PageError    = "error"
)

// SkeletonCount — сколько карточек-заглушек рисовать во время загрузки.
const SkeletonCount = 12

// Base — общие данные шапки и подвала.
type Base struct {
	Title     string
	Session   session.State
	AdNetwork models.AdNetwork
	Networks  []models.AdNetwork
	// Path — текущий путь, для подсветки пункта меню и возврата после POST /ads.
	Path string
}

// HomePage — листинг.
type HomePage struct {
	Base
	Listing models.ListingState
}

// Skeletons — индексы заглушек для range в шаблоне.
func (HomePage) Skeletons() []int { return make([]int, SkeletonCount) }

// ModelPage — карточка записи.
type ModelPage struct {
	Base
	Entry    models.Entry
	Outbound string
}

// FormPage — login/register.
type FormPage struct {
	Base
	Name  string
	Email string
	Error string
}

// ErrorPage — 404 и прочие ошибки.
type ErrorPage struct {
	Base
	Status  int
	Message string
}

// Renderer держит разобранные наборы шаблонов: layout + страница.
type Renderer struct {
	pages map[string]*template.Template
}

// New разбирает все страницы. Ошибка шаблона — ошибка старта.
func New() (*Renderer, error) {
	const op = "views.New"

	funcs := template.FuncMap{
		"compact": CompactNumber,
		"date":    FormatDate,
		"add":     func(a, b int) int { return a + b },
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}

		tpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", f)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		r.pages[name] = tpl
	}

	return r, nil
}

// Render исполняет страницу в буфер и только потом пишет статус и тело,
// чтобы ошибка шаблона не оставила полуотданный ответ.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	const op = "views.Render"

	tpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, page)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("%s: %s: %w", op, page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)

	return nil
}
