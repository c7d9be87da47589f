package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pribylovaa/go-catalog/internal/http/views"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/prefs"
	"github.com/pribylovaa/go-catalog/internal/service"
	"github.com/pribylovaa/go-catalog/internal/session"
	"github.com/pribylovaa/go-catalog/pkg/log"
)

// networks — порядок кнопок выбора рекламной сети.
var networks = []models.AdNetwork{models.AdNetworkLinkvertise, models.AdNetworkAdMaven}

// Handlers агрегирует зависимости страниц и JSON API.
type Handlers struct {
	Catalog *service.Catalog
	Session *session.Store
	Prefs   *prefs.Preferences
	Views   *views.Renderer
}

func New(c *service.Catalog, s *session.Store, p *prefs.Preferences, v *views.Renderer) *Handlers {
	return &Handlers{Catalog: c, Session: s, Prefs: p, Views: v}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// render отрисовывает страницу; сбой шаблона — 500 текстом.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	const op = "http.handlers.render"

	if err := h.Views.Render(w, status, page, data); err != nil {
		log.From(r.Context()).Error("render_failed",
			slog.String("op", op),
			slog.String("page", page),
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, views.PageError, views.ErrorPage{
		Base:    h.base(r, http.StatusText(status)),
		Status:  status,
		Message: msg,
	})
}

func (h *Handlers) base(r *http.Request, title string) views.Base {
	return views.Base{
		Title:     title,
		Session:   h.Session.State(),
		AdNetwork: h.Prefs.AdNetwork(),
		Networks:  networks,
		Path:      r.URL.Path,
	}
}

// listingQuery — разобранные sort и page из query.
type listingQuery struct {
	sort    models.SortSelection
	page    int
	hasPage bool
}

func parseListingQuery(r *http.Request) (listingQuery, error) {
	q := r.URL.Query()

	sort, err := models.ParseSort(q.Get("sort"))
	if err != nil {
		return listingQuery{}, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
	}

	lq := listingQuery{sort: sort, page: 1}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return listingQuery{}, fmt.Errorf("%w: page %q", service.ErrInvalidArgument, raw)
		}
		lq.page = n
		lq.hasPage = true
	}

	return lq, nil
}

// navigate применяет навигацию к контроллеру листинга:
//   - переход без page, смена sort или ещё не было загрузки — Load (полный набор заново);
//   - иначе клик по странице — SetPage без запроса к бэкенду.
func (h *Handlers) navigate(ctx context.Context, lq listingQuery) (models.View, error) {
	if lq.hasPage && lq.sort == h.Catalog.State().Sort && h.Catalog.Loaded() {
		return h.Catalog.SetPage(lq.page), nil
	}

	view, err := h.Catalog.Load(ctx, lq.sort)
	if err != nil {
		return view, err
	}

	if lq.hasPage && lq.page != view.Page {
		view = h.Catalog.SetPage(lq.page)
	}

	return view, nil
}

// safeReturn — локальный путь для редиректа; всё прочее превращается в "/".
func safeReturn(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}

	return p
}
