package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-catalog/internal/http/views"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/service"
)

// Home — листинг. Ошибка загрузки не прерывает отрисовку:
// State() уже содержит Failed (пустой набор) или актуальный вид после вытеснения.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListingQuery(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Unknown sort order or page.")
		return
	}

	_, _ = h.navigate(r.Context(), lq)

	h.render(w, r, http.StatusOK, views.PageHome, views.HomePage{
		Base:    h.base(r, ""),
		Listing: h.Catalog.State(),
	})
}

// Model — карточка записи с внешней ссылкой через выбранную рекламную сеть.
func (h *Handlers) Model(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	e, err := h.Catalog.EntryByID(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		h.NotFound(w, r)
		return
	case err != nil:
		h.renderError(w, r, http.StatusBadGateway, "Could not load the model. Please try again later.")
		return
	}

	h.render(w, r, http.StatusOK, views.PageModel, views.ModelPage{
		Base:     h.base(r, e.Name),
		Entry:    e,
		Outbound: h.Prefs.OutboundURL(e.Link),
	})
}

func (h *Handlers) Premium(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PagePremium, views.ModelPage{Base: h.base(r, "Premium")})
}

func (h *Handlers) DMCA(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageDMCA, views.ModelPage{Base: h.base(r, "DMCA")})
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

// SetAdNetwork — POST /ads: выбор сети и возврат на исходную страницу.
func (h *Handlers) SetAdNetwork(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	if err := h.Prefs.SetAdNetwork(models.AdNetwork(r.PostFormValue("network"))); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Unknown ad network.")
		return
	}

	http.Redirect(w, r, safeReturn(r.PostFormValue("return")), http.StatusSeeOther)
}
