package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-catalog/internal/errors"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/service"
	"github.com/pribylovaa/go-catalog/internal/session"
)

// entryResponse — запись с готовой внешней ссылкой.
type entryResponse struct {
	models.Entry
	OutboundURL string `json:"outboundUrl"`
}

// sessionResponse — состояние сессии для JSON API.
type sessionResponse struct {
	session.State
	AdNetwork      models.AdNetwork   `json:"ad_network"`
	FallbackPolicy string             `json:"fallback_policy"`
	Token          *session.TokenInfo `json:"token,omitempty"`
}

// ListEntries — GET /api/entries?sort=&page=.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListingQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	view, err := h.navigate(r.Context(), lq)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GetEntry — GET /api/entries/{id}.
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	e, err := h.Catalog.EntryByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entryResponse{Entry: e, OutboundURL: h.Prefs.OutboundURL(e.Link)})
}

// GetSession — GET /api/session: пользователь, ошибка, сведения о токене.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	out := sessionResponse{
		State:          h.Session.State(),
		AdNetwork:      h.Prefs.AdNetwork(),
		FallbackPolicy: h.Session.Policy().String(),
	}

	ti, err := h.Session.TokenInfo(r.Context())
	switch {
	case err == nil:
		out.Token = &ti
	case !errors.Is(err, session.ErrNoSession):
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
