package handlers

import (
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-catalog/internal/errors"
	"github.com/pribylovaa/go-catalog/internal/http/views"
)

func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.Session.State().SignedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, views.PageLogin, views.FormPage{Base: h.base(r, "Sign In")})
}

// Login — POST /login. Неудача рисует форму с текстом ошибки сессии
// (сообщение бэкенда или "Failed to login").
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))

	if _, err := h.Session.Login(r.Context(), email, r.PostFormValue("password")); err != nil {
		status, _ := apierrors.ToHTTP(err)
		h.render(w, r, status, views.PageLogin, views.FormPage{
			Base:  h.base(r, "Sign In"),
			Email: email,
			Error: h.Session.State().Error,
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.Session.State().SignedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, views.PageRegister, views.FormPage{Base: h.base(r, "Register")})
}

// Register — POST /register; контракт как у Login.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))

	if _, err := h.Session.Register(r.Context(), name, email, r.PostFormValue("password")); err != nil {
		status, _ := apierrors.ToHTTP(err)
		h.render(w, r, status, views.PageRegister, views.FormPage{
			Base:  h.base(r, "Register"),
			Name:  name,
			Email: email,
			Error: h.Session.State().Error,
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout — POST /logout; всегда успешен.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Logout(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
