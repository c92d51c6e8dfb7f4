package handler

import (
	"net/http"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/user"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, u *user.User) error

func (h *Handler) public(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.fail(w, r, err)
		}
	}
}

// guest rejects signed-in callers with a redirect home.
func (h *Handler) guest(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Guest(r.Context()); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := fn(w, r); err != nil {
			h.fail(w, r, err)
		}
	}
}

func (h *Handler) authenticated(fn userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := auth.Authenticated(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := fn(w, r, u); err != nil {
			h.fail(w, r, err)
		}
	}
}

func (h *Handler) admin(fn userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := auth.Admin(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := fn(w, r, u); err != nil {
			h.fail(w, r, err)
		}
	}
}
