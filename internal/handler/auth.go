package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/user"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	var req user.RegisterRequest
	if err := readObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "last_name":
			req.LastName, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "password":
			req.Password, err = d.Str()
		case "confirm":
			req.Confirm, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		return err
	}
	zctx.From(r.Context()).Info("User registered", zap.Int64("user_id", u.ID))
	return h.startSession(w, r, http.StatusCreated, u)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) error {
	var email, password string
	if err := readObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			email, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}

	u, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		return err
	}
	return h.startSession(w, r, http.StatusOK, u)
}

// startSession issues a token for u, sets the cookie and answers with the
// user and the token for bearer clients.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, code int, u *user.User) error {
	token, expires, err := h.sessions.Issue(r.Context(), u.ID)
	if err != nil {
		return errors.Wrap(err, "issue session")
	}
	h.setSessionCookie(w, token, expires)
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
			e.Field("token", func(e *jx.Encoder) { e.Str(token) })
			e.Field("expires_at", func(e *jx.Encoder) { e.Str(expires.UTC().Format(time.RFC3339)) })
		})
	})
	return nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request, _ *user.User) error {
	if err := h.sessions.Revoke(r.Context(), h.sessionToken(r)); err != nil {
		return errors.Wrap(err, "revoke session")
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) me(w http.ResponseWriter, _ *http.Request, u *user.User) error {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
	return nil
}
