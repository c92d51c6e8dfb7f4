package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/session"
)

// ResolveSession binds the user of a valid session token to the request
// context. Requests without a usable token continue anonymously.
func (h *Handler) ResolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		u, err := h.resolve(r, token)
		switch {
		case err == nil:
			r = r.WithContext(auth.WithUser(ctx, u))
		case errors.Is(err, session.ErrInvalid), errors.Is(err, user.ErrNotFound):
			zctx.From(ctx).Debug("Ignoring session", zap.Error(err))
		default:
			zctx.From(ctx).Warn("Resolve session", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) resolve(r *http.Request, token string) (*user.User, error) {
	userID, err := h.sessions.Resolve(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return h.users.Get(r.Context(), userID)
}

// sessionToken reads the bearer token, falling back to the session cookie.
func (h *Handler) sessionToken(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(h.cookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
