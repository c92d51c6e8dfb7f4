// Package auth holds the access policy predicates evaluated at the top of
// protected operations.
package auth

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/user"
)

var (
	// ErrUnauthorized is returned when no user is bound to the request.
	ErrUnauthorized = errors.New("sign in required")
	// ErrForbidden is returned when the bound user is not an admin.
	ErrForbidden = errors.New("admin access required")
	// ErrAlreadyAuthenticated is returned by Guest when a user is bound.
	ErrAlreadyAuthenticated = errors.New("already signed in")
)

type userKey struct{}

// WithUser binds u to the context.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user bound to the context.
func UserFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey{}).(*user.User)
	return u, ok && u != nil
}

// Authenticated returns the bound user or ErrUnauthorized.
func Authenticated(ctx context.Context) (*user.User, error) {
	u, ok := UserFrom(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// Admin returns the bound user when it is an admin. It fails with
// ErrUnauthorized when nobody is bound and ErrForbidden otherwise.
func Admin(ctx context.Context) (*user.User, error) {
	u, err := Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, ErrForbidden
	}
	return u, nil
}

// Guest fails with ErrAlreadyAuthenticated when a user is bound. It guards
// the registration and sign-in operations.
func Guest(ctx context.Context) error {
	if _, ok := UserFrom(ctx); ok {
		return ErrAlreadyAuthenticated
	}
	return nil
}
