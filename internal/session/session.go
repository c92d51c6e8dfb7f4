// Package session issues and resolves sign-in sessions.
//
// A session is an HS256 JWT whose ID (jti) is registered in a Store for the
// lifetime of the token. Revoking deletes the ID, so a signed-out token stops
// resolving even before it expires.
package session

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "storefront"

var (
	// ErrInvalid is returned for tokens that are malformed, expired, revoked
	// or signed with another key.
	ErrInvalid = errors.New("invalid session")
	// ErrNotFound is returned by a Store for an unknown session ID.
	ErrNotFound = errors.New("session not found")
)

// Store registers live session IDs.
type Store interface {
	Put(ctx context.Context, id string, userID int64, ttl time.Duration) error
	// Lookup returns the user bound to id or ErrNotFound.
	Lookup(ctx context.Context, id string) (int64, error)
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Options configures a Manager.
type Options struct {
	Secret []byte
	TTL    time.Duration
}

// Manager issues, resolves and revokes session tokens.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager. The secret must be non-empty.
func NewManager(store Store, opts Options) (*Manager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{
		store:  store,
		secret: opts.Secret,
		ttl:    opts.TTL,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for userID and registers it.
func (m *Manager) Issue(ctx context.Context, userID int64) (token string, expires time.Time, err error) {
	now := m.now()
	expires = now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	if err := m.store.Put(ctx, claims.ID, userID, m.ttl); err != nil {
		return "", time.Time{}, errors.Wrap(err, "store session")
	}
	return token, expires, nil
}

// Resolve returns the user ID of a live token.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, error) {
	claims, err := m.parse(token)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.Wrap(ErrInvalid, "subject")
	}

	stored, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, errors.Wrap(ErrInvalid, "revoked")
		}
		return 0, errors.Wrap(err, "lookup session")
	}
	if stored != userID {
		return 0, errors.Wrap(ErrInvalid, "subject mismatch")
	}
	return userID, nil
}

// Revoke ends the session carried by token. Revoking an invalid or already
// revoked token is a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	if claims.ID == "" {
		return nil, errors.Wrap(ErrInvalid, "missing id")
	}
	return &claims, nil
}
