package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest holds the registration form fields.
type RegisterRequest struct {
	Name     string
	LastName string
	Email    string
	Password string
	Confirm  string
}

// Service implements registration and credential checks.
type Service struct {
	users Repository
	cost  int
}

// NewService creates a user Service hashing passwords with bcrypt at the
// given cost. A zero cost selects bcrypt.DefaultCost.
func NewService(users Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost}
}

// Register creates a non-admin user after checking the confirmation and
// email uniqueness.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := NormalizeEmail(req.Email)
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, errors.Wrap(ErrInvalidInput, "name is required")
	case strings.TrimSpace(req.LastName) == "":
		return nil, errors.Wrap(ErrInvalidInput, "last name is required")
	case email == "":
		return nil, errors.Wrap(ErrInvalidInput, "email is required")
	case req.Password == "":
		return nil, errors.Wrap(ErrInvalidInput, "password is required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "lookup email")
	}

	if req.Password != req.Confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.Wrap(ErrInvalidInput, "password is too long")
		}
		return nil, err
	}

	u := &User{
		Name:         strings.TrimSpace(req.Name),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Authenticate returns the user owning email when password matches its hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "lookup email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}
