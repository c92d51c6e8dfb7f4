package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("an account already exists for this email")
	// ErrPasswordMismatch is returned when the password confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("wrong email or password")
	// ErrInvalidInput is returned when a required registration field is empty.
	ErrInvalidInput = errors.New("invalid registration")
)

// User is a registered storefront account.
type User struct {
	ID           int64
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// FullName returns "name last-name".
func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts u and sets its ID. It returns ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetAdmin(ctx context.Context, id int64, admin bool) error
}
