package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrEmailTaken is returned when signing up with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidLogin is returned for an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidLogin = errors.New("invalid email or password")
	// ErrNotFound is returned when a user id does not exist.
	ErrNotFound = errors.New("user not found")
)

// User is a storefront account. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user. Returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, u *User) error
	// GetByEmail returns the user with the given email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns the user with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
}
