package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/repository/collection"
)

// Storage keys of the account directory.
const (
	UsersKey       = "memory_gallery_users"
	CurrentUserKey = "memory_gallery_current_user"
)

// AccountDirectory owns the registered users and the single current-session
// pointer. Passwords are accepted by Register and Login but are neither stored
// nor verified.
type AccountDirectory struct {
	users   *collection.Collection[domain.User]
	current *collection.Value[domain.User]
	now     func() time.Time
	newID   func() string
}

// NewAccountDirectory creates an AccountDirectory persisting into kv.
func NewAccountDirectory(kv domain.KVStore) *AccountDirectory {
	return &AccountDirectory{
		users:   collection.New[domain.User](kv, UsersKey),
		current: collection.NewValue[domain.User](kv, CurrentUserKey),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   newID,
	}
}

type registration struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required"`
}

// ListUsers returns every registered user in registration order.
func (d *AccountDirectory) ListUsers(ctx context.Context) ([]domain.User, error) {
	return d.users.Load(ctx)
}

// Register adds a new account and makes it the current user.
// The email must not already be registered (exact, case-sensitive match).
func (d *AccountDirectory) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if err := validateStruct(registration{Email: email, Name: name}); err != nil {
		return nil, err
	}

	var user domain.User
	err := d.users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.Email == email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		user = domain.User{
			ID:        d.newID(),
			Email:     email,
			Name:      name,
			CreatedAt: d.now(),
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	if err := d.current.Store(ctx, user); err != nil {
		// Take the user back out so a failed registration leaves nothing behind.
		if rbErr := d.removeUser(context.WithoutCancel(ctx), user.ID); rbErr != nil {
			return nil, fmt.Errorf("set current user: %w (rollback: %v)", err, rbErr)
		}
		return nil, fmt.Errorf("set current user: %w", err)
	}
	return &user, nil
}

func (d *AccountDirectory) removeUser(ctx context.Context, id string) error {
	return d.users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		return slices.DeleteFunc(users, func(u domain.User) bool { return u.ID == id }), nil
	})
}

// Login makes the account registered under email the current user.
func (d *AccountDirectory) Login(ctx context.Context, email, password string) (*domain.User, error) {
	users, err := d.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	for _, u := range users {
		if u.Email == email {
			if err := d.current.Store(ctx, u); err != nil {
				return nil, fmt.Errorf("set current user: %w", err)
			}
			return &u, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

// Logout clears the current-session pointer.
func (d *AccountDirectory) Logout(ctx context.Context) error {
	if err := d.current.Clear(ctx); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

// CurrentUser returns the session user; ok is false when nobody is logged in.
func (d *AccountDirectory) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	return d.current.Load(ctx)
}

// UserExists reports whether id belongs to a registered user.
func (d *AccountDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	users, err := d.users.Load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// newID returns a ULID: unique and monotonic within the process, so records
// created in the same millisecond still get distinct, ordered ids.
func newID() string {
	return ulid.Make().String()
}
