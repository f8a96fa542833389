package domain

import (
	"context"
	"time"
)

// User represents a registered account in the directory.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserLookup resolves whether a user id belongs to a registered account.
type UserLookup interface {
	UserExists(ctx context.Context, id string) (bool, error)
}
