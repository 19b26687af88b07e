package repositories

import (
	"context"

	"bookshelf/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// FindByEmail matches the email exactly. Returns ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Create stores a new user, assigning an ID if empty. Returns ErrDuplicateEmail
	// when the email is taken.
	Create(ctx context.Context, user *models.User) error
	// LinkAccount records a federated account for a user. Linking an already
	// linked account is a no-op.
	LinkAccount(ctx context.Context, account *models.Account) error
}
