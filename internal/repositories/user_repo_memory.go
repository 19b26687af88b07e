package repositories

import (
	"context"
	"sync"
	"time"

	"bookshelf/internal/models"

	"github.com/google/uuid"
)

type accountKey struct {
	provider string
	id       string
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users    map[string]models.User // keyed by email
	accounts map[accountKey]models.Account
	mu       sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:    make(map[string]models.User),
		accounts: make(map[accountKey]models.Account),
	}
}

// FindByEmail returns the user with exactly this email.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Email] = *user
	return nil
}

// LinkAccount records the account unless the pair is already linked.
func (r *MemoryUserRepository) LinkAccount(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := accountKey{provider: account.Provider, id: account.ProviderAccountID}
	if _, ok := r.accounts[key]; ok {
		return nil
	}
	account.ID = uint(len(r.accounts) + 1)
	account.CreatedAt = time.Now()
	r.accounts[key] = *account
	return nil
}

// Accounts returns the number of linked accounts.
func (r *MemoryUserRepository) Accounts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
