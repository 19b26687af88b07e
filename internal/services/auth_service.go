package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/models"
	"bookshelf/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignUp holds the fields for a password registration.
type SignUp struct {
	Email    string
	Password string
	Name     string
}

// FederatedProfile is a verified identity asserted by an external provider.
type FederatedProfile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Image    string
}

// AuthService registers users and verifies credentials.
type AuthService struct {
	userRepo repositories.UserRepository
	events   EventPublisher
	log      *zap.Logger
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg config.Auth, events EventPublisher, log *zap.Logger) *AuthService {
	if events == nil {
		events = NoopPublisher{}
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo: userRepo,
		events:   events,
		log:      log,
		cost:     cost,
	}
}

// Register hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, in SignUp) (models.Identity, error) {
	if in.Email == "" || in.Password == "" {
		return models.Identity{}, invalid("Email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.Identity{}, invalid("Password is too long")
		}
		return models.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return models.Identity{}, ErrEmailTaken
		}
		return models.Identity{}, storeError("register user", err)
	}

	s.publish(ctx, EventUserRegistered, UserRegistered{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	})
	return user.Identity(), nil
}

// Verify checks an email/password pair. Unknown email, password-less account
// and wrong password all return ErrAuthentication.
func (s *AuthService) Verify(ctx context.Context, email, password string) (models.Identity, error) {
	if email == "" || password == "" {
		return models.Identity{}, ErrAuthentication
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return models.Identity{}, storeError("find user", err)
	}
	if user == nil || !user.HasPassword() {
		// Same bcrypt work as a real comparison, so response time does not reveal the account.
		_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
		return models.Identity{}, ErrAuthentication
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, ErrAuthentication
	}
	return user.Identity(), nil
}

// SignInFederated finds or creates the user for a provider-verified email and
// links the provider account to it.
func (s *AuthService) SignInFederated(ctx context.Context, p FederatedProfile) (models.Identity, error) {
	if p.Email == "" || p.Provider == "" || p.Subject == "" {
		return models.Identity{}, ErrAuthentication
	}

	user, err := s.findOrCreateFederated(ctx, p)
	if err != nil {
		return models.Identity{}, err
	}

	account := &models.Account{
		UserID:            user.ID,
		Provider:          p.Provider,
		ProviderAccountID: p.Subject,
	}
	if err := s.userRepo.LinkAccount(ctx, account); err != nil {
		return models.Identity{}, storeError("link account", err)
	}
	return user.Identity(), nil
}

func (s *AuthService) findOrCreateFederated(ctx context.Context, p FederatedProfile) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, p.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, storeError("find user", err)
	}

	user = &models.User{Email: p.Email, Name: p.Name, Image: p.Image}
	err = s.userRepo.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrDuplicateEmail) {
		return nil, storeError("create federated user", err)
	}

	// Lost a race with a concurrent first sign-in for the same email.
	user, err = s.userRepo.FindByEmail(ctx, p.Email)
	if err != nil {
		return nil, storeError("find user", err)
	}
	return user, nil
}

func (s *AuthService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
		if err != nil {
			s.log.Error("failed to generate fallback hash", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, key string, event any) {
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
