package services

import (
	"errors"
	"fmt"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// SessionTTL is the lifetime of a session token. There is no renewal.
const SessionTTL = 30 * 24 * time.Hour

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"picture,omitempty"`
	jwt.StandardClaims
}

// SessionManager issues and resolves stateless HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(cfg config.Session) *SessionManager {
	return &SessionManager{
		secret: []byte(cfg.Secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue signs a token for the identity and returns it with its expiry.
func (m *SessionManager) Issue(identity models.Identity) (string, time.Time, error) {
	if identity.ID == "" || identity.Email == "" {
		return "", time.Time{}, errors.New("identity requires id and email")
	}

	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		Image: identity.Image,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   identity.ID,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Resolve verifies the signature and expiry. Any failure yields ok == false;
// callers treat that as an anonymous request.
func (m *SessionManager) Resolve(tokenString string) (models.Identity, bool) {
	if tokenString == "" {
		return models.Identity{}, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, false
	}
	// StandardClaims.Valid accepts a missing exp.
	if claims.ExpiresAt == 0 || claims.Subject == "" || claims.Email == "" {
		return models.Identity{}, false
	}

	return models.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Image,
	}, true
}
