package middleware

import (
	"strings"

	"bookshelf/internal/models"
	"bookshelf/internal/requestctx"
	"bookshelf/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session_token"

const identityLocal = "identity"

// SessionResolver turns a session token into an identity.
type SessionResolver interface {
	Resolve(token string) (models.Identity, bool)
}

// LoadSession resolves the caller's session from "Authorization: Bearer <token>"
// or the session cookie. Requests without a valid token continue as anonymous.
func LoadSession(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(SessionCookie)
		}
		if token == "" {
			return c.Next()
		}

		identity, ok := sessions.Resolve(token)
		if !ok {
			return c.Next()
		}
		c.Locals(identityLocal, identity)
		c.SetUserContext(requestctx.WithIdentity(c.UserContext(), identity))
		return c.Next()
	}
}

// RequireSession rejects anonymous callers with 401.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c).IsAnonymous() {
			return services.ErrAuthentication
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity LoadSession attached, or anonymous.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	identity, _ := c.Locals(identityLocal).(models.Identity)
	return identity
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
