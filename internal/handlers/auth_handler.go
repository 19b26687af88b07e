package handlers

import (
	"errors"
	"time"

	"bookshelf/internal/metrics"
	"bookshelf/internal/middleware"
	"bookshelf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *services.SessionManager
	validate    *validator.Validate
	metrics     *metrics.Metrics
	log         *zap.Logger
	secure      bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies sets the Secure
// flag on the session cookie.
func NewAuthHandler(authService *services.AuthService, sessions *services.SessionManager, m *metrics.Metrics, log *zap.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		validate:    newValidator(),
		metrics:     m,
		log:         log,
		secure:      secureCookies,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sign-up", h.HandleSignUp)
	router.Post("/sign-in", h.HandleSignIn)
	router.Post("/sign-out", h.HandleSignOut)
	router.Get("/session", middleware.RequireSession(), h.HandleSession)
}

// SignUpRequest represents the request body for registration.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

// HandleSignUp registers a password account.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	identity, err := h.authService.Register(c.UserContext(), services.SignUp{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.metrics.AuthAttempt("sign_up", "failure")
		return err
	}
	h.metrics.AuthAttempt("sign_up", "success")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    identity,
	})
}

// SignInRequest represents the request body for password sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleSignIn verifies credentials and issues a session token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	identity, err := h.authService.Verify(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempt("password", "failure")
		if errors.Is(err, services.ErrAuthentication) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}
	h.metrics.AuthAttempt("password", "success")

	token, expiresAt, err := h.sessions.Issue(identity)
	if err != nil {
		return err
	}
	setSessionCookie(c, token, expiresAt, h.secure)

	return c.JSON(fiber.Map{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      identity,
	})
}

// HandleSignOut clears the session cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) HandleSignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// HandleSession returns the caller's identity.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.IdentityFrom(c)})
}

func setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
