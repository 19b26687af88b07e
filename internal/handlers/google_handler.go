package handlers

import (
	"context"
	"time"

	"bookshelf/internal/metrics"
	"bookshelf/internal/oauth"
	"bookshelf/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const stateCookie = "oauth_state"

// FederatedProvider runs an OAuth authorization code flow.
type FederatedProvider interface {
	NewState() string
	VerifyState(state string) bool
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// GoogleHandler handles the Google sign-in redirect and callback.
type GoogleHandler struct {
	provider        FederatedProvider
	authService     *services.AuthService
	sessions        *services.SessionManager
	successRedirect string
	metrics         *metrics.Metrics
	log             *zap.Logger
	secure          bool
}

// NewGoogleHandler creates a new GoogleHandler.
func NewGoogleHandler(provider FederatedProvider, authService *services.AuthService, sessions *services.SessionManager, successRedirect string, m *metrics.Metrics, log *zap.Logger, secureCookies bool) *GoogleHandler {
	return &GoogleHandler{
		provider:        provider,
		authService:     authService,
		sessions:        sessions,
		successRedirect: successRedirect,
		metrics:         m,
		log:             log,
		secure:          secureCookies,
	}
}

// RegisterRoutes registers the Google sign-in routes.
func (h *GoogleHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/auth/google", h.HandleRedirect)
	router.Get("/auth/google/callback", h.HandleCallback)
}

// HandleRedirect sends the browser to Google's consent page.
func (h *GoogleHandler) HandleRedirect(c *fiber.Ctx) error {
	state := h.provider.NewState()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.provider.AuthURL(state), fiber.StatusFound)
}

// HandleCallback completes the code flow and starts a session.
func (h *GoogleHandler) HandleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) || !h.provider.VerifyState(state) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid OAuth state")
	}
	c.ClearCookie(stateCookie)

	if providerErr := c.Query("error"); providerErr != "" {
		h.metrics.AuthAttempt(oauth.ProviderGoogle, "failure")
		return fiber.NewError(fiber.StatusUnauthorized, "Google sign-in was cancelled")
	}
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing authorization code")
	}

	profile, err := h.provider.Exchange(c.UserContext(), code)
	if err != nil {
		h.metrics.AuthAttempt(oauth.ProviderGoogle, "failure")
		h.log.Warn("google exchange failed", zap.Error(err))
		return fiber.NewError(fiber.StatusUnauthorized, "Google sign-in failed")
	}

	identity, err := h.authService.SignInFederated(c.UserContext(), services.FederatedProfile{
		Provider: oauth.ProviderGoogle,
		Subject:  profile.Subject,
		Email:    profile.Email,
		Name:     profile.Name,
		Image:    profile.Picture,
	})
	if err != nil {
		h.metrics.AuthAttempt(oauth.ProviderGoogle, "failure")
		return err
	}
	h.metrics.AuthAttempt(oauth.ProviderGoogle, "success")

	token, expiresAt, err := h.sessions.Issue(identity)
	if err != nil {
		return err
	}
	setSessionCookie(c, token, expiresAt, h.secure)
	return c.Redirect(h.successRedirect, fiber.StatusFound)
}
