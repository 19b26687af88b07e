package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"

	"bookshelf/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"
)

// ProviderGoogle is stored in models.Account.Provider.
const ProviderGoogle = "google"

var (
	// ErrInvalidState means the callback state was missing or not signed by us.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrInvalidIDToken means the provider's id_token failed a claim check.
	ErrInvalidIDToken = errors.New("invalid id_token")
)

// Profile is the verified subset of Google's id_token claims.
type Profile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Google runs the authorization code flow against Google.
type Google struct {
	cfg      *oauth2.Config
	stateKey []byte
}

// NewGoogle builds a client from cfg. stateSecret signs the state parameter.
func NewGoogle(cfg config.Google, stateSecret string) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     ggoogle.Endpoint,
		},
		stateKey: []byte(stateSecret),
	}
}

// WithEndpoint points the client at a different authorization server.
func (g *Google) WithEndpoint(endpoint oauth2.Endpoint) *Google {
	g.cfg.Endpoint = endpoint
	return g
}

// NewState returns a fresh signed state value.
func (g *Google) NewState() string {
	return g.MakeState(uuid.NewString())
}

// MakeState signs raw with HMAC-SHA256 as "raw.signature".
func (g *Google) MakeState(raw string) string {
	return raw + "." + base64.RawURLEncoding.EncodeToString(g.sign(raw))
}

// VerifyState reports whether got was produced by MakeState.
func (g *Google) VerifyState(got string) bool {
	raw, sig, ok := strings.Cut(got, ".")
	if !ok || raw == "" {
		return false
	}
	sigb, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	return hmac.Equal(g.sign(raw), sigb)
}

func (g *Google) sign(raw string) []byte {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return mac.Sum(nil)
}

// AuthURL returns the consent page URL carrying state.
func (g *Google) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange trades code for tokens and returns the profile from the id_token.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: missing from token response", ErrInvalidIDToken)
	}

	// The token comes straight from the token endpoint over TLS.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	return g.profileFromClaims(claims)
}

func (g *Google) profileFromClaims(claims jwt.MapClaims) (*Profile, error) {
	iss, _ := claims.GetIssuer()
	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, fmt.Errorf("%w: bad iss %q", ErrInvalidIDToken, iss)
	}
	aud, err := claims.GetAudience()
	if err != nil || !slices.Contains([]string(aud), g.cfg.ClientID) {
		return nil, fmt.Errorf("%w: bad aud", ErrInvalidIDToken)
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: missing email/sub", ErrInvalidIDToken)
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidIDToken)
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &Profile{Subject: sub, Email: email, Name: name, Picture: picture}, nil
}
