package requestctx

import (
	"context"

	"bookshelf/internal/models"
)

// identityContextKey is the context key for the resolved session identity.
type identityContextKey struct{}

// WithIdentity stores the session identity in context.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the session identity stored in context, or the
// anonymous identity when none was stored.
func IdentityFromContext(ctx context.Context) models.Identity {
	if ctx == nil {
		return models.Identity{}
	}
	identity, _ := ctx.Value(identityContextKey{}).(models.Identity)
	return identity
}
