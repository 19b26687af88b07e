package requestctx

import (
	"context"
	"testing"

	"bookshelf/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	identity := models.Identity{ID: "user-1", Email: "a@x.com"}
	ctx := WithIdentity(context.Background(), identity)
	assert.Equal(t, identity, IdentityFromContext(ctx))
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	assert.True(t, IdentityFromContext(context.Background()).IsAnonymous())
	//nolint:staticcheck // nil context is part of the contract.
	assert.True(t, IdentityFromContext(nil).IsAnonymous())
}

func TestWithIdentity_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract.
	ctx := WithIdentity(nil, models.Identity{ID: "u"})
	assert.Equal(t, "u", IdentityFromContext(ctx).ID)
}
