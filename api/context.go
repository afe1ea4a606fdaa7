package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/services"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the resolved caller to the context
func ctxWithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity returns the caller, or nil for anonymous requests
func ctxGetIdentity(ctx context.Context) *services.Identity {
	identity, _ := ctx.Value(identityKey).(*services.Identity)
	return identity
}

// ctxGetUserID returns the caller's ID, or uuid.Nil for anonymous requests
func ctxGetUserID(ctx context.Context) uuid.UUID {
	if identity := ctxGetIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return uuid.Nil
}
