package http

import (
	"context"

	"github.com/google/uuid"
)

type profileIDKey struct{}

func withProfileID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, profileIDKey{}, id)
}

// ProfileIDFromContext returns the logged-in profile, uuid.Nil for visitors
func ProfileIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(profileIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
