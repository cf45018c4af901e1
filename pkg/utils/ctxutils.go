// pkg/utils/ctxutils.go

package utils

import (
	"context"

	"factory-ops/internal/entities"
	"factory-ops/pkg/contextkeys"
	apperrors "factory-ops/pkg/errors"
)

// WithActor кладёт аутентифицированный профиль в контекст.
func WithActor(ctx context.Context, actor entities.Profile) context.Context {
	ctx = context.WithValue(ctx, contextkeys.ActorKey, actor)
	return context.WithValue(ctx, contextkeys.UserIDKey, actor.ID)
}

func GetActorFromCtx(ctx context.Context) (entities.Profile, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(entities.Profile)
	if !ok {
		return entities.Profile{}, apperrors.ErrActorNotFoundInContext
	}
	return actor, nil
}

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrActorNotFoundInContext
	}
	return userID, nil
}
