package services

import (
	"context"

	"fileshare-api/internal/application/apperr"
)

// readOnce retries an idempotent read a single time on a storage failure.
// Writes never go through here.
func readOnce[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !apperr.IsKind(err, apperr.KindStorage) || ctx.Err() != nil {
		return v, err
	}

	return fn(ctx)
}
