package ports

import (
	"context"
	"crypto/rsa"

	"fileshare-api/internal/domain/user"
)

type KeyStore interface {
	Provision(ctx context.Context, userUUID user.UUID, password string) (*user.User, error)
	LookupPublicKey(ctx context.Context, userUUID user.UUID) (*rsa.PublicKey, string, error)
	// WithPrivateKey unwraps the key for the duration of fn only.
	WithPrivateKey(ctx context.Context, userUUID user.UUID, password string, fn func(priv *rsa.PrivateKey) error) error
}
