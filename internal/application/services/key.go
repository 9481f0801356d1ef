package services

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/cryptox"
	"fileshare-api/internal/infrastructure/metrics"
)

type KeyService struct {
	userRepository user.Repository
	rsaBits        int
	kdf            cryptox.KDFParams
	clock          func() time.Time
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewKeyService(
	userRepository user.Repository,
	rsaBits int,
	kdf cryptox.KDFParams,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *KeyService {
	return &KeyService{
		userRepository: userRepository,
		rsaBits:        rsaBits,
		kdf:            kdf,
		clock:          time.Now,
		logger:         logger,
		mCounter:       mCounter,
	}
}

var _ ports.KeyStore = (*KeyService)(nil)

func (ks *KeyService) fetchUser(ctx context.Context, userUUID user.UUID) (*user.User, error) {
	return readOnce(ctx, func(ctx context.Context) (*user.User, error) {
		u, err := ks.userRepository.FetchUserByID(ctx, userUUID)
		if err != nil {
			return nil, apperr.Storage("fetch user", err)
		}
		return u, nil
	})
}

// Provision creates the user's keypair. The account password both
// authorizes the call and wraps the private key.
func (ks *KeyService) Provision(ctx context.Context, userUUID user.UUID, password string) (*user.User, error) {
	u, err := ks.fetchUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	if u.HasPublicKey() {
		return nil, apperr.ErrKeyExists
	}
	if u.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidPassword
	}

	priv, err := cryptox.GenerateKeyPair(ks.rsaBits)
	if err != nil {
		return nil, apperr.Storage("generate key pair", err)
	}
	defer cryptox.WipePrivateKey(priv)

	pemKey, err := cryptox.EncodePublicKey(&priv.PublicKey)
	if err != nil {
		return nil, apperr.Storage("encode public key", err)
	}
	wrapped, err := cryptox.WrapPrivateKey(priv, []byte(password), ks.kdf)
	if err != nil {
		return nil, apperr.Storage("wrap private key", err)
	}

	now := ks.clock().UTC()
	ok, err := ks.userRepository.SetKeyPair(ctx, userUUID, pemKey, wrapped, now)
	if err != nil {
		return nil, apperr.Storage("store key pair", err)
	}
	if !ok {
		return nil, apperr.ErrKeyExists
	}

	u.PublicKey = pemKey
	u.KeyCreatedAt = &now
	u.PrivateKeyMaterial = nil

	ks.mCounter.WithLabelValues(metrics.KeyProvisioned).Inc()
	ks.logger.Info("key pair provisioned", zap.String("user_id", userUUID.String()))

	return u, nil
}

// LookupPublicKey returns the parsed key and its PEM form.
func (ks *KeyService) LookupPublicKey(ctx context.Context, userUUID user.UUID) (*rsa.PublicKey, string, error) {
	u, err := ks.fetchUser(ctx, userUUID)
	if err != nil {
		return nil, "", err
	}
	if !u.HasPublicKey() {
		return nil, "", apperr.ErrPublicKeyNotFound
	}

	pub, err := cryptox.ParsePublicKey(u.PublicKey)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ErrPublicKeyNotFound, err)
	}

	return pub, u.PublicKey, nil
}

func (ks *KeyService) WithPrivateKey(
	ctx context.Context,
	userUUID user.UUID,
	password string,
	fn func(priv *rsa.PrivateKey) error,
) error {
	if password == "" {
		return apperr.ErrKeyUnavailable
	}

	u, err := ks.fetchUser(ctx, userUUID)
	if err != nil {
		return err
	}
	if u == nil || len(u.PrivateKeyMaterial) == 0 {
		return apperr.ErrKeyUnavailable
	}

	priv, err := cryptox.UnwrapPrivateKey(u.PrivateKeyMaterial, []byte(password))
	if err != nil {
		return apperr.Wrap(apperr.ErrKeyUnavailable, err)
	}
	defer cryptox.WipePrivateKey(priv)

	return fn(priv)
}
