package services

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/metrics"
	"fileshare-api/internal/infrastructure/mq"
	"fileshare-api/internal/interface/api/rest/dto/user"
)

var ErrPasswordRequired = errors.New("password is required")

type UserService struct {
	userRepository domain.Repository
	files          *SharedFileManager
	mq             ports.EventPublisher
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewUserService(
	userRepository domain.Repository,
	files *SharedFileManager,
	mq ports.EventPublisher,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		files:          files,
		mq:             mq,
		logger:         logger,
		mCounter:       mCounter,
	}
}

func (us *UserService) FindUserByID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) FindUsers(ctx context.Context, page int) (domain.Users, error) {
	users, err := us.userRepository.FetchUsers(ctx, page)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (us *UserService) CreateUser(ctx context.Context, u domain.User, password string) (*domain.User, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h := string(hash)
	u.PasswordHash = &h

	uRet, err := us.userRepository.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	if uRet != nil {
		us.mq.Publish(mq.NewEvent(mq.UserCreated, uRet.UUID.String(), user.ToResponseUser(*uRet)))
	}

	us.mCounter.WithLabelValues(metrics.UserCreated).Inc()

	return uRet, nil
}

func (us *UserService) UpdateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	uRet, err := us.userRepository.UpdateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	if uRet != nil {
		us.mq.Publish(mq.NewEvent(mq.UserUpdated, uRet.UUID.String(), user.ToResponseUser(*uRet)))
	}

	us.mCounter.WithLabelValues(metrics.UserUpdated).Inc()

	return uRet, nil
}

// DeleteUser removes every file the user sent or received, then soft
// deletes the account and its key material.
func (us *UserService) DeleteUser(ctx context.Context, userUUID domain.UUID) error {
	id, err := us.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return err
	}

	// todo: rows of both steps should share one transaction
	purged, err := us.files.PurgeUser(ctx, userUUID)
	if err != nil {
		return err
	}
	if len(purged) > 0 {
		us.logger.Info("user files purged", zap.String("user_id", userUUID.String()), zap.Int("count", len(purged)))
	}

	u, err := us.userRepository.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if u != nil {
		us.mq.Publish(mq.NewEvent(mq.UserDeleted, u.UUID.String(), user.ToResponseUser(*u)))
	}

	us.mCounter.WithLabelValues(metrics.UserDeleted).Inc()

	return nil
}
