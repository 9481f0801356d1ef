package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/cryptox"
)

type SharedFileService struct {
	files          *SharedFileManager
	keys           ports.KeyStore
	userRepository user.Repository
	scanner        ports.Scanner
	mq             ports.EventPublisher
	maxFileSize    int64
	hashParams     cryptox.HashParams
	clock          func() time.Time
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

type SharedFileOption func(*SharedFileService)

// WithScanner enables malware scanning of uploads.
func WithScanner(s ports.Scanner) SharedFileOption {
	return func(sfs *SharedFileService) { sfs.scanner = s }
}

func WithClock(clock func() time.Time) SharedFileOption {
	return func(sfs *SharedFileService) { sfs.clock = clock }
}

func WithHashParams(p cryptox.HashParams) SharedFileOption {
	return func(sfs *SharedFileService) { sfs.hashParams = p }
}

func NewSharedFileService(
	files *SharedFileManager,
	keys ports.KeyStore,
	userRepository user.Repository,
	mq ports.EventPublisher,
	maxFileSize int64,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	opts ...SharedFileOption,
) *SharedFileService {
	sfs := &SharedFileService{
		files:          files,
		keys:           keys,
		userRepository: userRepository,
		mq:             mq,
		maxFileSize:    maxFileSize,
		hashParams:     cryptox.DefaultHashParams,
		clock:          time.Now,
		logger:         logger,
		mCounter:       mCounter,
	}
	for _, opt := range opts {
		opt(sfs)
	}

	return sfs
}

var _ ports.SharedFileService = (*SharedFileService)(nil)

func (sfs *SharedFileService) FindReceivedFiles(ctx context.Context, recipientID user.UUID, page int) (domain.SharedFiles, error) {
	return sfs.files.ListForRecipient(ctx, recipientID, sfs.clock().UTC(), page)
}

func (sfs *SharedFileService) FindSentFiles(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error) {
	return sfs.files.ListForOwner(ctx, ownerID, page)
}
