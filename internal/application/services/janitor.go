package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/infrastructure/metrics"
	"fileshare-api/internal/infrastructure/mq"
)

const DefaultJanitorInterval = time.Hour

type expiryPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) ([]domain.Purged, error)
}

// Janitor reclaims expired shared files on every interval boundary.
type Janitor struct {
	files    expiryPurger
	clock    func() time.Time
	interval time.Duration
	mq       ports.EventPublisher
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewJanitor(
	files expiryPurger,
	clock func() time.Time,
	interval time.Duration,
	publisher ports.EventPublisher,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *Janitor {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	return &Janitor{
		files:    files,
		clock:    clock,
		interval: interval,
		mq:       publisher,
		logger:   logger,
		mCounter: mCounter,
	}
}

// RunOnce performs one expire-and-delete pass and reports the number of
// records removed.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	now := j.clock().UTC()

	purged, err := j.files.DeleteExpired(ctx, now)
	if err != nil {
		j.mCounter.WithLabelValues(metrics.JanitorRunFailed).Inc()
		return 0, err
	}

	for _, p := range purged {
		j.mq.Publish(mq.NewEvent(mq.FilePurged, p.ID.String(), fileEvent{FileID: p.ID.String()}))
	}
	j.mCounter.WithLabelValues(metrics.FilePurged).Add(float64(len(purged)))

	return len(purged), nil
}

// Worker blocks until ctx is done, running a pass at every interval boundary.
func (j *Janitor) Worker(ctx context.Context) {
	j.logger.Info("starting janitor worker", zap.Duration("interval", j.interval))

	defer func() {
		j.logger.Info("janitor worker gracefully stopped")
	}()

	for {
		now := j.clock()
		next := now.Truncate(j.interval).Add(j.interval)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		n, err := j.RunOnce(ctx)
		if err != nil {
			// retried on the next tick
			j.logger.Error("janitor run failed", zap.Error(err))
			continue
		}
		if n > 0 {
			j.logger.Info("expired files purged", zap.Int("count", n))
		}
	}
}
