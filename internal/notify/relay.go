package notify

import (
	"context"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultBatchSize = 20
	leaseTTL         = time.Minute
	maxBackoff       = 30 * time.Minute
)

type RelayConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	BatchSize    int
}

// Relay drains the outbox through a Sender.
type Relay struct {
	repo        Repository
	sender      Sender
	interval    time.Duration
	maxAttempts int
	batchSize   int
	now         func() time.Time
}

func NewRelay(repo Repository, sender Sender, cfg RelayConfig) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Relay{
		repo:        repo,
		sender:      sender,
		interval:    cfg.PollInterval,
		maxAttempts: cfg.MaxAttempts,
		batchSize:   cfg.BatchSize,
		now:         time.Now,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	log := logger.L().With(zap.String("component", "notify-relay"))
	log.Info("notification relay started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			log.Error("outbox batch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("notification relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch sends one leased batch and returns how many were sent.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	msgs, err := r.repo.Lease(ctx, r.batchSize, leaseTTL)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range msgs {
		log := logger.L().With(
			zap.String("message_id", m.ID.String()),
			zap.String("kind", string(m.Kind)),
			zap.Int("attempt", m.Attempts+1),
		)

		err := r.sender.Send(ctx, Email{
			To:             m.Recipient,
			Subject:        m.Subject,
			HTML:           m.HTML,
			Text:           m.Text,
			IdempotencyKey: m.ID.String(),
		})
		if err != nil {
			next := r.now().Add(backoff(m.Attempts + 1))
			if markErr := r.repo.MarkAttemptFailed(ctx, m.ID, err.Error(), r.maxAttempts, next); markErr != nil {
				log.Error("failed to record send failure", zap.Error(markErr))
			}
			if m.Attempts+1 >= r.maxAttempts {
				log.Error("notification permanently failed", zap.Error(err))
			} else {
				log.Warn("notification send failed; will retry", zap.Error(err), zap.Time("next_attempt_at", next))
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, m.ID); err != nil {
			log.Error("failed to mark notification sent", zap.Error(err))
			continue
		}
		sent++
	}

	return sent, nil
}

// backoff doubles from 30s per attempt, capped.
func backoff(attempt int) time.Duration {
	d := 30 * time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
