package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository is the notification outbox.
type Repository interface {
	// Enqueue queues m. A message whose DedupeKey is already in the outbox
	// is dropped without error.
	Enqueue(ctx context.Context, m *Message) error

	// Lease claims up to limit due messages for ttl so concurrent relays
	// never send the same row.
	Lease(ctx context.Context, limit int, ttl time.Duration) ([]*Message, error)

	MarkSent(ctx context.Context, id uuid.UUID) error

	// MarkAttemptFailed records the error and either reschedules the
	// message at next or marks it FAILED once maxAttempts is reached.
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int, next time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Enqueue(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Status = StatusPending

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notification_outbox (id, kind, recipient, subject, html_body, text_body, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		ON CONFLICT (dedupe_key) DO NOTHING
		RETURNING next_attempt_at, created_at
	`, m.ID, m.Kind, m.Recipient, m.Subject, m.HTML, m.Text, m.Status, m.DedupeKey).Scan(&m.NextAttemptAt, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		logger.FromCtx(ctx).Info("notification already queued",
			zap.String("kind", string(m.Kind)),
			zap.String("dedupe_key", m.DedupeKey),
		)
		return nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to enqueue notification",
			zap.String("kind", string(m.Kind)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) Lease(ctx context.Context, limit int, ttl time.Duration) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE notification_outbox
		SET lease_expires_at = now() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id
			FROM notification_outbox
			WHERE status = 'PENDING'
			  AND next_attempt_at <= now()
			  AND (lease_expires_at IS NULL OR lease_expires_at <= now())
			ORDER BY next_attempt_at ASC, created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, recipient, subject, html_body, text_body,
		          status, attempts, last_error, next_attempt_at, created_at
	`, limit, ttl.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.Kind, &m.Recipient, &m.Subject, &m.HTML, &m.Text,
			&m.Status, &m.Attempts, &m.LastError, &m.NextAttemptAt, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = 'SENT',
		    attempts = attempts + 1,
		    sent_at = now(),
		    lease_expires_at = NULL
		WHERE id = $1
	`, id)
	return err
}

func (r *repository) MarkAttemptFailed(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	maxAttempts int,
	next time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET attempts = attempts + 1,
		    last_error = $2,
		    lease_expires_at = NULL,
		    next_attempt_at = $4,
		    status = CASE WHEN attempts + 1 >= $3 THEN 'FAILED' ELSE 'PENDING' END
		WHERE id = $1
	`, id, reason, maxAttempts, next)
	return err
}
