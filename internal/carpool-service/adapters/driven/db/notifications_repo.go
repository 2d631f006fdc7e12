package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/ports"
)

type NotificationsRepo struct {
	db *pgxpool.Pool
}

func NewNotificationsRepo(db *pgxpool.Pool) ports.INotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `notification_id, recipient_id, message, type, audience, ref_id, read, action_required, deep_link, created_at`

func (r *NotificationsRepo) Create(ctx context.Context, n model.Notification) error {
	q := `INSERT INTO notifications(` + notificationColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, q,
			n.ID, n.RecipientID, n.Message, n.Type, n.Audience, n.RefID,
			n.Read, n.ActionRequired, n.DeepLink, n.CreatedAt)
		return err
	})
}

func (r *NotificationsRepo) ListByRecipient(ctx context.Context, recipientID, audience string, unreadOnly bool) ([]model.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications
	      WHERE recipient_id = $1
	        AND ($2 = '' OR audience = $2 OR audience = 'BOTH')
	        AND (NOT $3 OR read = FALSE)
	      ORDER BY created_at DESC`

	var out []model.Notification
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, recipientID, audience, unreadOnly)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var n model.Notification
			if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Type, &n.Audience,
				&n.RefID, &n.Read, &n.ActionRequired, &n.DeepLink, &n.CreatedAt); err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	q := `UPDATE notifications SET read = TRUE
	      WHERE notification_id = $1 AND recipient_id = $2`

	var ok bool
	err := withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, notificationID, recipientID)
		if err != nil {
			return err
		}
		ok = cmd.RowsAffected() > 0
		return nil
	})
	return ok, err
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	q := `UPDATE notifications SET read = TRUE
	      WHERE recipient_id = $1 AND read = FALSE`

	var n int64
	err := withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, recipientID)
		if err != nil {
			return err
		}
		n = cmd.RowsAffected()
		return nil
	})
	return n, err
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	q := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`

	var n int64
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q, recipientID).Scan(&n)
	})
	return n, err
}

func (r *NotificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `DELETE FROM notifications WHERE created_at < $1`

	var n int64
	err := withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, cutoff)
		if err != nil {
			return err
		}
		n = cmd.RowsAffected()
		return nil
	})
	return n, err
}
