package services

import (
	"context"
	"time"

	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

// NotificationsService is the recipient-facing inbox. The unread counter
// is cached; the store stays authoritative.
type NotificationsService struct {
	log   mylogger.Logger
	repo  ports.INotificationsRepo
	cache ports.IUnreadCache

	retention     time.Duration
	sweepInterval time.Duration
}

func NewNotificationsService(
	log mylogger.Logger,
	repo ports.INotificationsRepo,
	cache ports.IUnreadCache,
	retention, sweepInterval time.Duration,
) *NotificationsService {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &NotificationsService{
		log:           log,
		repo:          repo,
		cache:         cache,
		retention:     retention,
		sweepInterval: sweepInterval,
	}
}

func (s *NotificationsService) List(ctx context.Context, actor model.Actor, audience string, unreadOnly bool) ([]model.Notification, error) {
	switch audience {
	case "", model.AudienceDriver, model.AudienceRider, model.AudienceBoth:
	default:
		return nil, myerrors.Validationf("unknown audience mode %q", audience)
	}
	return s.repo.ListByRecipient(ctx, actor.ID, audience, unreadOnly)
}

func (s *NotificationsService) MarkRead(ctx context.Context, actor model.Actor, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return myerrors.NotFoundf("notification %s not found for the caller", notificationID)
	}
	s.invalidate(ctx, actor.ID)
	return nil
}

func (s *NotificationsService) MarkAllRead(ctx context.Context, actor model.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, actor.ID)
	return n, nil
}

func (s *NotificationsService) CountUnread(ctx context.Context, actor model.Actor) (int64, error) {
	if s.cache != nil {
		if n, ok, err := s.cache.Get(ctx, actor.ID); err == nil && ok {
			return n, nil
		}
	}
	n, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, actor.ID, n); err != nil {
			s.log.Warn("unread counter backfill failed", "recipient", actor.ID, "err", err.Error())
		}
	}
	return n, nil
}

// RunRetention sweeps expired notifications until the context is done.
func (s *NotificationsService) RunRetention(ctx context.Context) {
	log := s.log.Action("notification_retention")
	t := time.NewTicker(s.sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().UTC().Add(-s.retention)
			n, err := s.repo.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				log.Error("sweep failed", err)
				continue
			}
			if n > 0 {
				log.Info("expired notifications removed", "count", n)
			}
		}
	}
}

func (s *NotificationsService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx, userID); err != nil {
		s.log.Warn("unread counter invalidation failed", "recipient", userID, "err", err.Error())
	}
}
