package ports

import (
	"context"
	"time"

	"carpool/internal/carpool-service/core/domain/model"
)

type IOffersRepo interface {
	Create(ctx context.Context, o model.Offer) error
	GetByID(ctx context.Context, offerID string) (model.Offer, error)
	List(ctx context.Context, statuses []string, driverID string) ([]model.Offer, error)
	// Update persists the mutable attributes (schedule, price, vehicle,
	// gender pref, seat totals). It never touches seats_available.
	Update(ctx context.Context, o model.Offer) error

	// SetStatus moves the execution status with a conditional write guarded
	// by the allowed source statuses, stamping started_at/ended_at as the
	// target requires. Returns false when no row matched the guard.
	SetStatus(ctx context.Context, offerID string, from []string, to string) (bool, error)

	// AppendEvent records an execution-audit row; failures are the
	// caller's to swallow.
	AppendEvent(ctx context.Context, offerID, eventType string, payload any) error
}

type IRequestsRepo interface {
	Create(ctx context.Context, r model.Request) error
	GetByID(ctx context.Context, requestID string) (model.Request, error)
	ListByOffer(ctx context.Context, offerID string, statuses []string) ([]model.Request, error)
	ListByPassenger(ctx context.Context, passengerID string) ([]model.Request, error)
	ListByDriver(ctx context.Context, driverID string) ([]model.Request, error)

	// UpdateStatus moves the request status with a conditional write
	// guarded by the allowed source statuses, stamping picked_up_at when
	// the target is PICKED_UP. Returns false when no row matched.
	UpdateStatus(ctx context.Context, requestID string, from []string, to string) (bool, error)

	// ResolveWithSeats moves the request status and applies seatDelta to
	// the offer's seat pool in a single transaction. Either both writes
	// land or neither does: a lost status race returns false with the pool
	// untouched, an out-of-bounds seat result rolls the status back and
	// returns a capacity error. This is the only code path that mutates
	// seats_available.
	ResolveWithSeats(ctx context.Context, requestID string, from []string, to string, offerID string, seatDelta int) (bool, error)

	HasCompleted(ctx context.Context, offerID, passengerID string) (bool, error)
}

type INotificationsRepo interface {
	Create(ctx context.Context, n model.Notification) error
	ListByRecipient(ctx context.Context, recipientID, audience string, unreadOnly bool) ([]model.Notification, error)
	// MarkRead flips the read flag; false when the row is missing or owned
	// by someone else.
	MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type IRatingsRepo interface {
	// Create inserts the rating; a duplicate (offer, passenger) pair
	// surfaces as a conflict error.
	Create(ctx context.Context, r model.Rating) error
}
