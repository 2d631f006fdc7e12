package ports

import (
	"context"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/domain/model"
)

type IOffersService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateOfferRequest) (model.Offer, error)
	Get(ctx context.Context, offerID string) (model.Offer, error)
	List(ctx context.Context, q dto.ListOffersQuery) ([]model.Offer, error)
	Update(ctx context.Context, actor model.Actor, offerID string, patch dto.UpdateOfferRequest) (model.Offer, error)
	// Cancel soft-terminates the offer, auto-rejects pending requests and
	// notifies every holder of an accepted or picked-up request.
	Cancel(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error)
}

type IRequestsService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateRequestRequest) (model.Request, error)
	Accept(ctx context.Context, actor model.Actor, requestID string) (model.Request, error)
	Reject(ctx context.Context, actor model.Actor, requestID string) (model.Request, error)
	ListForDriver(ctx context.Context, driverID string) ([]model.Request, error)
	ListForPassenger(ctx context.Context, passengerID string) ([]model.Request, error)
}

// IRideExecService drives the physical progress of an offer. It is the
// only caller allowed to walk requests to PICKED_UP and COMPLETED.
type IRideExecService interface {
	Start(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error)
	Pickup(ctx context.Context, actor model.Actor, offerID, requestID string) (model.Request, error)
	Complete(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error)
}

type IRatingsService interface {
	Submit(ctx context.Context, actor model.Actor, offerID string, req dto.SubmitRatingRequest) (model.Rating, error)
}

type INotificationsService interface {
	List(ctx context.Context, actor model.Actor, audience string, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, actor model.Actor, notificationID string) error
	MarkAllRead(ctx context.Context, actor model.Actor) (int64, error)
	CountUnread(ctx context.Context, actor model.Actor) (int64, error)
}

// IDispatcher fans a state-transition event out to notifications. It is
// fire-and-forget relative to the transaction that produced the event.
type IDispatcher interface {
	Dispatch(event model.Event)
}
