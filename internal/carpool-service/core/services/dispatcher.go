package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carpool/internal/carpool-service/core/domain/model"
	websocketdto "carpool/internal/carpool-service/core/domain/websocket_dto"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
	"carpool/internal/observability"
)

// Dispatcher turns state-transition events into notifications and delivers
// them best-effort: store row, unread counter, live websocket push, broker
// publish. Any delivery failure is logged and swallowed; it never blocks
// or rolls back the transition that produced the event.
type Dispatcher struct {
	log     mylogger.Logger
	repo    ports.INotificationsRepo
	ws      ports.INotifyWebsocket
	broker  ports.INotifyBroker
	cache   ports.IUnreadCache
	timeout time.Duration
}

func NewDispatcher(
	log mylogger.Logger,
	repo ports.INotificationsRepo,
	ws ports.INotifyWebsocket,
	broker ports.INotifyBroker,
	cache ports.IUnreadCache,
	timeout time.Duration,
) *Dispatcher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Dispatcher{
		log:     log,
		repo:    repo,
		ws:      ws,
		broker:  broker,
		cache:   cache,
		timeout: timeout,
	}
}

func (d *Dispatcher) Dispatch(event model.Event) {
	log := d.log.Action("dispatch").With("event", event.EventType())

	notifs := FanOut(event)
	if len(notifs) == 0 {
		return
	}

	// Detached, bounded context: caller cancellation must not abort
	// delivery, and delivery must not hang forever either.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, n := range notifs {
		if err := d.repo.Create(ctx, n); err != nil {
			observability.NotificationsDropped.Inc()
			log.Error("notification write failed, dropping", err, "recipient", n.RecipientID)
			continue
		}
		observability.NotificationsDispatched.WithLabelValues(event.EventType()).Inc()

		if d.cache != nil {
			if err := d.cache.Incr(ctx, n.RecipientID); err != nil {
				log.Warn("unread counter update failed", "recipient", n.RecipientID, "err", err.Error())
			}
		}
		if d.ws != nil {
			d.ws.WriteToUser(n.RecipientID, websocketdto.Event{Type: n.Type, Data: n})
		}
		if d.broker != nil {
			if err := d.broker.PublishNotification(ctx, n); err != nil {
				log.Warn("broker publish failed", "recipient", n.RecipientID, "err", err.Error())
			}
		}
	}
}

// FanOut derives the recipient set and message for one event. The switch
// is total over the event union; the initiator is filtered out at the end
// so no rule can accidentally notify the actor who caused the transition.
func FanOut(event model.Event) []model.Notification {
	var out []model.Notification

	add := func(recipient, audience, message, refID string, actionRequired bool, deepLink string) {
		out = append(out, model.Notification{
			ID:             uuid.NewString(),
			RecipientID:    recipient,
			Message:        message,
			Type:           event.EventType(),
			Audience:       audience,
			RefID:          refID,
			ActionRequired: actionRequired,
			DeepLink:       deepLink,
			CreatedAt:      time.Now().UTC(),
		})
	}

	switch e := event.(type) {
	case model.RequestCreated:
		add(e.Offer.DriverID, model.AudienceDriver,
			fmt.Sprintf("New request for %d seat(s) on your ride to %s", e.Request.SeatsRequested, e.Offer.Destination.Address),
			e.Request.ID, true, "/requests/"+e.Request.ID)

	case model.RequestAccepted:
		add(e.Request.PassengerID, model.AudienceRider,
			fmt.Sprintf("Your request for the ride to %s was accepted", e.Offer.Destination.Address),
			e.Request.ID, false, "/requests/"+e.Request.ID)

	case model.RequestRejected:
		add(e.Request.PassengerID, model.AudienceRider,
			fmt.Sprintf("Your request for the ride to %s was rejected", e.Offer.Destination.Address),
			e.Request.ID, false, "/requests/"+e.Request.ID)

	case model.OfferUpdated:
		add(e.Offer.DriverID, model.AudienceDriver,
			"Your ride offer was updated",
			e.Offer.ID, false, "/offers/"+e.Offer.ID)
		for _, r := range e.AcceptedReq {
			add(r.PassengerID, model.AudienceRider,
				fmt.Sprintf("The ride to %s you booked was updated", e.Offer.Destination.Address),
				e.Offer.ID, false, "/offers/"+e.Offer.ID)
		}

	case model.OfferCancelled:
		add(e.Offer.DriverID, model.AudienceDriver,
			"Your ride offer was cancelled",
			e.Offer.ID, false, "/offers/"+e.Offer.ID)
		for _, r := range e.Holders {
			add(r.PassengerID, model.AudienceRider,
				fmt.Sprintf("The ride to %s was cancelled by the driver", e.Offer.Destination.Address),
				e.Offer.ID, false, "/offers/"+e.Offer.ID)
		}
		for _, r := range e.AutoRejected {
			add(r.PassengerID, model.AudienceRider,
				fmt.Sprintf("The ride to %s was cancelled; your pending request was closed", e.Offer.Destination.Address),
				r.ID, false, "/requests/"+r.ID)
		}

	case model.RideStarted:
		for _, r := range e.Accepted {
			add(r.PassengerID, model.AudienceRider,
				fmt.Sprintf("Your ride to %s has started", e.Offer.Destination.Address),
				e.Offer.ID, false, "/offers/"+e.Offer.ID)
		}

	case model.PassengerPickedUp:
		add(e.Request.PassengerID, model.AudienceRider,
			"You have been picked up, enjoy the ride",
			e.Request.ID, false, "/requests/"+e.Request.ID)

	case model.RideCompleted:
		for _, r := range e.Completed {
			add(r.PassengerID, model.AudienceRider,
				fmt.Sprintf("Your ride to %s is complete. Please rate your driver", e.Offer.Destination.Address),
				e.Offer.ID, true, "/ratings/"+e.Offer.ID)
		}

	case model.RatingSubmitted:
		add(e.Rating.DriverID, model.AudienceDriver,
			fmt.Sprintf("You received a %d-star rating", e.Rating.Score),
			e.Rating.ID, false, "/ratings/"+e.Offer.ID)
	}

	// Initiator suppression: never notify the actor who caused the event.
	filtered := out[:0]
	for _, n := range out {
		if n.RecipientID == event.InitiatorID() {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}
