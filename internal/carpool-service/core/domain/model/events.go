package model

// Event is the closed set of state transitions that fan out notifications.
// Each variant carries exactly the entities its fan-out rule needs, so the
// dispatcher can be a total function over this union.
type Event interface {
	EventType() string
	// InitiatorID is the actor whose action caused the transition. The
	// initiator is never notified about their own action.
	InitiatorID() string
}

type RequestCreated struct {
	Offer   Offer
	Request Request
}

func (RequestCreated) EventType() string     { return NotifyRequestCreated }
func (e RequestCreated) InitiatorID() string { return e.Request.PassengerID }

type RequestAccepted struct {
	Offer   Offer
	Request Request
}

func (RequestAccepted) EventType() string     { return NotifyRequestAccepted }
func (e RequestAccepted) InitiatorID() string { return e.Offer.DriverID }

type RequestRejected struct {
	Offer   Offer
	Request Request
	// WasAccepted marks a rejection-after-acceptance, which restores seats.
	WasAccepted bool
}

func (RequestRejected) EventType() string     { return NotifyRequestRejected }
func (e RequestRejected) InitiatorID() string { return e.Offer.DriverID }

type OfferUpdated struct {
	Offer       Offer
	Initiator   string
	AcceptedReq []Request
}

func (OfferUpdated) EventType() string     { return NotifyOfferUpdated }
func (e OfferUpdated) InitiatorID() string { return e.Initiator }

type OfferCancelled struct {
	Offer     Offer
	Initiator string
	// Holders are the accepted/picked-up requests whose passengers must
	// be told; AutoRejected are pending requests closed by the cancel.
	Holders      []Request
	AutoRejected []Request
}

func (OfferCancelled) EventType() string     { return NotifyOfferCancelled }
func (e OfferCancelled) InitiatorID() string { return e.Initiator }

type RideStarted struct {
	Offer    Offer
	Accepted []Request
}

func (RideStarted) EventType() string     { return NotifyRideStarted }
func (e RideStarted) InitiatorID() string { return e.Offer.DriverID }

type PassengerPickedUp struct {
	Offer   Offer
	Request Request
}

func (PassengerPickedUp) EventType() string     { return NotifyPickedUp }
func (e PassengerPickedUp) InitiatorID() string { return e.Offer.DriverID }

type RideCompleted struct {
	Offer Offer
	// Completed lists the requests walked to COMPLETED by this call only,
	// so a re-run of the idempotent cascade never re-notifies.
	Completed []Request
}

func (RideCompleted) EventType() string     { return NotifyRideCompleted }
func (e RideCompleted) InitiatorID() string { return e.Offer.DriverID }

type RatingSubmitted struct {
	Offer  Offer
	Rating Rating
}

func (RatingSubmitted) EventType() string     { return NotifyRatingReceived }
func (e RatingSubmitted) InitiatorID() string { return e.Rating.PassengerID }
