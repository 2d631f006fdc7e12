package model

import "time"

// ==== Audience mode ====
const (
	AudienceDriver = "DRIVER"
	AudienceRider  = "RIDER"
	AudienceBoth   = "BOTH"
)

// ==== Notification type tags ====
const (
	NotifyRequestCreated  = "REQUEST_CREATED"
	NotifyRequestAccepted = "REQUEST_ACCEPTED"
	NotifyRequestRejected = "REQUEST_REJECTED"
	NotifyOfferUpdated    = "OFFER_UPDATED"
	NotifyOfferCancelled  = "OFFER_CANCELLED"
	NotifyRideStarted     = "RIDE_STARTED"
	NotifyPickedUp        = "PASSENGER_PICKED_UP"
	NotifyRideCompleted   = "RIDE_COMPLETED"
	NotifyRatingReceived  = "RATING_RECEIVED"
)

// Notification is a one-way, read-once message to a single actor. Business
// logic never mutates it after creation; only the recipient flips Read and
// the retention sweeper removes expired rows.
type Notification struct {
	ID             string    `json:"id"`
	RecipientID    string    `json:"recipient_id"`
	Message        string    `json:"message"`
	Type           string    `json:"type"`
	Audience       string    `json:"audience"`
	RefID          string    `json:"ref_id"`
	Read           bool      `json:"read"`
	ActionRequired bool      `json:"action_required"`
	DeepLink       string    `json:"deep_link,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
