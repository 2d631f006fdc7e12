package model

import "time"

// Rating is a passenger's one-time score for a completed offer.
// At most one per (offer, passenger) pair, enforced by the store.
type Rating struct {
	ID          string    `json:"id"`
	OfferID     string    `json:"offer_id"`
	PassengerID string    `json:"passenger_id"`
	DriverID    string    `json:"driver_id"`
	Score       int       `json:"score"`
	Feedback    string    `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
