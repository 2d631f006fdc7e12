package model

import "time"

// ==== Request status ====
const (
	RequestStatusPending   = "PENDING"
	RequestStatusAccepted  = "ACCEPTED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusPickedUp  = "PICKED_UP"
	RequestStatusCompleted = "COMPLETED"
)

// Request is a passenger's bid for seats on one offer. Its status only
// ever moves forward; see RequestCanTransition.
type Request struct {
	ID             string     `json:"id"`
	OfferID        string     `json:"offer_id"`
	PassengerID    string     `json:"passenger_id"`
	SeatsRequested int        `json:"seats_requested"`
	Status         string     `json:"status"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var requestNext = map[string][]string{
	RequestStatusPending:  {RequestStatusAccepted, RequestStatusRejected},
	RequestStatusAccepted: {RequestStatusPickedUp, RequestStatusCompleted, RequestStatusRejected},
	RequestStatusPickedUp: {RequestStatusCompleted},
}

// RequestCanTransition reports whether from -> to is a legal forward move.
// Terminal states (REJECTED, COMPLETED) allow nothing.
func RequestCanTransition(from, to string) bool {
	for _, next := range requestNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

func RequestTerminal(status string) bool {
	return status == RequestStatusRejected || status == RequestStatusCompleted
}
