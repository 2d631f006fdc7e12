package dto

type CreateRequestRequest struct {
	OfferID        string `json:"offer_id"`
	SeatsRequested *int   `json:"seats_requested"`
}
