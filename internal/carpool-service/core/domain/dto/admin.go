package dto

import "time"

// MarketplaceOverview is the operator's snapshot of the whole marketplace.
type MarketplaceOverview struct {
	Timestamp string         `json:"timestamp"`
	Offers    OfferMetrics   `json:"offers"`
	Requests  RequestMetrics `json:"requests"`
	Ratings   RatingMetrics  `json:"ratings"`
	Inventory SeatInventory  `json:"inventory"`
	Hotspots  []RouteHotspot `json:"hotspots"`
}

type OfferMetrics struct {
	Scheduled    int64 `json:"scheduled"`
	Active       int64 `json:"active"`
	InProgress   int64 `json:"in_progress"`
	Completed    int64 `json:"completed"`
	Cancelled    int64 `json:"cancelled"`
	CreatedToday int64 `json:"created_today"`
}

type RequestMetrics struct {
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	PickedUp  int64 `json:"picked_up"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
}

type RatingMetrics struct {
	Count        int64   `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// SeatInventory sums the live pools over non-terminal offers.
type SeatInventory struct {
	SeatsTotal     int64 `json:"seats_total"`
	SeatsAvailable int64 `json:"seats_available"`
	SeatsCommitted int64 `json:"seats_committed"`
}

// RouteHotspot is a destination drawing the most open offers right now.
type RouteHotspot struct {
	Address    string `json:"address"`
	OpenOffers int64  `json:"open_offers"`
}

// LiveRide is one in-progress offer in the operator's live view.
type LiveRide struct {
	OfferID           string     `json:"offer_id"`
	DriverID          string     `json:"driver_id"`
	OriginAddress     string     `json:"origin_address"`
	DestAddress       string     `json:"dest_address"`
	SeatsTotal        int        `json:"seats_total"`
	SeatsAvailable    int        `json:"seats_available"`
	PassengersOnBoard int64      `json:"passengers_on_board"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
}

type LiveRidesPage struct {
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Rides    []LiveRide `json:"rides"`
}
