package model

import "time"

// ==== Offer execution status ====
const (
	OfferStatusScheduled  = "SCHEDULED"
	OfferStatusActive     = "ACTIVE"
	OfferStatusInProgress = "IN_PROGRESS"
	OfferStatusCompleted  = "COMPLETED"
	OfferStatusCancelled  = "CANCELLED"
)

// ==== Schedule recurrence ====
const (
	RecurrenceSingle = "SINGLE"
	RecurrenceDaily  = "DAILY"
	RecurrenceWeekly = "WEEKLY"
)

// ==== Preferred gender filter ====
const (
	GenderPrefAny    = "ANY"
	GenderPrefFemale = "FEMALE"
	GenderPrefMale   = "MALE"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type ScheduleEntry struct {
	DepartureAt time.Time `json:"departure_at"`
	Recurrence  string    `json:"recurrence"`
}

// Offer is a driver's advertised ride with a fixed seat pool.
// SeatsAvailable is mutated only through the seat-adjustment primitive;
// no other code path writes it.
type Offer struct {
	ID             string          `json:"id"`
	DriverID       string          `json:"driver_id"`
	Origin         GeoPoint        `json:"origin"`
	Destination    GeoPoint        `json:"destination"`
	Schedule       []ScheduleEntry `json:"schedule"`
	PricePerSeat   float64         `json:"price_per_seat"`
	SeatsTotal     int             `json:"seats_total"`
	SeatsAvailable int             `json:"seats_available"`
	GenderPref     string          `json:"gender_pref"`
	Vehicle        string          `json:"vehicle"`
	Status         string          `json:"status"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	EndedAt        *time.Time      `json:"ended_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func ValidRecurrence(s string) bool {
	switch s {
	case RecurrenceSingle, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

func ValidGenderPref(s string) bool {
	switch s {
	case GenderPrefAny, GenderPrefFemale, GenderPrefMale:
		return true
	}
	return false
}

// OfferTerminal reports whether the execution status can no longer move.
func OfferTerminal(status string) bool {
	return status == OfferStatusCompleted || status == OfferStatusCancelled
}
