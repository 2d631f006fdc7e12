package dto

import "carpool/internal/carpool-service/core/domain/model"

// Pointer fields distinguish "absent" from zero values during validation.
type CreateOfferRequest struct {
	Origin       *model.GeoPoint       `json:"origin"`
	Destination  *model.GeoPoint       `json:"destination"`
	Schedule     []model.ScheduleEntry `json:"schedule"`
	PricePerSeat *float64              `json:"price_per_seat"`
	SeatsTotal   *int                  `json:"seats_total"`
	Vehicle      string                `json:"vehicle"`
	GenderPref   string                `json:"gender_pref"`
}

type UpdateOfferRequest struct {
	Schedule     []model.ScheduleEntry `json:"schedule,omitempty"`
	PricePerSeat *float64              `json:"price_per_seat,omitempty"`
	SeatsTotal   *int                  `json:"seats_total,omitempty"`
	Vehicle      *string               `json:"vehicle,omitempty"`
	GenderPref   *string               `json:"gender_pref,omitempty"`
}

type ListOffersQuery struct {
	Statuses []string
	DriverID string
}
