package services

import (
	"context"
	"testing"
	"time"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
)

func newOffersFixture() (*fakeOffersRepo, *fakeRequestsRepo, *recordingDispatcher, *OffersService) {
	offers := newFakeOffersRepo()
	requests := newFakeRequestsRepo(offers)
	disp := &recordingDispatcher{}
	svc := NewOffersService(testLogger(), offers, requests, disp).(*OffersService)
	return offers, requests, disp, svc
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func validCreateOffer() dto.CreateOfferRequest {
	return dto.CreateOfferRequest{
		Origin:       &model.GeoPoint{Latitude: 43.238, Longitude: 76.889, Address: "Almaty"},
		Destination:  &model.GeoPoint{Latitude: 51.160, Longitude: 71.470, Address: "Astana"},
		Schedule:     []model.ScheduleEntry{{DepartureAt: time.Now().Add(24 * time.Hour), Recurrence: model.RecurrenceSingle}},
		PricePerSeat: floatPtr(4500),
		SeatsTotal:   intPtr(3),
		Vehicle:      "Toyota Camry",
	}
}

func TestCreateOfferDefaults(t *testing.T) {
	_, _, _, svc := newOffersFixture()

	offer, err := svc.Create(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, validCreateOffer())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if offer.Status != model.OfferStatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", offer.Status)
	}
	if offer.SeatsAvailable != offer.SeatsTotal {
		t.Fatalf("seats_available = %d, want the full pool %d", offer.SeatsAvailable, offer.SeatsTotal)
	}
	if offer.GenderPref != model.GenderPrefAny {
		t.Fatalf("gender_pref = %s, want ANY default", offer.GenderPref)
	}
}

func TestCreateOfferRequiresDriverRole(t *testing.T) {
	_, _, _, svc := newOffersFixture()

	_, err := svc.Create(context.Background(), model.Actor{ID: "passenger-1", Role: model.RolePassenger}, validCreateOffer())
	if !myerrors.IsKind(err, myerrors.KindAuthorization) {
		t.Fatalf("got %v, want authorization error", err)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	_, _, _, svc := newOffersFixture()
	driver := model.Actor{ID: "driver-1", Role: model.RoleDriver}

	cases := []struct {
		name   string
		mutate func(*dto.CreateOfferRequest)
	}{
		{"missing origin", func(r *dto.CreateOfferRequest) { r.Origin = nil }},
		{"latitude out of range", func(r *dto.CreateOfferRequest) { r.Origin.Latitude = 91 }},
		{"longitude out of range", func(r *dto.CreateOfferRequest) { r.Destination.Longitude = -181 }},
		{"empty schedule", func(r *dto.CreateOfferRequest) { r.Schedule = nil }},
		{"bad recurrence", func(r *dto.CreateOfferRequest) { r.Schedule[0].Recurrence = "FORTNIGHTLY" }},
		{"negative price", func(r *dto.CreateOfferRequest) { r.PricePerSeat = floatPtr(-1) }},
		{"zero seats", func(r *dto.CreateOfferRequest) { r.SeatsTotal = intPtr(0) }},
		{"bad gender pref", func(r *dto.CreateOfferRequest) { r.GenderPref = "OTHER" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateOffer()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), driver, req)
			if !myerrors.IsKind(err, myerrors.KindValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateOfferOwnershipAndTerminal(t *testing.T) {
	offers, _, _, svc := newOffersFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	done := scheduledOffer("offer-2", "driver-1", 3)
	done.Status = model.OfferStatusCompleted
	offers.put(done)

	_, err := svc.Update(context.Background(), model.Actor{ID: "driver-2", Role: model.RoleDriver},
		"offer-1", dto.UpdateOfferRequest{Vehicle: strPtr("Kia Rio")})
	if !myerrors.IsKind(err, myerrors.KindAuthorization) {
		t.Fatalf("got %v, want authorization error", err)
	}

	_, err = svc.Update(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver},
		"offer-2", dto.UpdateOfferRequest{Vehicle: strPtr("Kia Rio")})
	if !myerrors.IsKind(err, myerrors.KindState) {
		t.Fatalf("got %v, want state error", err)
	}
}

func TestUpdateSeatsTotalLockedOnceCommitted(t *testing.T) {
	offers, _, _, svc := newOffersFixture()
	o := scheduledOffer("offer-1", "driver-1", 3)
	o.SeatsAvailable = 2 // one seat committed
	offers.put(o)

	_, err := svc.Update(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver},
		"offer-1", dto.UpdateOfferRequest{SeatsTotal: intPtr(5)})
	if !myerrors.IsKind(err, myerrors.KindState) {
		t.Fatalf("got %v, want state error", err)
	}
}

func TestUpdateResizesUncommittedPool(t *testing.T) {
	offers, _, disp, svc := newOffersFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))

	offer, err := svc.Update(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver},
		"offer-1", dto.UpdateOfferRequest{SeatsTotal: intPtr(5)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if offer.SeatsTotal != 5 || offer.SeatsAvailable != 5 {
		t.Fatalf("pool = %d/%d, want 5/5", offer.SeatsAvailable, offer.SeatsTotal)
	}
	if len(disp.byType(model.NotifyOfferUpdated)) != 1 {
		t.Fatalf("expected one OFFER_UPDATED event")
	}
}

// Cancelling an offer auto-rejects pending requests and tells every holder
// of an accepted or picked-up seat.
func TestCancelCascade(t *testing.T) {
	offers, requests, disp, svc := newOffersFixture()
	o := scheduledOffer("offer-1", "driver-1", 4)
	o.Status = model.OfferStatusActive
	offers.put(o)

	pending := pendingRequest("req-pending", "offer-1", "passenger-1", 1)
	requests.put(pending)
	accepted := pendingRequest("req-accepted", "offer-1", "passenger-2", 1)
	accepted.Status = model.RequestStatusAccepted
	requests.put(accepted)
	picked := pendingRequest("req-picked", "offer-1", "passenger-3", 1)
	picked.Status = model.RequestStatusPickedUp
	requests.put(picked)

	offer, err := svc.Cancel(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "offer-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if offer.Status != model.OfferStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", offer.Status)
	}
	if got := requests.status("req-pending"); got != model.RequestStatusRejected {
		t.Fatalf("pending request = %s, want REJECTED", got)
	}
	if got := requests.status("req-accepted"); got != model.RequestStatusAccepted {
		t.Fatalf("accepted request = %s, cancel must not walk holders", got)
	}

	events := disp.byType(model.NotifyOfferCancelled)
	if len(events) != 1 {
		t.Fatalf("expected one OFFER_CANCELLED event")
	}
	e := events[0].(model.OfferCancelled)
	if len(e.Holders) != 2 {
		t.Fatalf("holders = %d, want 2", len(e.Holders))
	}
	if len(e.AutoRejected) != 1 {
		t.Fatalf("auto-rejected = %d, want 1", len(e.AutoRejected))
	}
}

func TestCancelTerminalOfferRefused(t *testing.T) {
	offers, _, _, svc := newOffersFixture()
	o := scheduledOffer("offer-1", "driver-1", 3)
	o.Status = model.OfferStatusCancelled
	offers.put(o)

	_, err := svc.Cancel(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "offer-1")
	if !myerrors.IsKind(err, myerrors.KindState) {
		t.Fatalf("got %v, want state error", err)
	}
}

func TestListOffersRejectsUnknownStatus(t *testing.T) {
	_, _, _, svc := newOffersFixture()

	_, err := svc.List(context.Background(), dto.ListOffersQuery{Statuses: []string{"PARKED"}})
	if !myerrors.IsKind(err, myerrors.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}
