package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
)

func newRequestsFixture() (*fakeOffersRepo, *fakeRequestsRepo, *recordingDispatcher, *RequestsService) {
	offers := newFakeOffersRepo()
	requests := newFakeRequestsRepo(offers)
	disp := &recordingDispatcher{}
	svc := NewRequestsService(testLogger(), offers, requests, disp).(*RequestsService)
	return offers, requests, disp, svc
}

func intPtr(n int) *int { return &n }

func TestCreateRequestValidation(t *testing.T) {
	offers, _, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))

	passenger := model.Actor{ID: "passenger-1", Role: model.RolePassenger}

	cases := []struct {
		name string
		req  dto.CreateRequestRequest
		kind myerrors.Kind
	}{
		{"missing seats", dto.CreateRequestRequest{OfferID: "offer-1"}, myerrors.KindValidation},
		{"zero seats", dto.CreateRequestRequest{OfferID: "offer-1", SeatsRequested: intPtr(0)}, myerrors.KindValidation},
		{"over pool", dto.CreateRequestRequest{OfferID: "offer-1", SeatsRequested: intPtr(4)}, myerrors.KindValidation},
		{"unknown offer", dto.CreateRequestRequest{OfferID: "nope", SeatsRequested: intPtr(1)}, myerrors.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), passenger, tc.req)
			if !myerrors.IsKind(err, tc.kind) {
				t.Fatalf("got %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func TestCreateRequestOwnOfferRefused(t *testing.T) {
	offers, _, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))

	_, err := svc.Create(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver},
		dto.CreateRequestRequest{OfferID: "offer-1", SeatsRequested: intPtr(1)})
	if !myerrors.IsKind(err, myerrors.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestCreateRequestOnTerminalOffer(t *testing.T) {
	offers, _, _, svc := newRequestsFixture()
	o := scheduledOffer("offer-1", "driver-1", 3)
	o.Status = model.OfferStatusCancelled
	offers.put(o)

	_, err := svc.Create(context.Background(), model.Actor{ID: "passenger-1", Role: model.RolePassenger},
		dto.CreateRequestRequest{OfferID: "offer-1", SeatsRequested: intPtr(1)})
	if !myerrors.IsKind(err, myerrors.KindState) {
		t.Fatalf("got %v, want state error", err)
	}
}

func TestCreateRequestLeavesSeatsUntouched(t *testing.T) {
	offers, _, disp, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))

	req, err := svc.Create(context.Background(), model.Actor{ID: "passenger-1", Role: model.RolePassenger},
		dto.CreateRequestRequest{OfferID: "offer-1", SeatsRequested: intPtr(2)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Fatalf("status = %s, want PENDING", req.Status)
	}
	if got := offers.seats("offer-1"); got != 3 {
		t.Fatalf("seats_available = %d, want 3 (pending holds nothing)", got)
	}
	if len(disp.byType(model.NotifyRequestCreated)) != 1 {
		t.Fatalf("expected one REQUEST_CREATED event")
	}
}

func TestAcceptCommitsSeats(t *testing.T) {
	offers, requests, disp, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 2))

	driver := model.Actor{ID: "driver-1", Role: model.RoleDriver}
	req, err := svc.Accept(context.Background(), driver, "req-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if req.Status != model.RequestStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", req.Status)
	}
	if got := offers.seats("offer-1"); got != 1 {
		t.Fatalf("seats_available = %d, want 1", got)
	}
	if len(disp.byType(model.NotifyRequestAccepted)) != 1 {
		t.Fatalf("expected one REQUEST_ACCEPTED event")
	}
}

func TestAcceptRefusedWhenPoolExhausted(t *testing.T) {
	offers, requests, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 2))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 3))

	_, err := svc.Accept(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "req-1")
	if !myerrors.IsKind(err, myerrors.KindCapacity) {
		t.Fatalf("got %v, want capacity error", err)
	}
	if got := requests.status("req-1"); got != model.RequestStatusPending {
		t.Fatalf("request status = %s, want PENDING after refused accept", got)
	}
	if got := offers.seats("offer-1"); got != 2 {
		t.Fatalf("seats_available = %d, want 2 untouched", got)
	}
}

func TestAcceptRequiresOwnership(t *testing.T) {
	offers, requests, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 1))

	_, err := svc.Accept(context.Background(), model.Actor{ID: "driver-2", Role: model.RoleDriver}, "req-1")
	if !myerrors.IsKind(err, myerrors.KindAuthorization) {
		t.Fatalf("got %v, want authorization error", err)
	}
}

// Concurrent accepts over a shared pool must never oversell: with 3 seats
// and ten 1-seat requests, exactly 3 accepts win and the rest fail on
// capacity.
func TestConcurrentAcceptsNeverOversell(t *testing.T) {
	offers, requests, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))

	const n = 10
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("req-%d", i)
		requests.put(pendingRequest(id, "offer-1", fmt.Sprintf("passenger-%d", i), 1))
	}

	driver := model.Actor{ID: "driver-1", Role: model.RoleDriver}
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), driver, fmt.Sprintf("req-%d", i))
		}(i)
	}
	wg.Wait()

	var won, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case myerrors.IsKind(err, myerrors.KindCapacity):
			capacity++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 3 || capacity != 7 {
		t.Fatalf("won=%d capacity=%d, want 3/7", won, capacity)
	}
	if got := offers.seats("offer-1"); got != 0 {
		t.Fatalf("seats_available = %d, want 0", got)
	}
}

func TestRejectPendingKeepsSeats(t *testing.T) {
	offers, requests, disp, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 2))

	req, err := svc.Reject(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "req-1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if req.Status != model.RequestStatusRejected {
		t.Fatalf("status = %s, want REJECTED", req.Status)
	}
	if got := offers.seats("offer-1"); got != 3 {
		t.Fatalf("seats_available = %d, want 3", got)
	}
	events := disp.byType(model.NotifyRequestRejected)
	if len(events) != 1 {
		t.Fatalf("expected one REQUEST_REJECTED event")
	}
	if events[0].(model.RequestRejected).WasAccepted {
		t.Fatalf("WasAccepted = true for a pending reject")
	}
}

func TestRejectAcceptedRestoresSeats(t *testing.T) {
	offers, requests, disp, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 2))

	driver := model.Actor{ID: "driver-1", Role: model.RoleDriver}
	if _, err := svc.Accept(context.Background(), driver, "req-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got := offers.seats("offer-1"); got != 1 {
		t.Fatalf("seats_available = %d after accept, want 1", got)
	}

	req, err := svc.Reject(context.Background(), driver, "req-1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if req.Status != model.RequestStatusRejected {
		t.Fatalf("status = %s, want REJECTED", req.Status)
	}
	if got := offers.seats("offer-1"); got != 3 {
		t.Fatalf("seats_available = %d, want 3 restored", got)
	}
	events := disp.byType(model.NotifyRequestRejected)
	if len(events) != 1 || !events[0].(model.RequestRejected).WasAccepted {
		t.Fatalf("expected one REQUEST_REJECTED event with WasAccepted")
	}
}

// A restore that fails on a store outage must surface to the caller and
// leave the request accepted with its seats still held. Returning success
// while the seats stay committed would leak them from the pool for good.
func TestRejectAcceptedSurfacesRestoreFailure(t *testing.T) {
	offers, requests, disp, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 2))

	driver := model.Actor{ID: "driver-1", Role: model.RoleDriver}
	if _, err := svc.Accept(context.Background(), driver, "req-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	requests.failOn = "req-1"
	_, err := svc.Reject(context.Background(), driver, "req-1")
	if !myerrors.IsKind(err, myerrors.KindTimeout) {
		t.Fatalf("got %v, want timeout error", err)
	}
	if got := requests.status("req-1"); got != model.RequestStatusAccepted {
		t.Fatalf("request status = %s, want ACCEPTED after failed reject", got)
	}
	if got := offers.seats("offer-1"); got != 1 {
		t.Fatalf("seats_available = %d, want 1 still committed", got)
	}
	if len(disp.byType(model.NotifyRequestRejected)) != 0 {
		t.Fatalf("no REQUEST_REJECTED event expected for a failed reject")
	}

	// The retry after the outage clears performs the restore.
	requests.failOn = ""
	if _, err := svc.Reject(context.Background(), driver, "req-1"); err != nil {
		t.Fatalf("reject retry: %v", err)
	}
	if got := offers.seats("offer-1"); got != 3 {
		t.Fatalf("seats_available = %d, want 3 restored", got)
	}
}

// A transient failure during accept must leave the request pending with
// the pool untouched: the status flip and the seat commit move together.
func TestAcceptTransientFailureLeavesInventoryConsistent(t *testing.T) {
	offers, requests, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	requests.put(pendingRequest("req-1", "offer-1", "passenger-1", 2))
	requests.failOn = "req-1"

	_, err := svc.Accept(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "req-1")
	if !myerrors.IsKind(err, myerrors.KindTimeout) {
		t.Fatalf("got %v, want timeout error", err)
	}
	if got := requests.status("req-1"); got != model.RequestStatusPending {
		t.Fatalf("request status = %s, want PENDING after failed accept", got)
	}
	if got := offers.seats("offer-1"); got != 3 {
		t.Fatalf("seats_available = %d, want 3 untouched", got)
	}
}

func TestRejectTerminalRequestRefused(t *testing.T) {
	offers, requests, _, svc := newRequestsFixture()
	offers.put(scheduledOffer("offer-1", "driver-1", 3))
	r := pendingRequest("req-1", "offer-1", "passenger-1", 1)
	r.Status = model.RequestStatusCompleted
	requests.put(r)

	_, err := svc.Reject(context.Background(), model.Actor{ID: "driver-1", Role: model.RoleDriver}, "req-1")
	if !myerrors.IsKind(err, myerrors.KindState) {
		t.Fatalf("got %v, want state error", err)
	}
}
