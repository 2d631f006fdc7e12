package services

import (
	"context"
	"sync"
	"time"

	"carpool/internal/carpool-service/core/domain/model"
	websocketdto "carpool/internal/carpool-service/core/domain/websocket_dto"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/mylogger"
)

func testLogger() mylogger.Logger {
	return mylogger.New("test", "ERROR")
}

// fakeOffersRepo mirrors the conditional-write semantics of the real
// store: seat adjustments and status moves only land when their guard
// holds under the lock.
type fakeOffersRepo struct {
	mu     sync.Mutex
	offers map[string]model.Offer
	events []string
}

func newFakeOffersRepo() *fakeOffersRepo {
	return &fakeOffersRepo{offers: make(map[string]model.Offer)}
}

func (f *fakeOffersRepo) put(o model.Offer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers[o.ID] = o
}

func (f *fakeOffersRepo) Create(ctx context.Context, o model.Offer) error {
	f.put(o)
	return nil
}

func (f *fakeOffersRepo) GetByID(ctx context.Context, offerID string) (model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return model.Offer{}, myerrors.NotFoundf("offer %s not found", offerID)
	}
	return o, nil
}

func (f *fakeOffersRepo) List(ctx context.Context, statuses []string, driverID string) ([]model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Offer
	for _, o := range f.offers {
		if driverID != "" && o.DriverID != driverID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, o.Status) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOffersRepo) Update(ctx context.Context, o model.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.offers[o.ID]
	if !ok {
		return myerrors.NotFoundf("offer %s not found", o.ID)
	}
	cur.Schedule = o.Schedule
	cur.PricePerSeat = o.PricePerSeat
	cur.SeatsTotal = o.SeatsTotal
	cur.SeatsAvailable = o.SeatsAvailable
	cur.GenderPref = o.GenderPref
	cur.Vehicle = o.Vehicle
	f.offers[o.ID] = cur
	return nil
}

// adjustSeats applies the bounded seat write the store performs inside
// ResolveWithSeats' transaction.
func (f *fakeOffersRepo) adjustSeats(offerID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return myerrors.NotFoundf("offer %s not found", offerID)
	}
	next := o.SeatsAvailable + delta
	if next < 0 || next > o.SeatsTotal {
		return myerrors.Capacityf("seat adjustment by %d would leave offer %s outside its pool", delta, offerID)
	}
	o.SeatsAvailable = next
	f.offers[offerID] = o
	return nil
}

func (f *fakeOffersRepo) SetStatus(ctx context.Context, offerID string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return false, nil
	}
	if !contains(from, o.Status) {
		return false, nil
	}
	o.Status = to
	f.offers[offerID] = o
	return true, nil
}

func (f *fakeOffersRepo) AppendEvent(ctx context.Context, offerID, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeOffersRepo) seats(offerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offers[offerID].SeatsAvailable
}

// fakeRequestsRepo holds the offers fake so ResolveWithSeats can mimic
// the store's transaction: status and seats move together or not at all.
type fakeRequestsRepo struct {
	mu       sync.Mutex
	requests map[string]model.Request
	offers   *fakeOffersRepo
	// failOn makes UpdateStatus and ResolveWithSeats error for one request
	// id, to exercise the failure paths.
	failOn string
}

func newFakeRequestsRepo(offers *fakeOffersRepo) *fakeRequestsRepo {
	return &fakeRequestsRepo{requests: make(map[string]model.Request), offers: offers}
}

func (f *fakeRequestsRepo) put(r model.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = r
}

func (f *fakeRequestsRepo) Create(ctx context.Context, r model.Request) error {
	f.put(r)
	return nil
}

func (f *fakeRequestsRepo) GetByID(ctx context.Context, requestID string) (model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok {
		return model.Request{}, myerrors.NotFoundf("request %s not found", requestID)
	}
	return r, nil
}

func (f *fakeRequestsRepo) ListByOffer(ctx context.Context, offerID string, statuses []string) ([]model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Request
	for _, r := range f.requests {
		if r.OfferID != offerID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRequestsRepo) ListByPassenger(ctx context.Context, passengerID string) ([]model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Request
	for _, r := range f.requests {
		if r.PassengerID == passengerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestsRepo) ListByDriver(ctx context.Context, driverID string) ([]model.Request, error) {
	return nil, nil
}

func (f *fakeRequestsRepo) UpdateStatus(ctx context.Context, requestID string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if requestID == f.failOn {
		return false, myerrors.Timeoutf("store deadline exceeded")
	}
	r, ok := f.requests[requestID]
	if !ok {
		return false, nil
	}
	if !contains(from, r.Status) {
		return false, nil
	}
	r.Status = to
	if to == model.RequestStatusPickedUp {
		now := time.Now().UTC()
		r.PickedUpAt = &now
	}
	f.requests[requestID] = r
	return true, nil
}

func (f *fakeRequestsRepo) ResolveWithSeats(ctx context.Context, requestID string, from []string, to string, offerID string, seatDelta int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if requestID == f.failOn {
		return false, myerrors.Timeoutf("store deadline exceeded")
	}
	r, ok := f.requests[requestID]
	if !ok || !contains(from, r.Status) {
		return false, nil
	}
	if err := f.offers.adjustSeats(offerID, seatDelta); err != nil {
		return false, err
	}
	r.Status = to
	f.requests[requestID] = r
	return true, nil
}

func (f *fakeRequestsRepo) HasCompleted(ctx context.Context, offerID, passengerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.OfferID == offerID && r.PassengerID == passengerID && r.Status == model.RequestStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestsRepo) status(requestID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[requestID].Status
}

type fakeNotificationsRepo struct {
	mu      sync.Mutex
	created []model.Notification
	failAll bool
}

func (f *fakeNotificationsRepo) Create(ctx context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return myerrors.Timeoutf("store deadline exceeded")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationsRepo) ListByRecipient(ctx context.Context, recipientID, audience string, unreadOnly bool) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.created {
		if n.RecipientID != recipientID {
			continue
		}
		if audience != "" && n.Audience != audience && n.Audience != model.AudienceBoth {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationsRepo) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.created {
		if n.ID == notificationID && n.RecipientID == recipientID {
			f.created[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationsRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i, notif := range f.created {
		if notif.RecipientID == recipientID && !notif.Read {
			f.created[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationsRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, notif := range f.created {
		if notif.RecipientID == recipientID && !notif.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.created[:0]
	var n int64
	for _, notif := range f.created {
		if notif.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, notif)
	}
	f.created = kept
	return n, nil
}

func (f *fakeNotificationsRepo) byRecipient(recipientID string) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

type fakeRatingsRepo struct {
	mu      sync.Mutex
	ratings map[string]model.Rating // keyed offerID + "/" + passengerID
}

func newFakeRatingsRepo() *fakeRatingsRepo {
	return &fakeRatingsRepo{ratings: make(map[string]model.Rating)}
}

func (f *fakeRatingsRepo) Create(ctx context.Context, r model.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.OfferID + "/" + r.PassengerID
	if _, ok := f.ratings[key]; ok {
		return myerrors.Conflictf("offer %s is already rated by passenger %s", r.OfferID, r.PassengerID)
	}
	f.ratings[key] = r
	return nil
}

// recordingDispatcher captures events synchronously so tests can assert
// on the exact fan-out a service produced.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []model.Event
}

func (d *recordingDispatcher) Dispatch(event model.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) byType(eventType string) []model.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Event
	for _, e := range d.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeWS struct {
	mu     sync.Mutex
	pushed map[string][]websocketdto.Event
}

func newFakeWS() *fakeWS {
	return &fakeWS{pushed: make(map[string][]websocketdto.Event)}
}

func (f *fakeWS) WriteToUser(userID string, event websocketdto.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed[userID] = append(f.pushed[userID], event)
}

type fakeBroker struct {
	mu        sync.Mutex
	published []model.Notification
	fail      bool
}

func (f *fakeBroker) PublishNotification(ctx context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return myerrors.Timeoutf("broker unavailable")
	}
	f.published = append(f.published, n)
	return nil
}

func (f *fakeBroker) IsAlive() bool { return !f.fail }
func (f *fakeBroker) Close() error  { return nil }

type fakeUnreadCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[string]int64)}
}

func (f *fakeUnreadCache) Incr(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[userID]++
	return nil
}

func (f *fakeUnreadCache) Set(ctx context.Context, userID string, n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[userID] = n
	return nil
}

func (f *fakeUnreadCache) Clear(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, userID)
	return nil
}

func (f *fakeUnreadCache) Get(ctx context.Context, userID string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.counts[userID]
	return n, ok, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ==== shared fixtures ====

func scheduledOffer(id, driverID string, seats int) model.Offer {
	now := time.Now().UTC()
	return model.Offer{
		ID:       id,
		DriverID: driverID,
		Origin:   model.GeoPoint{Latitude: 43.238, Longitude: 76.889, Address: "Almaty"},
		Destination: model.GeoPoint{
			Latitude: 51.160, Longitude: 71.470, Address: "Astana",
		},
		Schedule:       []model.ScheduleEntry{{DepartureAt: now.Add(24 * time.Hour), Recurrence: model.RecurrenceSingle}},
		PricePerSeat:   4500,
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		GenderPref:     model.GenderPrefAny,
		Vehicle:        "Toyota Camry",
		Status:         model.OfferStatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func pendingRequest(id, offerID, passengerID string, seats int) model.Request {
	now := time.Now().UTC()
	return model.Request{
		ID:             id,
		OfferID:        offerID,
		PassengerID:    passengerID,
		SeatsRequested: seats,
		Status:         model.RequestStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
