package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
	"carpool/internal/observability"
)

// RequestsService owns a request's approval lifecycle and keeps the seat
// inventory consistent through the offers repo's seat-adjustment primitive.
type RequestsService struct {
	log          mylogger.Logger
	offersRepo   ports.IOffersRepo
	requestsRepo ports.IRequestsRepo
	dispatcher   ports.IDispatcher
}

func NewRequestsService(
	log mylogger.Logger,
	offersRepo ports.IOffersRepo,
	requestsRepo ports.IRequestsRepo,
	dispatcher ports.IDispatcher,
) ports.IRequestsService {
	return &RequestsService{
		log:          log,
		offersRepo:   offersRepo,
		requestsRepo: requestsRepo,
		dispatcher:   dispatcher,
	}
}

// Create registers a pending request. Inventory is untouched here: seats
// are committed only on acceptance, so pending requests may legitimately
// oversubscribe the pool until the driver resolves them.
func (s *RequestsService) Create(ctx context.Context, actor model.Actor, req dto.CreateRequestRequest) (model.Request, error) {
	log := s.log.Action("CreateRequest")

	if req.SeatsRequested == nil || *req.SeatsRequested < 1 {
		return model.Request{}, myerrors.Validationf("seats_requested must be present and >= 1")
	}

	offer, err := s.offersRepo.GetByID(ctx, req.OfferID)
	if err != nil {
		return model.Request{}, err
	}
	if offer.DriverID == actor.ID {
		return model.Request{}, myerrors.Validationf("cannot request a seat on your own offer")
	}
	if *req.SeatsRequested > offer.SeatsTotal {
		return model.Request{}, myerrors.Validationf("seats_requested exceeds the offer's seat pool of %d", offer.SeatsTotal)
	}
	switch offer.Status {
	case model.OfferStatusScheduled, model.OfferStatusActive:
	default:
		return model.Request{}, myerrors.Statef("offer %s is %s and not accepting requests", offer.ID, offer.Status)
	}

	now := time.Now().UTC()
	request := model.Request{
		ID:             uuid.NewString(),
		OfferID:        offer.ID,
		PassengerID:    actor.ID,
		SeatsRequested: *req.SeatsRequested,
		Status:         model.RequestStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.requestsRepo.Create(ctx, request); err != nil {
		log.Error("request insert failed", err, "offer_id", offer.ID)
		return model.Request{}, err
	}

	s.dispatcher.Dispatch(model.RequestCreated{Offer: offer, Request: request})

	log.Info("request created", "request_id", request.ID, "offer_id", offer.ID, "seats", request.SeatsRequested)
	return request, nil
}

// Accept flips the status and commits the seats in one transactional
// write. When the seat pool cannot cover the request the whole resolve
// rolls back and the request stays pending.
func (s *RequestsService) Accept(ctx context.Context, actor model.Actor, requestID string) (model.Request, error) {
	log := s.log.Action("AcceptRequest")

	request, offer, err := s.loadForDriver(ctx, actor, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if !model.RequestCanTransition(request.Status, model.RequestStatusAccepted) {
		return model.Request{}, myerrors.Statef("request %s is %s, only pending requests can be accepted", requestID, request.Status)
	}

	moved, err := s.requestsRepo.ResolveWithSeats(ctx, requestID,
		[]string{model.RequestStatusPending}, model.RequestStatusAccepted,
		offer.ID, -request.SeatsRequested)
	if err != nil {
		if myerrors.IsKind(err, myerrors.KindCapacity) {
			observability.CapacityConflicts.Inc()
			log.Warn("accept refused, pool exhausted", "request_id", requestID, "offer_id", offer.ID)
		}
		return model.Request{}, err
	}
	if !moved {
		return model.Request{}, myerrors.Statef("request %s was resolved concurrently", requestID)
	}

	observability.SeatsCommittedTotal.Add(float64(request.SeatsRequested))
	request.Status = model.RequestStatusAccepted
	request.UpdatedAt = time.Now().UTC()

	s.dispatcher.Dispatch(model.RequestAccepted{Offer: offer, Request: request})

	log.Info("request accepted", "request_id", requestID, "offer_id", offer.ID, "seats", request.SeatsRequested)
	return request, nil
}

// Reject closes a pending or accepted request. An accepted one hands its
// seats back in the same transactional write that flips the status, so a
// failed restore leaves the request accepted and the seats held rather
// than leaking them.
func (s *RequestsService) Reject(ctx context.Context, actor model.Actor, requestID string) (model.Request, error) {
	log := s.log.Action("RejectRequest")

	request, offer, err := s.loadForDriver(ctx, actor, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if !model.RequestCanTransition(request.Status, model.RequestStatusRejected) {
		if model.RequestTerminal(request.Status) {
			return model.Request{}, myerrors.Statef("request %s is already %s", requestID, request.Status)
		}
		return model.Request{}, myerrors.Statef("request %s is %s and cannot be rejected", requestID, request.Status)
	}

	wasAccepted := request.Status == model.RequestStatusAccepted
	var moved bool
	if wasAccepted {
		moved, err = s.requestsRepo.ResolveWithSeats(ctx, requestID,
			[]string{model.RequestStatusAccepted}, model.RequestStatusRejected,
			offer.ID, request.SeatsRequested)
	} else {
		moved, err = s.requestsRepo.UpdateStatus(ctx, requestID,
			[]string{model.RequestStatusPending}, model.RequestStatusRejected)
	}
	if err != nil {
		log.Error("reject write failed", err, "offer_id", offer.ID, "request_id", requestID)
		return model.Request{}, err
	}
	if !moved {
		return model.Request{}, myerrors.Statef("request %s was resolved concurrently", requestID)
	}
	if wasAccepted {
		observability.SeatsReleasedTotal.Add(float64(request.SeatsRequested))
	}

	request.Status = model.RequestStatusRejected
	request.UpdatedAt = time.Now().UTC()

	s.dispatcher.Dispatch(model.RequestRejected{Offer: offer, Request: request, WasAccepted: wasAccepted})

	log.Info("request rejected", "request_id", requestID, "was_accepted", wasAccepted)
	return request, nil
}

func (s *RequestsService) ListForDriver(ctx context.Context, driverID string) ([]model.Request, error) {
	return s.requestsRepo.ListByDriver(ctx, driverID)
}

func (s *RequestsService) ListForPassenger(ctx context.Context, passengerID string) ([]model.Request, error) {
	return s.requestsRepo.ListByPassenger(ctx, passengerID)
}

func (s *RequestsService) loadForDriver(ctx context.Context, actor model.Actor, requestID string) (model.Request, model.Offer, error) {
	request, err := s.requestsRepo.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, model.Offer{}, err
	}
	offer, err := s.offersRepo.GetByID(ctx, request.OfferID)
	if err != nil {
		return model.Request{}, model.Offer{}, err
	}
	if offer.DriverID != actor.ID {
		return model.Request{}, model.Offer{}, myerrors.Authorizationf("request %s does not belong to one of the caller's offers", requestID)
	}
	return request, offer, nil
}
