package services

import (
	"context"

	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

// RideExecService is the execution machine for an offer's physical
// progress: SCHEDULED/ACTIVE -> IN_PROGRESS -> COMPLETED, with CANCELLED
// handled by the offers service. It is the only caller that walks requests
// to PICKED_UP and COMPLETED.
type RideExecService struct {
	log          mylogger.Logger
	offersRepo   ports.IOffersRepo
	requestsRepo ports.IRequestsRepo
	dispatcher   ports.IDispatcher
}

func NewRideExecService(
	log mylogger.Logger,
	offersRepo ports.IOffersRepo,
	requestsRepo ports.IRequestsRepo,
	dispatcher ports.IDispatcher,
) ports.IRideExecService {
	return &RideExecService{
		log:          log,
		offersRepo:   offersRepo,
		requestsRepo: requestsRepo,
		dispatcher:   dispatcher,
	}
}

func (s *RideExecService) Start(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error) {
	log := s.log.Action("StartRide")

	offer, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return model.Offer{}, err
	}

	ok, err := s.offersRepo.SetStatus(ctx, offerID,
		[]string{model.OfferStatusScheduled, model.OfferStatusActive},
		model.OfferStatusInProgress)
	if err != nil {
		return model.Offer{}, err
	}
	if !ok {
		return model.Offer{}, myerrors.Statef("ride cannot start while the offer is %s", offer.Status)
	}

	if err := s.offersRepo.AppendEvent(ctx, offerID, model.NotifyRideStarted, nil); err != nil {
		log.Warn("audit append failed", "offer_id", offerID, "err", err.Error())
	}

	accepted, err := s.requestsRepo.ListByOffer(ctx, offerID, []string{model.RequestStatusAccepted})
	if err != nil {
		log.Warn("could not list accepted requests for fan-out", "offer_id", offerID, "err", err.Error())
		accepted = nil
	}

	offer, err = s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Offer{}, err
	}
	s.dispatcher.Dispatch(model.RideStarted{Offer: offer, Accepted: accepted})

	log.Info("ride started", "offer_id", offerID, "passengers", len(accepted))
	return offer, nil
}

func (s *RideExecService) Pickup(ctx context.Context, actor model.Actor, offerID, requestID string) (model.Request, error) {
	log := s.log.Action("PickupPassenger")

	offer, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return model.Request{}, err
	}
	if offer.Status != model.OfferStatusInProgress {
		return model.Request{}, myerrors.Statef("pickup requires an in-progress ride, offer is %s", offer.Status)
	}

	request, err := s.requestsRepo.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if request.OfferID != offerID {
		return model.Request{}, myerrors.Validationf("request %s does not belong to offer %s", requestID, offerID)
	}
	if !model.RequestCanTransition(request.Status, model.RequestStatusPickedUp) {
		return model.Request{}, myerrors.Statef("request %s is %s and cannot be picked up", requestID, request.Status)
	}

	moved, err := s.requestsRepo.UpdateStatus(ctx, requestID,
		[]string{model.RequestStatusAccepted}, model.RequestStatusPickedUp)
	if err != nil {
		return model.Request{}, err
	}
	if !moved {
		return model.Request{}, myerrors.Statef("request %s is %s and cannot be picked up", requestID, request.Status)
	}

	request, err = s.requestsRepo.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}

	s.dispatcher.Dispatch(model.PassengerPickedUp{Offer: offer, Request: request})

	log.Info("passenger picked up", "offer_id", offerID, "request_id", requestID)
	return request, nil
}

// Complete stamps the offer terminal and walks every accepted/picked-up
// request to COMPLETED. The walk is idempotent: when the offer is already
// completed the call re-runs the walk and reports success, so an
// interrupted cascade can always be retried. A request that fails to move
// mid-walk is logged and skipped, never surfaced as a top-level failure.
func (s *RideExecService) Complete(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error) {
	log := s.log.Action("CompleteRide")

	offer, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return model.Offer{}, err
	}

	ok, err := s.offersRepo.SetStatus(ctx, offerID,
		[]string{model.OfferStatusInProgress}, model.OfferStatusCompleted)
	if err != nil {
		return model.Offer{}, err
	}
	if !ok {
		// Re-running against an already-completed offer resumes the walk;
		// anything else is an illegal transition.
		if offer.Status != model.OfferStatusCompleted {
			current, gerr := s.offersRepo.GetByID(ctx, offerID)
			if gerr == nil && current.Status == model.OfferStatusCompleted {
				offer = current
			} else {
				return model.Offer{}, myerrors.Statef("ride cannot complete while the offer is %s", offer.Status)
			}
		}
	} else {
		if err := s.offersRepo.AppendEvent(ctx, offerID, model.NotifyRideCompleted, nil); err != nil {
			log.Warn("audit append failed", "offer_id", offerID, "err", err.Error())
		}
	}

	active, err := s.requestsRepo.ListByOffer(ctx, offerID,
		[]string{model.RequestStatusAccepted, model.RequestStatusPickedUp})
	if err != nil {
		log.Error("completion walk could not list requests", err, "offer_id", offerID)
		active = nil
	}

	var completed []model.Request
	for _, r := range active {
		moved, err := s.requestsRepo.UpdateStatus(ctx, r.ID,
			[]string{model.RequestStatusAccepted, model.RequestStatusPickedUp},
			model.RequestStatusCompleted)
		if err != nil {
			log.Error("completion walk skipped a request", err, "request_id", r.ID)
			continue
		}
		if moved {
			r.Status = model.RequestStatusCompleted
			completed = append(completed, r)
		}
	}

	offer, err = s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Offer{}, err
	}

	if len(completed) > 0 {
		s.dispatcher.Dispatch(model.RideCompleted{Offer: offer, Completed: completed})
	}

	log.Info("ride completed", "offer_id", offerID, "requests_completed", len(completed))
	return offer, nil
}

func (s *RideExecService) ownedOffer(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error) {
	offer, err := s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Offer{}, err
	}
	if offer.DriverID != actor.ID {
		return model.Offer{}, myerrors.Authorizationf("offer %s is not owned by the caller", offerID)
	}
	return offer, nil
}
