package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

// OffersService owns an offer's seat inventory and schedule.
type OffersService struct {
	log          mylogger.Logger
	offersRepo   ports.IOffersRepo
	requestsRepo ports.IRequestsRepo
	dispatcher   ports.IDispatcher
}

func NewOffersService(
	log mylogger.Logger,
	offersRepo ports.IOffersRepo,
	requestsRepo ports.IRequestsRepo,
	dispatcher ports.IDispatcher,
) ports.IOffersService {
	return &OffersService{
		log:          log,
		offersRepo:   offersRepo,
		requestsRepo: requestsRepo,
		dispatcher:   dispatcher,
	}
}

func (s *OffersService) Create(ctx context.Context, actor model.Actor, req dto.CreateOfferRequest) (model.Offer, error) {
	log := s.log.Action("CreateOffer")

	if actor.Role != model.RoleDriver {
		return model.Offer{}, myerrors.Authorizationf("only drivers may publish offers")
	}
	if err := validateRoute(req.Origin, req.Destination); err != nil {
		return model.Offer{}, err
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return model.Offer{}, err
	}
	if req.PricePerSeat == nil || *req.PricePerSeat < 0 {
		return model.Offer{}, myerrors.Validationf("price_per_seat must be present and >= 0")
	}
	if req.SeatsTotal == nil || *req.SeatsTotal < 1 {
		return model.Offer{}, myerrors.Validationf("seats_total must be present and >= 1")
	}
	genderPref := req.GenderPref
	if genderPref == "" {
		genderPref = model.GenderPrefAny
	}
	if !model.ValidGenderPref(genderPref) {
		return model.Offer{}, myerrors.Validationf("unknown gender_pref %q", req.GenderPref)
	}

	now := time.Now().UTC()
	offer := model.Offer{
		ID:             uuid.NewString(),
		DriverID:       actor.ID,
		Origin:         *req.Origin,
		Destination:    *req.Destination,
		Schedule:       req.Schedule,
		PricePerSeat:   *req.PricePerSeat,
		SeatsTotal:     *req.SeatsTotal,
		SeatsAvailable: *req.SeatsTotal,
		GenderPref:     genderPref,
		Vehicle:        req.Vehicle,
		Status:         model.OfferStatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.offersRepo.Create(ctx, offer); err != nil {
		log.Error("offer insert failed", err, "driver_id", actor.ID)
		return model.Offer{}, err
	}

	log.Info("offer created", "offer_id", offer.ID, "driver_id", actor.ID, "seats", offer.SeatsTotal)
	return offer, nil
}

func (s *OffersService) Get(ctx context.Context, offerID string) (model.Offer, error) {
	return s.offersRepo.GetByID(ctx, offerID)
}

func (s *OffersService) List(ctx context.Context, q dto.ListOffersQuery) ([]model.Offer, error) {
	for _, st := range q.Statuses {
		switch st {
		case model.OfferStatusScheduled, model.OfferStatusActive, model.OfferStatusInProgress,
			model.OfferStatusCompleted, model.OfferStatusCancelled:
		default:
			return nil, myerrors.Validationf("unknown offer status %q", st)
		}
	}
	return s.offersRepo.List(ctx, q.Statuses, q.DriverID)
}

func (s *OffersService) Update(ctx context.Context, actor model.Actor, offerID string, patch dto.UpdateOfferRequest) (model.Offer, error) {
	log := s.log.Action("UpdateOffer")

	offer, err := s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Offer{}, err
	}
	if offer.DriverID != actor.ID {
		return model.Offer{}, myerrors.Authorizationf("offer %s is not owned by the caller", offerID)
	}
	if model.OfferTerminal(offer.Status) {
		return model.Offer{}, myerrors.Statef("offer %s is %s and can no longer be edited", offerID, offer.Status)
	}

	if patch.Schedule != nil {
		if err := validateSchedule(patch.Schedule); err != nil {
			return model.Offer{}, err
		}
		offer.Schedule = patch.Schedule
	}
	if patch.PricePerSeat != nil {
		if *patch.PricePerSeat < 0 {
			return model.Offer{}, myerrors.Validationf("price_per_seat must be >= 0")
		}
		offer.PricePerSeat = *patch.PricePerSeat
	}
	if patch.Vehicle != nil {
		offer.Vehicle = *patch.Vehicle
	}
	if patch.GenderPref != nil {
		if !model.ValidGenderPref(*patch.GenderPref) {
			return model.Offer{}, myerrors.Validationf("unknown gender_pref %q", *patch.GenderPref)
		}
		offer.GenderPref = *patch.GenderPref
	}
	if patch.SeatsTotal != nil {
		// The pool size is fixed once any seat is committed.
		if offer.SeatsAvailable != offer.SeatsTotal {
			return model.Offer{}, myerrors.Statef("seats_total cannot change while seats are committed")
		}
		if *patch.SeatsTotal < 1 {
			return model.Offer{}, myerrors.Validationf("seats_total must be >= 1")
		}
		offer.SeatsTotal = *patch.SeatsTotal
		offer.SeatsAvailable = *patch.SeatsTotal
	}
	offer.UpdatedAt = time.Now().UTC()

	if err := s.offersRepo.Update(ctx, offer); err != nil {
		log.Error("offer update failed", err, "offer_id", offerID)
		return model.Offer{}, err
	}

	accepted, err := s.requestsRepo.ListByOffer(ctx, offerID, []string{model.RequestStatusAccepted, model.RequestStatusPickedUp})
	if err != nil {
		log.Warn("could not list accepted requests for fan-out", "offer_id", offerID, "err", err.Error())
		accepted = nil
	}
	s.dispatcher.Dispatch(model.OfferUpdated{Offer: offer, Initiator: actor.ID, AcceptedReq: accepted})

	log.Info("offer updated", "offer_id", offerID)
	return offer, nil
}

// Cancel soft-terminates the offer. Pending requests are auto-rejected
// (they hold no seats, so nothing is restored); holders of accepted or
// picked-up requests are notified.
func (s *OffersService) Cancel(ctx context.Context, actor model.Actor, offerID string) (model.Offer, error) {
	log := s.log.Action("CancelOffer")

	offer, err := s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Offer{}, err
	}
	if offer.DriverID != actor.ID {
		return model.Offer{}, myerrors.Authorizationf("offer %s is not owned by the caller", offerID)
	}
	if model.OfferTerminal(offer.Status) {
		return model.Offer{}, myerrors.Statef("offer %s is already %s", offerID, offer.Status)
	}

	ok, err := s.offersRepo.SetStatus(ctx, offerID,
		[]string{model.OfferStatusScheduled, model.OfferStatusActive, model.OfferStatusInProgress},
		model.OfferStatusCancelled)
	if err != nil {
		return model.Offer{}, err
	}
	if !ok {
		return model.Offer{}, myerrors.Statef("offer %s changed state concurrently", offerID)
	}
	offer.Status = model.OfferStatusCancelled

	pendings, err := s.requestsRepo.ListByOffer(ctx, offerID, []string{model.RequestStatusPending})
	if err != nil {
		log.Warn("could not list pending requests", "offer_id", offerID, "err", err.Error())
		pendings = nil
	}
	var autoRejected []model.Request
	for _, p := range pendings {
		moved, err := s.requestsRepo.UpdateStatus(ctx, p.ID, []string{model.RequestStatusPending}, model.RequestStatusRejected)
		if err != nil {
			log.Error("auto-reject failed", err, "request_id", p.ID)
			continue
		}
		if moved {
			p.Status = model.RequestStatusRejected
			autoRejected = append(autoRejected, p)
		}
	}

	holders, err := s.requestsRepo.ListByOffer(ctx, offerID, []string{model.RequestStatusAccepted, model.RequestStatusPickedUp})
	if err != nil {
		log.Warn("could not list holders", "offer_id", offerID, "err", err.Error())
		holders = nil
	}

	if err := s.offersRepo.AppendEvent(ctx, offerID, model.NotifyOfferCancelled, map[string]any{
		"cancelled_by": actor.ID,
		"holders":      len(holders),
	}); err != nil {
		log.Warn("audit append failed", "offer_id", offerID, "err", err.Error())
	}

	s.dispatcher.Dispatch(model.OfferCancelled{Offer: offer, Initiator: actor.ID, Holders: holders, AutoRejected: autoRejected})

	log.Info("offer cancelled", "offer_id", offerID, "holders", len(holders), "auto_rejected", len(autoRejected))
	return offer, nil
}

func validateRoute(origin, destination *model.GeoPoint) error {
	if origin == nil || destination == nil {
		return myerrors.Validationf("origin and destination are required")
	}
	for _, p := range []*model.GeoPoint{origin, destination} {
		if math.Abs(p.Latitude) > 90 {
			return myerrors.Validationf("latitude must be within [-90, 90]")
		}
		if math.Abs(p.Longitude) > 180 {
			return myerrors.Validationf("longitude must be within [-180, 180]")
		}
	}
	return nil
}

func validateSchedule(entries []model.ScheduleEntry) error {
	if len(entries) == 0 {
		return myerrors.Validationf("at least one schedule entry is required")
	}
	for _, e := range entries {
		if e.DepartureAt.IsZero() {
			return myerrors.Validationf("schedule entry is missing departure_at")
		}
		if !model.ValidRecurrence(e.Recurrence) {
			return myerrors.Validationf("unknown recurrence %q", e.Recurrence)
		}
	}
	return nil
}
