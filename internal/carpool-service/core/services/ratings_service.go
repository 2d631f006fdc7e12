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
)

// RatingsService gates ratings behind a completed ride: one rating per
// (offer, passenger), only after that passenger's request reached
// COMPLETED.
type RatingsService struct {
	log          mylogger.Logger
	offersRepo   ports.IOffersRepo
	requestsRepo ports.IRequestsRepo
	ratingsRepo  ports.IRatingsRepo
	dispatcher   ports.IDispatcher
}

func NewRatingsService(
	log mylogger.Logger,
	offersRepo ports.IOffersRepo,
	requestsRepo ports.IRequestsRepo,
	ratingsRepo ports.IRatingsRepo,
	dispatcher ports.IDispatcher,
) ports.IRatingsService {
	return &RatingsService{
		log:          log,
		offersRepo:   offersRepo,
		requestsRepo: requestsRepo,
		ratingsRepo:  ratingsRepo,
		dispatcher:   dispatcher,
	}
}

func (s *RatingsService) Submit(ctx context.Context, actor model.Actor, offerID string, req dto.SubmitRatingRequest) (model.Rating, error) {
	log := s.log.Action("SubmitRating")

	if req.Score == nil || *req.Score < 1 || *req.Score > 5 {
		return model.Rating{}, myerrors.Validationf("score must be an integer between 1 and 5")
	}

	offer, err := s.offersRepo.GetByID(ctx, offerID)
	if err != nil {
		return model.Rating{}, err
	}

	done, err := s.requestsRepo.HasCompleted(ctx, offerID, actor.ID)
	if err != nil {
		return model.Rating{}, err
	}
	if !done {
		return model.Rating{}, myerrors.Authorizationf("no completed ride on offer %s for the caller", offerID)
	}

	rating := model.Rating{
		ID:          uuid.NewString(),
		OfferID:     offerID,
		PassengerID: actor.ID,
		DriverID:    offer.DriverID,
		Score:       *req.Score,
		Feedback:    req.Feedback,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.ratingsRepo.Create(ctx, rating); err != nil {
		if myerrors.IsKind(err, myerrors.KindConflict) {
			log.Warn("duplicate rating refused", "offer_id", offerID, "passenger_id", actor.ID)
		}
		return model.Rating{}, err
	}

	s.dispatcher.Dispatch(model.RatingSubmitted{Offer: offer, Rating: rating})

	log.Info("rating recorded", "offer_id", offerID, "score", rating.Score)
	return rating, nil
}
