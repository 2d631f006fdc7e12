package services

import (
	"context"
	"time"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

const hotspotLimit = 5

// AdminService assembles the operator views. Read-only; it never touches
// the lifecycle paths.
type AdminService struct {
	log  mylogger.Logger
	repo ports.IAdminRepo
}

func NewAdminService(log mylogger.Logger, repo ports.IAdminRepo) ports.IAdminService {
	return &AdminService{log: log, repo: repo}
}

func (s *AdminService) Overview(ctx context.Context) (dto.MarketplaceOverview, error) {
	log := s.log.Action("AdminOverview")

	offers, err := s.repo.OfferMetrics(ctx)
	if err != nil {
		log.Error("offer metrics query failed", err)
		return dto.MarketplaceOverview{}, err
	}
	requests, err := s.repo.RequestMetrics(ctx)
	if err != nil {
		log.Error("request metrics query failed", err)
		return dto.MarketplaceOverview{}, err
	}
	ratings, err := s.repo.RatingMetrics(ctx)
	if err != nil {
		log.Error("rating metrics query failed", err)
		return dto.MarketplaceOverview{}, err
	}
	inventory, err := s.repo.SeatInventory(ctx)
	if err != nil {
		log.Error("inventory query failed", err)
		return dto.MarketplaceOverview{}, err
	}
	hotspots, err := s.repo.Hotspots(ctx, hotspotLimit)
	if err != nil {
		log.Error("hotspot query failed", err)
		return dto.MarketplaceOverview{}, err
	}

	return dto.MarketplaceOverview{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Offers:    offers,
		Requests:  requests,
		Ratings:   ratings,
		Inventory: inventory,
		Hotspots:  hotspots,
	}, nil
}

func (s *AdminService) LiveRides(ctx context.Context, page, pageSize int) (dto.LiveRidesPage, error) {
	if page < 1 {
		return dto.LiveRidesPage{}, myerrors.Validationf("page must be >= 1")
	}
	if pageSize < 1 || pageSize > 100 {
		return dto.LiveRidesPage{}, myerrors.Validationf("page_size must be within [1, 100]")
	}

	total, rides, err := s.repo.LiveRides(ctx, page, pageSize)
	if err != nil {
		s.log.Action("AdminLiveRides").Error("live rides query failed", err)
		return dto.LiveRidesPage{}, err
	}
	return dto.LiveRidesPage{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Rides:    rides,
	}, nil
}
