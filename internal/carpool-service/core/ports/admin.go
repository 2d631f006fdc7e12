package ports

import (
	"context"

	"carpool/internal/carpool-service/core/domain/dto"
)

type IAdminRepo interface {
	OfferMetrics(ctx context.Context) (dto.OfferMetrics, error)
	RequestMetrics(ctx context.Context) (dto.RequestMetrics, error)
	RatingMetrics(ctx context.Context) (dto.RatingMetrics, error)
	SeatInventory(ctx context.Context) (dto.SeatInventory, error)
	Hotspots(ctx context.Context, limit int) ([]dto.RouteHotspot, error)
	LiveRides(ctx context.Context, page, pageSize int) (int, []dto.LiveRide, error)
}

type IAdminService interface {
	Overview(ctx context.Context) (dto.MarketplaceOverview, error)
	LiveRides(ctx context.Context, page, pageSize int) (dto.LiveRidesPage, error)
}
