package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/ports"
)

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) ports.IAdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) OfferMetrics(ctx context.Context) (dto.OfferMetrics, error) {
	q := `
	SELECT
		COUNT(*) FILTER (WHERE status = 'SCHEDULED') as scheduled,
		COUNT(*) FILTER (WHERE status = 'ACTIVE') as active,
		COUNT(*) FILTER (WHERE status = 'IN_PROGRESS') as in_progress,
		COUNT(*) FILTER (WHERE status = 'COMPLETED') as completed,
		COUNT(*) FILTER (WHERE status = 'CANCELLED') as cancelled,
		COUNT(*) FILTER (WHERE created_at::date = current_date) as created_today
	FROM offers;
	`
	var m dto.OfferMetrics
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q).Scan(
			&m.Scheduled, &m.Active, &m.InProgress, &m.Completed, &m.Cancelled, &m.CreatedToday)
	})
	return m, err
}

func (r *AdminRepo) RequestMetrics(ctx context.Context) (dto.RequestMetrics, error) {
	q := `
	SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING') as pending,
		COUNT(*) FILTER (WHERE status = 'ACCEPTED') as accepted,
		COUNT(*) FILTER (WHERE status = 'PICKED_UP') as picked_up,
		COUNT(*) FILTER (WHERE status = 'COMPLETED') as completed,
		COUNT(*) FILTER (WHERE status = 'REJECTED') as rejected
	FROM requests;
	`
	var m dto.RequestMetrics
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q).Scan(&m.Pending, &m.Accepted, &m.PickedUp, &m.Completed, &m.Rejected)
	})
	return m, err
}

func (r *AdminRepo) RatingMetrics(ctx context.Context) (dto.RatingMetrics, error) {
	q := `SELECT COUNT(*), COALESCE(AVG(score), 0)::float FROM ratings;`

	var m dto.RatingMetrics
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q).Scan(&m.Count, &m.AverageScore)
	})
	return m, err
}

func (r *AdminRepo) SeatInventory(ctx context.Context) (dto.SeatInventory, error) {
	q := `
	SELECT
		COALESCE(SUM(seats_total), 0),
		COALESCE(SUM(seats_available), 0),
		COALESCE(SUM(seats_total - seats_available), 0)
	FROM offers
	WHERE status IN ('SCHEDULED', 'ACTIVE', 'IN_PROGRESS');
	`
	var inv dto.SeatInventory
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q).Scan(&inv.SeatsTotal, &inv.SeatsAvailable, &inv.SeatsCommitted)
	})
	return inv, err
}

func (r *AdminRepo) Hotspots(ctx context.Context, limit int) ([]dto.RouteHotspot, error) {
	q := `
	SELECT dest_address, COUNT(*) as open_offers
	FROM offers
	WHERE status IN ('SCHEDULED', 'ACTIVE') AND seats_available > 0
	GROUP BY dest_address
	ORDER BY open_offers DESC
	LIMIT $1;
	`
	var out []dto.RouteHotspot
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var h dto.RouteHotspot
			if err := rows.Scan(&h.Address, &h.OpenOffers); err != nil {
				return err
			}
			out = append(out, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AdminRepo) LiveRides(ctx context.Context, page, pageSize int) (int, []dto.LiveRide, error) {
	countQ := `SELECT COUNT(*) FROM offers WHERE status = 'IN_PROGRESS';`

	pageQ := `
	SELECT
		o.offer_id, o.driver_id, o.origin_address, o.dest_address,
		o.seats_total, o.seats_available,
		COUNT(r.request_id) FILTER (WHERE r.status = 'PICKED_UP') as passengers_on_board,
		o.started_at
	FROM offers o
	LEFT JOIN requests r ON r.offer_id = o.offer_id
	WHERE o.status = 'IN_PROGRESS'
	GROUP BY o.offer_id
	ORDER BY o.started_at DESC
	LIMIT $1 OFFSET $2;
	`

	var total int
	var rides []dto.LiveRide
	err := withRetry(ctx, func(ctx context.Context) error {
		if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
			return err
		}

		rows, err := r.db.Query(ctx, pageQ, pageSize, (page-1)*pageSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		rides = rides[:0]
		for rows.Next() {
			var lr dto.LiveRide
			if err := rows.Scan(&lr.OfferID, &lr.DriverID, &lr.OriginAddress, &lr.DestAddress,
				&lr.SeatsTotal, &lr.SeatsAvailable, &lr.PassengersOnBoard, &lr.StartedAt); err != nil {
				return err
			}
			rides = append(rides, lr)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, err
	}
	return total, rides, nil
}
