package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
)

type OffersRepo struct {
	db *pgxpool.Pool
}

func NewOffersRepo(db *pgxpool.Pool) ports.IOffersRepo {
	return &OffersRepo{db: db}
}

const offerColumns = `offer_id, driver_id,
	origin_lat, origin_lng, origin_address,
	dest_lat, dest_lng, dest_address,
	schedule, price_per_seat, seats_total, seats_available,
	gender_pref, vehicle, status, started_at, ended_at, created_at, updated_at`

func (r *OffersRepo) Create(ctx context.Context, o model.Offer) error {
	q := `INSERT INTO offers(` + offerColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, q,
			o.ID, o.DriverID,
			o.Origin.Latitude, o.Origin.Longitude, o.Origin.Address,
			o.Destination.Latitude, o.Destination.Longitude, o.Destination.Address,
			o.Schedule, o.PricePerSeat, o.SeatsTotal, o.SeatsAvailable,
			o.GenderPref, o.Vehicle, o.Status, o.StartedAt, o.EndedAt, o.CreatedAt, o.UpdatedAt)
		return err
	})
}

func (r *OffersRepo) GetByID(ctx context.Context, offerID string) (model.Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers WHERE offer_id = $1`

	var o model.Offer
	err := withRetry(ctx, func(ctx context.Context) error {
		return scanOffer(r.db.QueryRow(ctx, q, offerID), &o)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Offer{}, myerrors.NotFoundf("offer %s not found", offerID)
	}
	if err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

func (r *OffersRepo) List(ctx context.Context, statuses []string, driverID string) ([]model.Offer, error) {
	if statuses == nil {
		statuses = []string{}
	}
	q := `SELECT ` + offerColumns + ` FROM offers
	      WHERE (cardinality($1::text[]) = 0 OR status = ANY($1))
	        AND ($2 = '' OR driver_id = $2)
	      ORDER BY created_at DESC`

	var out []model.Offer
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, statuses, driverID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var o model.Offer
			if err := scanOffer(rows, &o); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OffersRepo) Update(ctx context.Context, o model.Offer) error {
	q := `UPDATE offers
	      SET schedule = $2, price_per_seat = $3, seats_total = $4, seats_available = $5,
	          gender_pref = $6, vehicle = $7, updated_at = NOW()
	      WHERE offer_id = $1`
	return withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, o.ID, o.Schedule, o.PricePerSeat, o.SeatsTotal, o.SeatsAvailable, o.GenderPref, o.Vehicle)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return myerrors.NotFoundf("offer %s not found", o.ID)
		}
		return nil
	})
}

func (r *OffersRepo) SetStatus(ctx context.Context, offerID string, from []string, to string) (bool, error) {
	q := `UPDATE offers
	      SET status = $2,
	          started_at = CASE WHEN $2 = 'IN_PROGRESS' THEN NOW() ELSE started_at END,
	          ended_at   = CASE WHEN $2 = 'COMPLETED'   THEN NOW() ELSE ended_at END,
	          updated_at = NOW()
	      WHERE offer_id = $1 AND status = ANY($3)`

	var moved bool
	err := withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, offerID, to, from)
		if err != nil {
			return err
		}
		moved = cmd.RowsAffected() > 0
		return nil
	})
	return moved, err
}

func (r *OffersRepo) AppendEvent(ctx context.Context, offerID, eventType string, payload any) error {
	q := `INSERT INTO offer_events(offer_id, event_type, event_data, created_at)
	      VALUES ($1, $2, $3, NOW())`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, q, offerID, eventType, payload)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner, o *model.Offer) error {
	return row.Scan(
		&o.ID, &o.DriverID,
		&o.Origin.Latitude, &o.Origin.Longitude, &o.Origin.Address,
		&o.Destination.Latitude, &o.Destination.Longitude, &o.Destination.Address,
		&o.Schedule, &o.PricePerSeat, &o.SeatsTotal, &o.SeatsAvailable,
		&o.GenderPref, &o.Vehicle, &o.Status, &o.StartedAt, &o.EndedAt, &o.CreatedAt, &o.UpdatedAt)
}
