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

type RequestsRepo struct {
	db *pgxpool.Pool
}

func NewRequestsRepo(db *pgxpool.Pool) ports.IRequestsRepo {
	return &RequestsRepo{db: db}
}

const requestColumns = `request_id, offer_id, passenger_id, seats_requested, status, picked_up_at, created_at, updated_at`

func (r *RequestsRepo) Create(ctx context.Context, req model.Request) error {
	q := `INSERT INTO requests(` + requestColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, q,
			req.ID, req.OfferID, req.PassengerID, req.SeatsRequested, req.Status,
			req.PickedUpAt, req.CreatedAt, req.UpdatedAt)
		return err
	})
}

func (r *RequestsRepo) GetByID(ctx context.Context, requestID string) (model.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1`

	var req model.Request
	err := withRetry(ctx, func(ctx context.Context) error {
		return scanRequest(r.db.QueryRow(ctx, q, requestID), &req)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Request{}, myerrors.NotFoundf("request %s not found", requestID)
	}
	if err != nil {
		return model.Request{}, err
	}
	return req, nil
}

func (r *RequestsRepo) ListByOffer(ctx context.Context, offerID string, statuses []string) ([]model.Request, error) {
	if statuses == nil {
		statuses = []string{}
	}
	q := `SELECT ` + requestColumns + ` FROM requests
	      WHERE offer_id = $1
	        AND (cardinality($2::text[]) = 0 OR status = ANY($2))
	      ORDER BY created_at`
	return r.list(ctx, q, offerID, statuses)
}

func (r *RequestsRepo) ListByPassenger(ctx context.Context, passengerID string) ([]model.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests
	      WHERE passenger_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, passengerID)
}

func (r *RequestsRepo) ListByDriver(ctx context.Context, driverID string) ([]model.Request, error) {
	q := `SELECT r.request_id, r.offer_id, r.passenger_id, r.seats_requested, r.status, r.picked_up_at, r.created_at, r.updated_at
	      FROM requests r
	      JOIN offers o ON o.offer_id = r.offer_id
	      WHERE o.driver_id = $1
	      ORDER BY r.created_at DESC`
	return r.list(ctx, q, driverID)
}

// UpdateStatus is the conditional write enforcing forward-only request
// transitions: the row only moves when its current status is one of the
// allowed sources.
func (r *RequestsRepo) UpdateStatus(ctx context.Context, requestID string, from []string, to string) (bool, error) {
	q := `UPDATE requests
	      SET status = $2,
	          picked_up_at = CASE WHEN $2 = 'PICKED_UP' THEN NOW() ELSE picked_up_at END,
	          updated_at = NOW()
	      WHERE request_id = $1 AND status = ANY($3)`

	var moved bool
	err := withRetry(ctx, func(ctx context.Context) error {
		cmd, err := r.db.Exec(ctx, q, requestID, to, from)
		if err != nil {
			return err
		}
		moved = cmd.RowsAffected() > 0
		return nil
	})
	return moved, err
}

// ResolveWithSeats runs the status CAS and the seat adjustment in one
// transaction so a request can never change hands without its seats
// following. The transaction as a whole is idempotent for the retry
// policy: a replay after a lost race simply matches zero rows.
func (r *RequestsRepo) ResolveWithSeats(ctx context.Context, requestID string, from []string, to string, offerID string, seatDelta int) (bool, error) {
	statusQ := `UPDATE requests
	      SET status = $2, updated_at = NOW()
	      WHERE request_id = $1 AND status = ANY($3)`
	seatsQ := `UPDATE offers
	      SET seats_available = seats_available + $2, updated_at = NOW()
	      WHERE offer_id = $1
	        AND seats_available + $2 >= 0
	        AND seats_available + $2 <= seats_total`

	var moved bool
	err := withRetry(ctx, func(ctx context.Context) error {
		moved = false
		tx, err := r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		cmd, err := tx.Exec(ctx, statusQ, requestID, to, from)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		cmd, err = tx.Exec(ctx, seatsQ, offerID, seatDelta)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return myerrors.Capacityf("seat adjustment by %d would leave offer %s outside its pool", seatDelta, offerID)
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		moved = true
		return nil
	})
	return moved, err
}

func (r *RequestsRepo) HasCompleted(ctx context.Context, offerID, passengerID string) (bool, error) {
	q := `SELECT EXISTS(
	        SELECT 1 FROM requests
	        WHERE offer_id = $1 AND passenger_id = $2 AND status = 'COMPLETED')`

	var exists bool
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q, offerID, passengerID).Scan(&exists)
	})
	return exists, err
}

func (r *RequestsRepo) list(ctx context.Context, q string, args ...any) ([]model.Request, error) {
	var out []model.Request
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var req model.Request
			if err := scanRequest(rows, &req); err != nil {
				return err
			}
			out = append(out, req)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanRequest(row rowScanner, req *model.Request) error {
	return row.Scan(
		&req.ID, &req.OfferID, &req.PassengerID, &req.SeatsRequested,
		&req.Status, &req.PickedUpAt, &req.CreatedAt, &req.UpdatedAt)
}
