package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/carpool-service/core/domain/model"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
)

type RatingsRepo struct {
	db *pgxpool.Pool
}

func NewRatingsRepo(db *pgxpool.Pool) ports.IRatingsRepo {
	return &RatingsRepo{db: db}
}

// Create relies on the unique (offer_id, passenger_id) index to enforce
// the one-rating-per-pair rule at the store.
func (r *RatingsRepo) Create(ctx context.Context, rating model.Rating) error {
	q := `INSERT INTO ratings(rating_id, offer_id, passenger_id, driver_id, score, feedback, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7)`
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, q,
			rating.ID, rating.OfferID, rating.PassengerID, rating.DriverID,
			rating.Score, rating.Feedback, rating.CreatedAt)
		return err
	})
	if isUniqueViolation(err) {
		return myerrors.Conflictf("offer %s is already rated by passenger %s", rating.OfferID, rating.PassengerID)
	}
	return err
}
