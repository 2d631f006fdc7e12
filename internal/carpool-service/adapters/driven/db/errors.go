package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"carpool/internal/carpool-service/core/myerrors"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

// withRetry runs fn, retrying exactly once on a transient store failure.
// A transient failure that survives the retry surfaces as a timeout error;
// everything else is passed through untouched. Callers only hand in
// idempotent statements (conditional writes and reads), so the retry can
// never double-apply an effect.
func withRetry(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !isTransient(err) {
		return err
	}
	if ctx.Err() != nil {
		return myerrors.Wrap(myerrors.KindTimeout, "store deadline exceeded", err)
	}
	err = fn(ctx)
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return myerrors.Wrap(myerrors.KindTimeout, "store deadline exceeded", err)
	}
	return err
}
