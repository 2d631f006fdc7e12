package ports

import (
	"context"

	"carpool/internal/carpool-service/core/domain/model"
)

type INotifyBroker interface {
	// PublishNotification mirrors a stored notification onto the broker
	// for downstream consumers (push, email). Delivery is best-effort.
	PublishNotification(ctx context.Context, n model.Notification) error
	IsAlive() bool
	Close() error
}
