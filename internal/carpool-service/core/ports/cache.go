package ports

import "context"

// IUnreadCache keeps per-recipient unread counters. It is a cache: every
// method may fail without consequence, the authoritative count lives in
// the notifications store.
type IUnreadCache interface {
	Incr(ctx context.Context, userID string) error
	Set(ctx context.Context, userID string, n int64) error
	Clear(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (int64, bool, error)
}
