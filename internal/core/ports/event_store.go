package ports

import (
	"context"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
)

// EventStore persists, per voucher, an ordered append-only status history.
type EventStore interface {
	// Append loads the record for voucher (creating an empty one on first
	// contact), appends event, and persists the result atomically. Concurrent
	// appends to the same voucher are serialized; neither event is lost.
	// Returns the opaque storage identifier of the record (its filename).
	Append(ctx context.Context, voucher string, event domain.StatusEvent) (string, error)

	// History returns the full ordered history for voucher, or
	// domain.ErrVoucherNotFound when no record exists.
	History(ctx context.Context, voucher string) (*domain.ShipmentRecord, error)
}

// RecentSummary pairs a voucher with its most recently appended event.
type RecentSummary struct {
	Voucher string
	Latest  domain.StatusEvent
}

// RecentIndex derives the most-recently-modified vouchers for dashboard
// polling. Recency is the store's own updatedAt timestamp, never the
// caller-supplied statusDate/statusTime.
type RecentIndex interface {
	// ListRecent returns up to limit summaries, newest first. An empty store
	// yields an empty slice. Records that cannot be read or whose history is
	// empty are skipped, never fatal.
	ListRecent(ctx context.Context, limit int) ([]RecentSummary, error)
}
