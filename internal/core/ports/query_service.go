package ports

import (
	"context"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
)

// QueryService serves the read side: full per-voucher history and the recent
// activity list the dashboard polls. Both are pure reads.
type QueryService interface {
	History(ctx context.Context, voucher string) (*domain.ShipmentRecord, error)

	// Recent returns up to the configured limit of latest-event summaries,
	// newest first. Each entry is the latest event with the voucher injected
	// as a "voucher" field, matching the wire format the dashboard expects.
	Recent(ctx context.Context) ([]domain.StatusEvent, error)
}
