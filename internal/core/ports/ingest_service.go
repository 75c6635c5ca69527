package ports

import "context"

// IngestResult reports where an accepted status update was stored.
type IngestResult struct {
	Voucher  string
	Filename string
}

// IngestService is the only write path into the store. The raw body is the
// webhook POST payload; decoding failures surface as domain.ErrInvalidPayload
// without touching the store.
type IngestService interface {
	Ingest(ctx context.Context, payload []byte) (*IngestResult, error)
}
