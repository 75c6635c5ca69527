package domain

import "time"

// ShipmentRecord is the per-voucher aggregate: the full append-only status
// history plus the last-modified timestamp maintained by the store on every
// append. History order is arrival order, not the caller-supplied
// statusDate/statusTime fields, which are untrusted.
type ShipmentRecord struct {
	Voucher       string        `json:"voucher"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	StatusHistory []StatusEvent `json:"statusHistory"`
}

// Latest returns the most recently appended event, or false when the history
// is empty.
func (r *ShipmentRecord) Latest() (StatusEvent, bool) {
	if len(r.StatusHistory) == 0 {
		return StatusEvent{}, false
	}
	return r.StatusHistory[len(r.StatusHistory)-1], true
}
