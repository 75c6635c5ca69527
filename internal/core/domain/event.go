package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrVoucherNotFound = errors.New("voucher not found")
var ErrInvalidPayload = errors.New("invalid JSON data")
var ErrInvalidAPIKey = errors.New("invalid API key")
var ErrCorruptRecord = errors.New("corrupt shipment record")
var ErrStoreUnavailable = errors.New("store unavailable")

// UnknownVoucher is the sentinel key under which events without a voucher
// field are recorded. An absent voucher is not an error.
const UnknownVoucher = "unknown"

// StatusEvent is one courier status update. The schema is open: the well-known
// fields (statusCode, statusTitleEN, statusDate, ...) have typed accessors, but
// every field of the original payload is preserved verbatim and round-tripped
// on marshal, including ones this system knows nothing about.
type StatusEvent struct {
	fields map[string]json.RawMessage
}

// NewStatusEvent builds an event from already-typed field values. Intended for
// the emitter and tests; inbound events arrive via UnmarshalJSON.
func NewStatusEvent(fields map[string]any) (StatusEvent, error) {
	raw := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return StatusEvent{}, fmt.Errorf("encode field %q: %w", k, err)
		}
		raw[k] = b
	}
	return StatusEvent{fields: raw}, nil
}

// UnmarshalJSON requires a JSON object; anything else is an invalid payload.
func (e *StatusEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if raw == nil {
		// A bare null decodes into a nil map without an error.
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}
	e.fields = raw
	return nil
}

func (e StatusEvent) MarshalJSON() ([]byte, error) {
	if e.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.fields)
}

// Len reports the number of fields in the event.
func (e StatusEvent) Len() int { return len(e.fields) }

// Field returns the decoded string value of a field, or "" when the field is
// absent or not a JSON string.
func (e StatusEvent) Field(key string) string {
	raw, ok := e.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Voucher returns the voucher identifier carried by the event, or
// UnknownVoucher when the payload has none.
func (e StatusEvent) Voucher() string {
	if v := e.Field("voucher"); v != "" {
		return v
	}
	return UnknownVoucher
}

func (e StatusEvent) StatusCode() string    { return e.Field("statusCode") }
func (e StatusEvent) StatusTitleEN() string { return e.Field("statusTitleEN") }
func (e StatusEvent) StatusDate() string    { return e.Field("statusDate") }
func (e StatusEvent) StatusTime() string    { return e.Field("statusTime") }

// With returns a copy of the event with one field set (replacing any existing
// value). The receiver is not modified.
func (e StatusEvent) With(key string, value any) (StatusEvent, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return StatusEvent{}, fmt.Errorf("encode field %q: %w", key, err)
	}
	fields := make(map[string]json.RawMessage, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[key] = b
	return StatusEvent{fields: fields}, nil
}
