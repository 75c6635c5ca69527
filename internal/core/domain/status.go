package domain

// ELTA courier PostStatus codes.
const (
	StatusPickup         = "9432"
	StatusInTransit      = "9870"
	StatusOutForDelivery = "9910"
	StatusDelivered      = "9950"
	StatusReturnToSender = "9965"
)

var statusTitlesEN = map[string]string{
	StatusPickup:         "Pick up shipment",
	StatusInTransit:      "In transit",
	StatusOutForDelivery: "Out for delivery",
	StatusDelivered:      "Delivered",
	StatusReturnToSender: "Return to sender",
}

// StatusTitleEN resolves the English label for a status code, or "" for an
// unknown code. Inbound events carry their own title; this table is used by
// the emitter when synthesising events.
func StatusTitleEN(code string) string {
	return statusTitlesEN[code]
}

// IsReturnCode reports whether a status code signals a return shipment, which
// carries a ReturnVoucher field.
func IsReturnCode(code string) bool {
	return code == StatusReturnToSender
}

// KnownStatusCodes returns the status codes the emitter can synthesise, in a
// stable order.
func KnownStatusCodes() []string {
	return []string{
		StatusPickup,
		StatusInTransit,
		StatusOutForDelivery,
		StatusDelivered,
		StatusReturnToSender,
	}
}
