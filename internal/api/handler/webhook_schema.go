package handler

// ingestResponse acknowledges a stored status update. Filename is the opaque
// storage identifier of the voucher's record.
type ingestResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// errorResponse documents the error envelope rendered by the central error
// handler.
type errorResponse struct {
	Error string `json:"error"`
}
