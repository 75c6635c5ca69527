// Package emitter builds and sends courier-style status webhooks. It is the
// programmatic replacement for the old emulator form: given a voucher and a
// status code it synthesises the full PostStatus payload and posts it to a
// receiver with the APIKEY header.
package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	apimiddleware "github.com/eltatrack/courier-webhooks/internal/api/middleware"
	"github.com/eltatrack/courier-webhooks/internal/core/domain"
)

// Input describes one synthetic status update.
type Input struct {
	Voucher       string `validate:"required"`
	StatusCode    string `validate:"required"`
	Comments      string
	Station       string
	StationName   string
	ReturnVoucher string
}

// Result reports the receiver's verdict.
type Result struct {
	HTTPStatus int
	Body       string
}

// Client posts status updates to a single receiver endpoint.
type Client struct {
	url      string
	apiKey   string
	http     *http.Client
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
}

// NewClient returns a Client for the given receiver URL and shared secret.
func NewClient(url, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		url:      url,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
		validate: validator.New(),
		now:      time.Now,
		log:      log,
	}
}

// BuildEvent synthesises a full PostStatus payload from the input: the
// English title comes from the status code table, statusDate/statusTime are
// stamped from the wall clock in the courier's YYYYMMDD/HHMMSS form, and
// return codes carry the ReturnVoucher field.
func (c *Client) BuildEvent(in Input) (domain.StatusEvent, error) {
	if err := c.validate.Struct(in); err != nil {
		return domain.StatusEvent{}, inputError(err)
	}

	now := c.now()
	fields := map[string]any{
		"voucher":             in.Voucher,
		"statusCode":          in.StatusCode,
		"statusTitleEN":       domain.StatusTitleEN(in.StatusCode),
		"statusTitleGR":       "",
		"statusDate":          now.Format("20060102"),
		"statusTime":          now.Format("150405"),
		"statusComments":      in.Comments,
		"statusStation":       in.Station,
		"statusStationNameEN": in.StationName,
		"statusStationNameGR": "",
	}
	if domain.IsReturnCode(in.StatusCode) {
		fields["ReturnVoucher"] = in.ReturnVoucher
	}
	return domain.NewStatusEvent(fields)
}

// Send posts the event. The HTTP exchange itself succeeding is enough for a
// non-nil Result; the caller inspects Result.HTTPStatus for the receiver's
// verdict. There is no retry.
func (c *Client) Send(ctx context.Context, event domain.StatusEvent) (*Result, error) {
	payload, err := event.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.HeaderAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Int("http_status", resp.StatusCode).
		Str("voucher", event.Voucher()).
		Msg("webhook sent")

	return &Result{HTTPStatus: resp.StatusCode, Body: string(body)}, nil
}

// inputError flattens validator errors into one readable message.
func inputError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
