package emitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
)

func TestBuildEvent_StampsTitleAndTimestamps(t *testing.T) {
	c := NewClient("http://localhost", "key", zerolog.Nop())
	c.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	}

	ev, err := c.BuildEvent(Input{
		Voucher:     "ABC123",
		StatusCode:  domain.StatusPickup,
		Comments:    "left at depot",
		Station:     "ATH1",
		StationName: "Athens Hub",
	})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}

	if ev.Voucher() != "ABC123" {
		t.Errorf("unexpected voucher: %q", ev.Voucher())
	}
	if ev.StatusTitleEN() != "Pick up shipment" {
		t.Errorf("title not resolved from code table: %q", ev.StatusTitleEN())
	}
	if ev.StatusDate() != "20260831" {
		t.Errorf("unexpected statusDate: %q", ev.StatusDate())
	}
	if ev.StatusTime() != "140509" {
		t.Errorf("unexpected statusTime: %q", ev.StatusTime())
	}
	if ev.Field("ReturnVoucher") != "" {
		t.Error("non-return status must not carry ReturnVoucher")
	}
}

func TestBuildEvent_ReturnCodeCarriesReturnVoucher(t *testing.T) {
	c := NewClient("http://localhost", "key", zerolog.Nop())

	ev, err := c.BuildEvent(Input{
		Voucher:       "ABC123",
		StatusCode:    domain.StatusReturnToSender,
		ReturnVoucher: "RET456",
	})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if ev.Field("ReturnVoucher") != "RET456" {
		t.Errorf("expected ReturnVoucher, got %q", ev.Field("ReturnVoucher"))
	}
}

func TestBuildEvent_ValidatesRequiredFields(t *testing.T) {
	c := NewClient("http://localhost", "key", zerolog.Nop())

	if _, err := c.BuildEvent(Input{StatusCode: "9432"}); err == nil {
		t.Error("expected error for missing voucher")
	}
	if _, err := c.BuildEvent(Input{Voucher: "ABC123"}); err == nil {
		t.Error("expected error for missing status code")
	}
}

func TestSend_PostsPayloadWithAPIKeyHeader(t *testing.T) {
	var gotKey, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("APIKEY")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"OK","filename":"ABC123.json"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s3cret", zerolog.Nop())
	ev, err := c.BuildEvent(Input{Voucher: "ABC123", StatusCode: domain.StatusInTransit})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}

	res, err := c.Send(context.Background(), ev)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if res.HTTPStatus != http.StatusOK {
		t.Errorf("unexpected status: %d", res.HTTPStatus)
	}
	if gotKey != "s3cret" {
		t.Errorf("APIKEY header not sent: %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("unexpected content type: %q", gotContentType)
	}
	if gotBody["voucher"] != "ABC123" || gotBody["statusCode"] != domain.StatusInTransit {
		t.Errorf("unexpected payload: %v", gotBody)
	}
	if _, ok := gotBody["statusTitleGR"]; !ok {
		t.Error("expected Greek title placeholder in payload")
	}
}

func TestSend_SurfacesReceiverRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid API Key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", zerolog.Nop())
	ev, err := c.BuildEvent(Input{Voucher: "ABC123", StatusCode: domain.StatusDelivered})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}

	res, err := c.Send(context.Background(), ev)
	if err != nil {
		t.Fatalf("transport succeeded, Send must not error: %v", err)
	}
	if res.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", res.HTTPStatus)
	}
	if res.Body != `{"error":"Invalid API Key"}` {
		t.Errorf("unexpected body: %q", res.Body)
	}
}
