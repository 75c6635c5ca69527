package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/eltatrack/courier-webhooks/internal/infrastructure/config"
	"github.com/eltatrack/courier-webhooks/internal/infrastructure/store"
)

const testAPIKey = "test-secret"

func newTestRouter(t *testing.T) (*httptest.Server, *store.FileStore, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		Port:        "0",
		APIKey:      testAPIKey,
		DataDir:     "webhook_data",
		RecentLimit: 10,
	}
	st, err := store.NewFileStore(afero.NewMemMapFs(), cfg.DataDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	var diagBuf bytes.Buffer
	e := NewRouter(cfg, st, nil, zerolog.Nop(), zerolog.New(&diagBuf))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, st, &diagBuf
}

func post(t *testing.T, url, apiKey, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("APIKEY", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// ---------------------------------------------------------------------------
// End-to-end scenario from the webhook contract
// ---------------------------------------------------------------------------

func TestWebhook_EndToEnd(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	// First status update for ABC123.
	resp := post(t, srv.URL+"/webhook", testAPIKey,
		`{"voucher":"ABC123","statusCode":"9432","statusTitleEN":"Pick up shipment"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var ack map[string]string
	decodeBody(t, resp, &ack)
	if ack["status"] != "OK" || ack["filename"] != "ABC123.json" {
		t.Errorf("unexpected ack: %v", ack)
	}

	// History now holds exactly that event.
	resp, err := http.Get(srv.URL + "/webhook?action=getHistory&voucher=ABC123")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var record struct {
		Voucher       string           `json:"voucher"`
		StatusHistory []map[string]any `json:"statusHistory"`
	}
	decodeBody(t, resp, &record)
	if record.Voucher != "ABC123" || len(record.StatusHistory) != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.StatusHistory[0]["statusCode"] != "9432" {
		t.Errorf("unexpected status code: %v", record.StatusHistory[0]["statusCode"])
	}

	// Second update appends in POST order.
	resp = post(t, srv.URL+"/webhook", testAPIKey, `{"voucher":"ABC123","statusCode":"9870"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/webhook?action=getHistory&voucher=ABC123")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	decodeBody(t, resp, &record)
	if len(record.StatusHistory) != 2 {
		t.Fatalf("expected 2 events, got %d", len(record.StatusHistory))
	}
	if record.StatusHistory[0]["statusCode"] != "9432" || record.StatusHistory[1]["statusCode"] != "9870" {
		t.Errorf("history out of arrival order: %+v", record.StatusHistory)
	}

	// getRecent lists ABC123 with the latest status.
	resp, err = http.Get(srv.URL + "/webhook?action=getRecent")
	if err != nil {
		t.Fatalf("GET recent: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var recent []map[string]any
	decodeBody(t, resp, &recent)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent entry, got %d", len(recent))
	}
	if recent[0]["voucher"] != "ABC123" || recent[0]["statusCode"] != "9870" {
		t.Errorf("unexpected recent entry: %v", recent[0])
	}

	// Unknown voucher is a 404 with the documented body.
	resp, err = http.Get(srv.URL + "/webhook?action=getHistory&voucher=NOPE")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	if errBody["error"] != "Voucher not found" {
		t.Errorf("unexpected error body: %v", errBody)
	}
}

func TestWebhook_RejectsBadAPIKey(t *testing.T) {
	srv, st, _ := newTestRouter(t)

	for _, key := range []string{"", "wrong"} {
		resp := post(t, srv.URL+"/webhook", key, `{"voucher":"SECURE1","statusCode":"9432"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("key %q: expected 401, got %d", key, resp.StatusCode)
		}
		var errBody map[string]string
		decodeBody(t, resp, &errBody)
		if errBody["error"] != "Invalid API Key" {
			t.Errorf("unexpected error body: %v", errBody)
		}
	}

	// Rejection happened before any store access.
	if _, err := st.History(t.Context(), "SECURE1"); err == nil {
		t.Error("store was mutated by an unauthorized request")
	}
}

func TestWebhook_RejectsMalformedJSON(t *testing.T) {
	srv, st, _ := newTestRouter(t)

	resp := post(t, srv.URL+"/webhook", testAPIKey, `this is not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	if errBody["error"] != "Invalid JSON data" {
		t.Errorf("unexpected error body: %v", errBody)
	}

	if _, err := st.History(t.Context(), "unknown"); err == nil {
		t.Error("store was mutated by a malformed payload")
	}
}

func TestWebhook_MissingVoucherStoredUnderSentinel(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	resp := post(t, srv.URL+"/webhook", testAPIKey, `{"statusCode":"9910"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var ack map[string]string
	decodeBody(t, resp, &ack)
	if ack["filename"] != "unknown.json" {
		t.Errorf("expected sentinel filename, got %q", ack["filename"])
	}
}

func TestWebhook_GetRecentOnEmptyStore(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/webhook?action=getRecent")
	if err != nil {
		t.Fatalf("GET recent: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var recent []any
	decodeBody(t, resp, &recent)
	if len(recent) != 0 {
		t.Errorf("expected empty array, got %v", recent)
	}
}

func TestWebhook_UnknownActionIs400(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/webhook?action=doEverything")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhook_CORSPreflight(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/webhook", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "APIKEY")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestWebhook_UnexpectedMethodHitsDiagnosticLog(t *testing.T) {
	srv, _, diag := newTestRouter(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/webhook", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
	if !strings.Contains(diag.String(), "non-standard request") {
		t.Errorf("expected diagnostic log entry, got: %s", diag.String())
	}
}

func TestHealthProbes(t *testing.T) {
	srv, _, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
