package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"crm-simulator/internal/attempt"
	"crm-simulator/internal/customer"
	"crm-simulator/internal/state"
	"crm-simulator/internal/webhook"
)

type testApp struct {
	router     *gin.Engine
	settings   *webhook.Settings
	webhookLog *attempt.Log[attempt.WebhookAttempt]
	inboundLog *attempt.Log[attempt.InboundAttempt]
}

func newTestApp(t *testing.T, initialWebhookURL string) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := customer.NewMemoryRepo(customer.Seed()...)
	settings := webhook.NewSettings(initialWebhookURL)
	webhookLog := attempt.NewLog[attempt.WebhookAttempt](attempt.WebhookLogCapacity)
	inboundLog := attempt.NewLog[attempt.InboundAttempt](attempt.InboundLogCapacity)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := webhook.NewNotifier(settings, webhookLog, discard, 2*time.Second, nil)
	customers := customer.NewService(repo, notifier)
	stateSvc := state.NewService(repo, settings, webhookLog, inboundLog)

	h := Handlers{Customers: customers, Settings: settings, State: stateSvc}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TrackInbound(inboundLog, testOrigins, nil))
	r.GET("/health", h.Health)
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/:customer_id", h.GetCustomer)
	r.PATCH("/customers/:customer_id", h.UpdateCustomer)
	r.POST("/customers/:customer_id/call-erp", h.CallERP)
	r.POST("/webhook/config", h.SetWebhookConfig)
	r.GET("/state", h.GetState)

	return &testApp{router: r, settings: settings, webhookLog: webhookLog, inboundLog: inboundLog}
}

func (a *testApp) do(t *testing.T, method, path, body, origin string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) stateSnapshot(t *testing.T) state.Snapshot {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/state", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /state: expected 200, got %d", rec.Code)
	}
	var snap state.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	return snap
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUnknownCustomerReturns404(t *testing.T) {
	app := newTestApp(t, "")
	cases := []struct{ method, path, body string }{
		{http.MethodGet, "/customers/hs-999", ""},
		{http.MethodPatch, "/customers/hs-999", `{"archived": true}`},
		{http.MethodPost, "/customers/hs-999/call-erp", ""},
	}
	for _, tc := range cases {
		rec := app.do(t, tc.method, tc.path, tc.body, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"detail":"Customer not found"`) {
			t.Fatalf("%s %s: unexpected body: %s", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestPatchArchivedLeavesPaymentTermUntouched(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.do(t, http.MethodPatch, "/customers/hs-002", `{"archived": true}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"id":"hs-002","archived":true,"payment_term":null}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// Subsequent list reflects the change.
	list := app.do(t, http.MethodGet, "/customers", "", "")
	var customers []customer.Customer
	if err := json.Unmarshal(list.Body.Bytes(), &customers); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if customers[1].ID != "hs-002" || !customers[1].Archived {
		t.Fatalf("expected hs-002 archived in list: %+v", customers)
	}

	// Net 30 on hs-001 must survive an archived-only patch too.
	rec = app.do(t, http.MethodPatch, "/customers/hs-001", `{"archived": true}`, "")
	if !strings.Contains(rec.Body.String(), `"payment_term":"Net 30"`) {
		t.Fatalf("payment term lost: %s", rec.Body.String())
	}
}

func TestPatchExplicitNullClearsPaymentTerm(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.do(t, http.MethodPatch, "/customers/hs-001", `{"payment_term": null}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"payment_term":null`) {
		t.Fatalf("expected cleared payment term: %s", rec.Body.String())
	}
}

func TestPatchInvalidPaymentTermRejected(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.do(t, http.MethodPatch, "/customers/hs-001", `{"payment_term": "Net 90"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	// No attempt may be logged for a rejected update.
	if app.webhookLog.Len() != 0 {
		t.Fatalf("rejected update must not notify, got %d attempts", app.webhookLog.Len())
	}
}

func TestUpdateWithoutWebhookConfiguredStillSucceeds(t *testing.T) {
	app := newTestApp(t, "")
	rec := app.do(t, http.MethodPatch, "/customers/hs-002", `{"archived": true}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	snap := app.stateSnapshot(t)
	if len(snap.WebhookAttempts) != 1 {
		t.Fatalf("expected one webhook attempt, got %d", len(snap.WebhookAttempts))
	}
	head := snap.WebhookAttempts[0]
	if head.Success {
		t.Fatal("expected failed attempt without a configured webhook")
	}
	if head.WebhookURL != nil {
		t.Fatalf("expected null webhook_url, got %q", *head.WebhookURL)
	}
	if head.Error == nil || *head.Error != "No webhook configured" {
		t.Fatalf("unexpected error: %v", head.Error)
	}
}

func TestEveryMutationAppendsOneAttemptAtHead(t *testing.T) {
	app := newTestApp(t, "")
	app.do(t, http.MethodPatch, "/customers/hs-001", `{"archived": true}`, "")
	app.do(t, http.MethodPost, "/customers/hs-002/call-erp", "", "")
	app.do(t, http.MethodPost, "/customers/hs-003/call-erp", "", "")

	snap := app.stateSnapshot(t)
	if len(snap.WebhookAttempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(snap.WebhookAttempts))
	}
	// Most recent first.
	for i, want := range []string{"hs-003", "hs-002", "hs-001"} {
		if snap.WebhookAttempts[i].CustomerID != want {
			t.Fatalf("expected %s at index %d, got %s", want, i, snap.WebhookAttempts[i].CustomerID)
		}
	}
}

func TestWebhookConfigThenUnreachableDelivery(t *testing.T) {
	// A closed listener gives a deterministic connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL + "/hook"
	srv.Close()

	app := newTestApp(t, "")
	rec := app.do(t, http.MethodPost, "/webhook/config", `{"webhook_url":"`+target+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var conf map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &conf); err != nil {
		t.Fatalf("decoding config response: %v", err)
	}
	if conf["webhook_url"] != target {
		t.Fatalf("unexpected config echo: %v", conf)
	}

	app.do(t, http.MethodPost, "/customers/hs-001/call-erp", "", "")

	snap := app.stateSnapshot(t)
	head := snap.WebhookAttempts[0]
	if head.WebhookURL == nil || *head.WebhookURL != target {
		t.Fatalf("unexpected webhook_url: %v", head.WebhookURL)
	}
	if head.Success {
		t.Fatal("expected delivery failure to unreachable host")
	}
	if head.Error == nil || *head.Error == "" {
		t.Fatal("expected nonzero error text")
	}
}

func TestWebhookConfigRejectsInvalidURL(t *testing.T) {
	app := newTestApp(t, "")
	for _, body := range []string{
		`{"webhook_url":"not a url"}`,
		`{"webhook_url":"ftp://example.com/hook"}`,
		`{}`,
		`not json`,
	} {
		rec := app.do(t, http.MethodPost, "/webhook/config", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestTrustedOriginNeverTracked(t *testing.T) {
	app := newTestApp(t, "")
	app.do(t, http.MethodPatch, "/customers/hs-001", `{"archived": true}`, "http://localhost:5173")
	app.do(t, http.MethodPatch, "/customers/hs-002", `{"archived": true}`, "")

	snap := app.stateSnapshot(t)
	if len(snap.InboundAttempts) != 1 {
		t.Fatalf("expected 1 inbound attempt, got %d", len(snap.InboundAttempts))
	}
	if snap.InboundAttempts[0].Path != "/customers/hs-002" {
		t.Fatalf("wrong request tracked: %+v", snap.InboundAttempts[0])
	}
}

func TestStateExposesConfiguredURL(t *testing.T) {
	app := newTestApp(t, "http://erp.local/hook")
	snap := app.stateSnapshot(t)
	if snap.WebhookURL == nil || *snap.WebhookURL != "http://erp.local/hook" {
		t.Fatalf("unexpected webhook url: %v", snap.WebhookURL)
	}
	if len(snap.Customers) != 3 {
		t.Fatalf("expected 3 seeded customers, got %d", len(snap.Customers))
	}
}
