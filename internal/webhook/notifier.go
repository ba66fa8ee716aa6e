package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"crm-simulator/internal/attempt"
	"crm-simulator/internal/customer"
)

// Fixed tags identifying the simulated source system on the wire.
const (
	providerName = "hubspot"
	modelName    = "customer"
)

const (
	errNoWebhookConfigured = "No webhook configured"
	errorExcerptLimit      = 200
)

type changePayload struct {
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	ExternalIDs []string `json:"external_ids"`
}

// MetricsRecorder receives delivery outcomes. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	RecordWebhookAttempt(success bool)
}

// Notifier performs a single fire-and-forget delivery per call and
// unconditionally appends one record to the attempt log. Delivery
// failures are fully swallowed; callers only observe them through the
// log, the metrics, and server-side logging.
type Notifier struct {
	settings *Settings
	log      *attempt.Log[attempt.WebhookAttempt]
	client   *http.Client
	logger   *slog.Logger
	metrics  MetricsRecorder
	clock    func() time.Time

	// lookupHost is injectable so tests can exercise the diagnostic
	// path without real DNS.
	lookupHost func(ctx context.Context, host string) ([]string, error)
}

func NewNotifier(settings *Settings, log *attempt.Log[attempt.WebhookAttempt], logger *slog.Logger, timeout time.Duration, metrics MetricsRecorder) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		settings: settings,
		log:      log,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		metrics:  metrics,
		clock:    time.Now,
		lookupHost: func(ctx context.Context, host string) ([]string, error) {
			return net.DefaultResolver.LookupHost(ctx, host)
		},
	}
}

// Notify attempts delivery of a change notification for one customer.
// It never returns an error; exactly one attempt record is appended
// regardless of outcome.
func (n *Notifier) Notify(ctx context.Context, c customer.Customer) {
	target, ok := n.settings.URL()
	if !ok {
		n.logger.Warn("webhook skipped: no webhook configured", "customer_id", c.ID)
		n.record(attempt.WebhookAttempt{
			ID:         uuid.NewString(),
			At:         n.clock().UTC(),
			CustomerID: c.ID,
			WebhookURL: nil,
			Success:    false,
			Error:      strPtr(errNoWebhookConfigured),
		})
		return
	}

	n.logDNSDiagnostics(ctx, target)

	body, err := json.Marshal(changePayload{
		Provider:    providerName,
		Model:       modelName,
		ExternalIDs: []string{c.ID},
	})
	if err != nil {
		n.recordFailure(c.ID, target, err)
		return
	}

	n.logger.Info("sending webhook",
		"customer_id", c.ID,
		"webhook_url", target,
		"provider", providerName,
		"model", modelName,
	)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		n.recordFailure(c.ID, target, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("webhook delivery failed",
			"customer_id", c.ID,
			"webhook_url", target,
			"err", err,
		)
		n.recordFailure(c.ID, target, err)
		return
	}
	defer resp.Body.Close()

	excerpt := readExcerpt(resp.Body)
	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	n.logger.Info("webhook response",
		"customer_id", c.ID,
		"status", resp.StatusCode,
		"success", success,
		"duration_ms", float64(time.Since(start).Milliseconds()),
		"body_excerpt", excerpt,
	)

	rec := attempt.WebhookAttempt{
		ID:         uuid.NewString(),
		At:         n.clock().UTC(),
		CustomerID: c.ID,
		WebhookURL: strPtr(target),
		Success:    success,
		StatusCode: intPtr(resp.StatusCode),
	}
	if !success {
		rec.Error = strPtr(excerpt)
	}
	n.record(rec)
}

// logDNSDiagnostics resolves the target host for operator visibility
// only. Resolution failure never aborts delivery and is never recorded
// as a delivery failure.
func (n *Notifier) logDNSDiagnostics(ctx context.Context, target string) {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	addrs, err := n.lookupHost(ctx, host)
	if err != nil {
		n.logger.Warn("webhook dns resolution failed",
			"host", host,
			"port", port,
			"webhook_url", target,
			"err", err,
		)
		return
	}
	sort.Strings(addrs)
	n.logger.Info("webhook dns resolved", "host", host, "port", port, "addresses", addrs)
}

func (n *Notifier) recordFailure(customerID, target string, err error) {
	n.record(attempt.WebhookAttempt{
		ID:         uuid.NewString(),
		At:         n.clock().UTC(),
		CustomerID: customerID,
		WebhookURL: strPtr(target),
		Success:    false,
		Error:      strPtr(truncate(err.Error(), errorExcerptLimit)),
	})
}

func (n *Notifier) record(rec attempt.WebhookAttempt) {
	n.log.Append(rec)
	if n.metrics != nil {
		n.metrics.RecordWebhookAttempt(rec.Success)
	}
}

func readExcerpt(r io.Reader) string {
	// Read a little past the excerpt limit so multi-byte runes at the
	// boundary truncate cleanly.
	b, err := io.ReadAll(io.LimitReader(r, errorExcerptLimit*4))
	if err != nil {
		return ""
	}
	return truncate(string(b), errorExcerptLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
