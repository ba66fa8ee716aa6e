package attempt

import "time"

// Log capacities. Both logs are append-only and evict oldest first.
const (
	WebhookLogCapacity = 30
	InboundLogCapacity = 50
)

// WebhookAttempt records the outcome of one outbound webhook delivery.
//
// WebhookURL is nil when no webhook was configured at send time.
// StatusCode is nil when no HTTP response was received.
type WebhookAttempt struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	CustomerID string    `json:"customer_id"`
	WebhookURL *string   `json:"webhook_url"`
	Success    bool      `json:"success"`
	StatusCode *int      `json:"status_code"`
	Error      *string   `json:"error"`
}

// InboundAttempt records one tracked mutating request from a simulated
// external caller. Payload holds the decoded JSON body when it parses,
// the raw text otherwise, and nil for an empty body.
type InboundAttempt struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Payload    any       `json:"payload"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code"`
	Error      *string   `json:"error"`
}
