package state

import (
	"context"
	"errors"

	"crm-simulator/internal/attempt"
	"crm-simulator/internal/customer"
	"crm-simulator/internal/webhook"
)

// Snapshot is the full inspection view of the process: configured
// webhook target, all records sorted by id, and both attempt logs with
// the most recent entry first.
type Snapshot struct {
	WebhookURL      *string                  `json:"webhook_url"`
	Customers       []customer.Customer      `json:"customers"`
	WebhookAttempts []attempt.WebhookAttempt `json:"webhook_attempts"`
	InboundAttempts []attempt.InboundAttempt `json:"inbound_attempts"`
}

// Service assembles snapshots. Read-only; it never mutates the
// structures it aggregates.
type Service struct {
	customers  customer.Repository
	settings   *webhook.Settings
	webhookLog *attempt.Log[attempt.WebhookAttempt]
	inboundLog *attempt.Log[attempt.InboundAttempt]
}

func NewService(customers customer.Repository, settings *webhook.Settings, webhookLog *attempt.Log[attempt.WebhookAttempt], inboundLog *attempt.Log[attempt.InboundAttempt]) *Service {
	return &Service{
		customers:  customers,
		settings:   settings,
		webhookLog: webhookLog,
		inboundLog: inboundLog,
	}
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.customers == nil || s.settings == nil || s.webhookLog == nil || s.inboundLog == nil {
		return Snapshot{}, errors.New("state: service not fully configured")
	}

	records, err := s.customers.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if records == nil {
		records = []customer.Customer{}
	}

	out := Snapshot{
		Customers:       records,
		WebhookAttempts: s.webhookLog.Snapshot(),
		InboundAttempts: s.inboundLog.Snapshot(),
	}
	if url, ok := s.settings.URL(); ok {
		out.WebhookURL = &url
	}
	return out, nil
}
