package customer

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("customer: not found")
	ErrInvalidPaymentTerm = errors.New("customer: invalid payment term")
)

// Repository is the data-access contract for customer records.
//
// Implementations must guarantee exactly one record per id and must
// replace records wholesale on update, never mutate fields in place.
type Repository interface {
	Get(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Customer, error)
}

// Notifier pushes a change notification for one customer toward the
// simulated ERP. Implementations must swallow delivery failures; a
// mutation never fails because the webhook did.
type Notifier interface {
	Notify(ctx context.Context, c Customer)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	if s.repo == nil {
		return Customer{}, errors.New("customer: repository not configured")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	if s.repo == nil {
		return nil, errors.New("customer: repository not configured")
	}
	return s.repo.List(ctx)
}

// Update applies a partial update and notifies the ERP webhook with the
// merged record. The notification outcome never affects the result.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Customer, error) {
	if s.repo == nil {
		return Customer{}, errors.New("customer: repository not configured")
	}
	if err := req.Validate(); err != nil {
		return Customer{}, fmt.Errorf("validating update: %w", err)
	}
	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return Customer{}, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, updated)
	}
	return updated, nil
}

// CallERP re-sends the change notification for an unchanged record.
func (s *Service) CallERP(ctx context.Context, id string) (Customer, error) {
	if s.repo == nil {
		return Customer{}, errors.New("customer: repository not configured")
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, c)
	}
	return c, nil
}
