package customer

import (
	"encoding/json"
	"fmt"
)

// PaymentTerm is the payment agreement carried on a customer record.
type PaymentTerm string

const (
	PaymentTermNet30 PaymentTerm = "Net 30"
	PaymentTermNet60 PaymentTerm = "Net 60"
)

func (p PaymentTerm) Valid() bool {
	switch p {
	case PaymentTermNet30, PaymentTermNet60:
		return true
	default:
		return false
	}
}

// Customer is a record held by the simulated third-party platform.
//
// IMPORTANT:
// - ID is immutable after creation; update operations never touch it.
// - PaymentTerm renders as JSON null when unset.
type Customer struct {
	ID          string       `json:"id"`
	Archived    bool         `json:"archived"`
	PaymentTerm *PaymentTerm `json:"payment_term"`
}

// Seed returns the fixed demo dataset loaded at process start.
// There is no create or delete operation after startup.
func Seed() []Customer {
	net30 := PaymentTermNet30
	return []Customer{
		{ID: "hs-001", Archived: false, PaymentTerm: &net30},
		{ID: "hs-002", Archived: false, PaymentTerm: nil},
		{ID: "hs-003", Archived: true, PaymentTerm: nil},
	}
}

// UpdateRequest carries a partial update. An absent field leaves the
// stored value untouched; an explicit JSON null for payment_term clears
// it. The two cases are told apart by PaymentTermSet, populated during
// unmarshalling.
type UpdateRequest struct {
	Archived       *bool
	PaymentTerm    *PaymentTerm
	PaymentTermSet bool
}

func (r *UpdateRequest) UnmarshalJSON(data []byte) error {
	var fields struct {
		Archived    *bool        `json:"archived"`
		PaymentTerm *PaymentTerm `json:"payment_term"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	r.Archived = fields.Archived
	r.PaymentTerm = fields.PaymentTerm
	_, r.PaymentTermSet = keys["payment_term"]
	return nil
}

func (r UpdateRequest) Validate() error {
	if r.PaymentTermSet && r.PaymentTerm != nil && !r.PaymentTerm.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentTerm, *r.PaymentTerm)
	}
	return nil
}

// ApplyTo merges the request into an existing record and returns the
// replacement. The stored record itself is never mutated in place.
func (r UpdateRequest) ApplyTo(c Customer) Customer {
	out := c
	if r.Archived != nil {
		out.Archived = *r.Archived
	}
	if r.PaymentTermSet {
		out.PaymentTerm = r.PaymentTerm
	}
	return out
}
