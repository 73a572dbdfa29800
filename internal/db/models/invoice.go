package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the current state of an invoice
type InvoiceStatus int

// Invoice status constants
const (
	// InvoiceStatusUnknown represents an unknown or invalid invoice status
	InvoiceStatusUnknown InvoiceStatus = iota
	// InvoiceStatusDraft indicates the invoice is still being assembled
	InvoiceStatusDraft
	// InvoiceStatusSent indicates the invoice has been issued to the requester
	InvoiceStatusSent
	// InvoiceStatusViewed indicates the requester has opened the invoice
	InvoiceStatusViewed
	// InvoiceStatusPaid indicates the invoice is fully paid
	InvoiceStatusPaid
	// InvoiceStatusOverdue is a derived state: the due date passed while unpaid.
	// It is reported on read, never persisted.
	InvoiceStatusOverdue
)

var invoiceStatusNames = []string{
	"unknown",
	"draft",
	"sent",
	"viewed",
	"paid",
	"overdue",
}

// Invoice is the billing counterpart of a quote. When converted from a
// quote its line items are a snapshot; later quote edits do not touch it.
type Invoice struct {
	gorm.Model
	Number         string            `json:"number" gorm:"not null;uniqueIndex"`
	Title          string            `json:"title" gorm:"not null"`
	JobID          uint              `json:"job_id" gorm:"not null;index"`
	RequesterID    uint              `json:"requester_id" gorm:"not null;index"`
	ContractorID   uint              `json:"contractor_id" gorm:"not null;index"`
	QuoteID        *uint             `json:"quote_id,omitempty" gorm:"uniqueIndex"` // one invoice per accepted quote
	Status         InvoiceStatus     `json:"status" gorm:"index"`
	Subtotal       decimal.Decimal   `json:"subtotal" gorm:"type:numeric(12,2)"`
	TaxRate        decimal.Decimal   `json:"tax_rate" gorm:"type:numeric(6,4)"`
	TaxAmount      decimal.Decimal   `json:"tax_amount" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal   `json:"discount_amount" gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal   `json:"total" gorm:"type:numeric(12,2)"`
	AmountPaid     decimal.Decimal   `json:"amount_paid" gorm:"type:numeric(12,2)"`
	Notes          string            `json:"notes,omitempty" gorm:"type:text"`
	Terms          string            `json:"terms,omitempty" gorm:"type:text"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	ViewedAt       *time.Time        `json:"viewed_at,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	LineItems      []InvoiceLineItem `json:"line_items" gorm:"constraint:OnDelete:CASCADE"`
}

// InvoiceLineItem is an individual priced entry within an invoice.
type InvoiceLineItem struct {
	gorm.Model
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(12,2)"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	SortOrder   int             `json:"sort_order"`
}

// Validate checks the line item's field-level invariants.
func (li *InvoiceLineItem) Validate() error {
	if li.Description == "" {
		return fmt.Errorf("line item description is required")
	}
	if li.Quantity.Sign() < 0 {
		return fmt.Errorf("line item quantity cannot be negative")
	}
	if li.UnitPrice.Sign() < 0 {
		return fmt.Errorf("line item unit price cannot be negative")
	}
	return nil
}

// Validate checks the invoice's payment invariants.
func (i *Invoice) Validate() error {
	if i.AmountPaid.Sign() < 0 {
		return fmt.Errorf("amount_paid cannot be negative")
	}
	if i.AmountPaid.GreaterThan(i.Total) {
		return fmt.Errorf("amount_paid cannot exceed total")
	}
	if i.Status == InvoiceStatusPaid && !i.AmountPaid.Equal(i.Total) {
		return fmt.Errorf("paid invoice must have amount_paid equal to total")
	}
	return nil
}

// EffectiveStatus reports the status including the derived overdue state.
// Any unpaid invoice whose due date has passed reads as overdue.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status != InvoiceStatusPaid && i.DueDate != nil && now.After(*i.DueDate) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// ParseInvoiceStatus converts a string representation of an invoice status to InvoiceStatus type
func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	for i, status := range invoiceStatusNames {
		if status == str {
			return InvoiceStatus(i), nil
		}
	}

	return InvoiceStatus(0), fmt.Errorf("invalid invoice status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for InvoiceStatus
func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for InvoiceStatus
func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

func (s InvoiceStatus) String() string {
	if int(s) < 0 || int(s) >= len(invoiceStatusNames) {
		return invoiceStatusNames[InvoiceStatusUnknown]
	}
	return invoiceStatusNames[s]
}
