package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus represents the current state of a quote
type QuoteStatus int

// Quote status constants
const (
	// QuoteStatusUnknown represents an unknown or invalid quote status
	QuoteStatusUnknown QuoteStatus = iota
	// QuoteStatusDraft indicates the quote is still being assembled
	QuoteStatusDraft
	// QuoteStatusSent indicates the quote has been issued to the requester
	QuoteStatusSent
	// QuoteStatusViewed indicates the requester has opened the quote
	QuoteStatusViewed
	// QuoteStatusAccepted indicates the requester approved the quote
	QuoteStatusAccepted
	// QuoteStatusRejected indicates the requester declined the quote
	QuoteStatusRejected
	// QuoteStatusExpired indicates the validity deadline passed before a decision
	QuoteStatusExpired
)

var quoteStatusNames = []string{
	"unknown",
	"draft",
	"sent",
	"viewed",
	"accepted",
	"rejected",
	"expired",
}

// Quote formalizes an awarded engagement into a priced document.
// Subtotal, TaxAmount and Total are derived values, recomputed on every
// mutation, never trusted from caller input.
type Quote struct {
	gorm.Model
	Number         string          `json:"number" gorm:"not null;uniqueIndex"`
	Title          string          `json:"title" gorm:"not null"`
	JobID          uint            `json:"job_id" gorm:"not null;index"`
	RequesterID    uint            `json:"requester_id" gorm:"not null;index"`
	ContractorID   uint            `json:"contractor_id" gorm:"not null;index"`
	Status         QuoteStatus     `json:"status" gorm:"index"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	TaxRate        decimal.Decimal `json:"tax_rate" gorm:"type:numeric(6,4)"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`
	Terms          string          `json:"terms,omitempty" gorm:"type:text"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	ViewedAt       *time.Time      `json:"viewed_at,omitempty"`
	LineItems      []QuoteLineItem `json:"line_items" gorm:"constraint:OnDelete:CASCADE"`
}

// QuoteLineItem is an individual priced entry within a quote.
// Total is always quantity times unit price, recomputed on every write.
type QuoteLineItem struct {
	gorm.Model
	QuoteID     uint            `json:"quote_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(12,2)"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	SortOrder   int             `json:"sort_order"`
}

// Validate checks the line item's field-level invariants.
func (li *QuoteLineItem) Validate() error {
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

// Expirable reports whether the quote should lapse at the given time.
// Expiry only applies while the quote is awaiting a decision.
func (q *Quote) Expirable(now time.Time) bool {
	if q.Status != QuoteStatusSent && q.Status != QuoteStatusViewed {
		return false
	}
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}

// ParseQuoteStatus converts a string representation of a quote status to QuoteStatus type
func ParseQuoteStatus(str string) (QuoteStatus, error) {
	for i, status := range quoteStatusNames {
		if status == str {
			return QuoteStatus(i), nil
		}
	}

	return QuoteStatus(0), fmt.Errorf("invalid quote status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for QuoteStatus
func (s QuoteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for QuoteStatus
func (s *QuoteStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseQuoteStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

func (s QuoteStatus) String() string {
	if int(s) < 0 || int(s) >= len(quoteStatusNames) {
		return quoteStatusNames[QuoteStatusUnknown]
	}
	return quoteStatusNames[s]
}
