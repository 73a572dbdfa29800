package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixbid/fixbid/internal/db/models"
)

// LineItemInput carries the caller-supplied fields for a line item.
// The total is always derived, never taken from input.
type LineItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SortOrder   int             `json:"sort_order"`
}

func (in LineItemInput) validate() error {
	if in.Description == "" {
		return fmt.Errorf("line item description is required: %w", ErrInvalidInput)
	}
	if in.Quantity.Sign() < 0 {
		return fmt.Errorf("line item quantity cannot be negative: %w", ErrInvalidInput)
	}
	if in.UnitPrice.Sign() < 0 {
		return fmt.Errorf("line item unit price cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}

// deriveTotals is the single source of truth for document aggregates.
// The discount applies before tax, tax is never computed on a negative
// base, and the rounding is round-half-to-even.
func deriveTotals(itemTotals []decimal.Decimal, discount, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal, err error) {
	zero := decimal.Zero
	if discount.Sign() < 0 {
		return zero, zero, zero, fmt.Errorf("discount cannot be negative: %w", ErrInvalidInput)
	}
	if taxRate.Sign() < 0 {
		return zero, zero, zero, fmt.Errorf("tax rate cannot be negative: %w", ErrInvalidInput)
	}

	subtotal = models.Round2(decimal.Sum(zero, itemTotals...))
	if discount.GreaterThan(subtotal) {
		return zero, zero, zero, fmt.Errorf("discount %s exceeds subtotal %s: %w",
			discount, subtotal, ErrInvalidState)
	}
	taxable := subtotal.Sub(discount)
	tax = models.Round2(taxable.Mul(taxRate))
	total = subtotal.Sub(discount).Add(tax)
	return subtotal, tax, total, nil
}

// newDocumentNumber produces a short unique human-readable document number
func newDocumentNumber(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.NewString()[:8]))
}

// requireParty checks that the actor is one of the two parties to a
// financial document, in the matching role.
func requireParty(actor models.Actor, requesterID, contractorID uint) error {
	switch actor.Role {
	case models.ActorRoleRequester:
		if actor.ID == requesterID {
			return nil
		}
	case models.ActorRoleContractor:
		if actor.ID == contractorID {
			return nil
		}
	}
	return fmt.Errorf("actor %d is not a party to this document: %w", actor.ID, ErrForbidden)
}

// requireContractor checks that the actor is the document's issuing contractor
func requireContractor(actor models.Actor, contractorID uint) error {
	if actor.Role != models.ActorRoleContractor || actor.ID != contractorID {
		return fmt.Errorf("actor %d is not the issuing contractor: %w", actor.ID, ErrForbidden)
	}
	return nil
}

// requireRequester checks that the actor is the document's paying requester
func requireRequester(actor models.Actor, requesterID uint) error {
	if actor.Role != models.ActorRoleRequester || actor.ID != requesterID {
		return fmt.Errorf("actor %d is not the requester on this document: %w", actor.ID, ErrForbidden)
	}
	return nil
}
