package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/fixbid/fixbid/internal/api/v1/middleware"
	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/services"
)

// QuoteHandler exposes quote building and lifecycle endpoints
type QuoteHandler struct {
	quotes   *services.QuoteService
	invoices *services.InvoiceService
}

// NewQuoteHandler creates a new quote handler instance
func NewQuoteHandler(quotes *services.QuoteService, invoices *services.InvoiceService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, invoices: invoices}
}

// CreateQuote creates a draft quote for an awarded job
func (h *QuoteHandler) CreateQuote(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.QuoteInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed quote body")
	}

	quote, err := h.quotes.CreateQuote(c.Context(), middleware.ActorFromCtx(c), jobID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(quote))
}

// GetQuote returns a quote to one of its parties
func (h *QuoteHandler) GetQuote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	quote, err := h.quotes.GetQuote(c.Context(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(quote))
}

// AddLineItem appends a line item to a draft quote
func (h *QuoteHandler) AddLineItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.LineItemInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed line item body")
	}

	quote, err := h.quotes.AddLineItem(c.Context(), middleware.ActorFromCtx(c), id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(quote))
}

// RemoveLineItem removes a line item from a draft quote
func (h *QuoteHandler) RemoveLineItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	quote, err := h.quotes.RemoveLineItem(c.Context(), middleware.ActorFromCtx(c), id, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(quote))
}

type pricingRequest struct {
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// SetPricing updates tax rate and discount on a draft quote
func (h *QuoteHandler) SetPricing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req pricingRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidInput(c, "malformed pricing body")
	}

	quote, err := h.quotes.SetPricing(c.Context(), middleware.ActorFromCtx(c), id, req.TaxRate, req.DiscountAmount)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(quote))
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition drives the quote status machine
func (h *QuoteHandler) Transition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidInput(c, "malformed transition body")
	}
	target, err := models.ParseQuoteStatus(req.Status)
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	quote, err := h.quotes.Transition(c.Context(), middleware.ActorFromCtx(c), id, target)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(quote))
}

type convertRequest struct {
	DueDate *time.Time `json:"due_date,omitempty"`
}

// Convert turns an accepted quote into a draft invoice
func (h *QuoteHandler) Convert(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req convertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errInvalidInput(c, "malformed convert body")
		}
	}

	invoice, err := h.invoices.ConvertQuoteToInvoice(c.Context(), middleware.ActorFromCtx(c), id, req.DueDate)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(invoice))
}
