package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/fixbid/fixbid/internal/api/v1/middleware"
	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/services"
)

// InvoiceHandler exposes invoice building, lifecycle and payment endpoints
type InvoiceHandler struct {
	invoices  *services.InvoiceService
	lifecycle *services.LifecycleService
}

// NewInvoiceHandler creates a new invoice handler instance
func NewInvoiceHandler(invoices *services.InvoiceService, lifecycle *services.LifecycleService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, lifecycle: lifecycle}
}

// CreateInvoice creates a draft invoice directly against an awarded job
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.InvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed invoice body")
	}

	invoice, err := h.invoices.CreateInvoice(c.Context(), middleware.ActorFromCtx(c), jobID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(invoice))
}

// invoiceView decorates an invoice with its derived effective status
type invoiceView struct {
	*models.Invoice
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
}

// GetInvoice returns an invoice to one of its parties. The response
// carries the derived effective status so overdue is visible without
// ever being persisted.
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	invoice, err := h.invoices.GetInvoice(c.Context(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(invoiceView{
		Invoice:         invoice,
		EffectiveStatus: invoice.EffectiveStatus(time.Now().UTC()),
	}))
}

// AddLineItem appends a line item to a draft invoice
func (h *InvoiceHandler) AddLineItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.LineItemInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed line item body")
	}

	invoice, err := h.invoices.AddLineItem(c.Context(), middleware.ActorFromCtx(c), id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(invoice))
}

// RemoveLineItem removes a line item from a draft invoice
func (h *InvoiceHandler) RemoveLineItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	invoice, err := h.invoices.RemoveLineItem(c.Context(), middleware.ActorFromCtx(c), id, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(invoice))
}

// SetPricing updates tax rate and discount on a draft invoice
func (h *InvoiceHandler) SetPricing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req pricingRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidInput(c, "malformed pricing body")
	}

	invoice, err := h.invoices.SetPricing(c.Context(), middleware.ActorFromCtx(c), id, req.TaxRate, req.DiscountAmount)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(invoice))
}

// Transition drives the invoice status machine
func (h *InvoiceHandler) Transition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidInput(c, "malformed transition body")
	}
	target, err := models.ParseInvoiceStatus(req.Status)
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	invoice, err := h.invoices.Transition(c.Context(), middleware.ActorFromCtx(c), id, target)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(invoice))
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordPayment adds a payment against the invoice
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidInput(c, "malformed payment body")
	}

	invoice, err := h.lifecycle.SettleInvoice(c.Context(), middleware.ActorFromCtx(c), id, req.Amount)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(invoice))
}
