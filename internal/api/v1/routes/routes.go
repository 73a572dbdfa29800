package v1

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixbid/fixbid/internal/api/v1/handlers"
	"github.com/fixbid/fixbid/internal/api/v1/middleware"
)

// Handlers groups the v1 endpoint handlers for registration
type Handlers struct {
	Jobs     *handlers.JobHandler
	Bids     *handlers.BidHandler
	Quotes   *handlers.QuoteHandler
	Invoices *handlers.InvoiceHandler
}

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, h Handlers) {
	jobs := router.Group("/jobs")
	jobs.Post("/", h.Jobs.CreateJob)
	jobs.Get("/", h.Jobs.ListJobs)
	jobs.Get("/:id", h.Jobs.GetJob)
	jobs.Post("/:id/open", h.Jobs.OpenJob)
	jobs.Post("/:id/cancel", h.Jobs.CancelJob)
	jobs.Post("/:id/complete", h.Jobs.CompleteJob)

	// bids live under their job
	jobs.Post("/:id/bids", h.Bids.SubmitBid)
	jobs.Get("/:id/bids", h.Bids.ListBids)
	jobs.Post("/:id/bids/:bidId/accept", h.Bids.AcceptBid)
	jobs.Post("/:id/bids/:bidId/reject", h.Bids.RejectBid)
	jobs.Post("/:id/bids/:bidId/withdraw", h.Bids.WithdrawBid)
	jobs.Post("/:id/bids/:bidId/award", h.Jobs.AwardAndQuote)

	jobs.Post("/:id/quotes", h.Quotes.CreateQuote)
	jobs.Post("/:id/invoices", h.Invoices.CreateInvoice)

	quotes := router.Group("/quotes")
	quotes.Get("/:id", h.Quotes.GetQuote)
	quotes.Post("/:id/items", h.Quotes.AddLineItem)
	quotes.Delete("/:id/items/:itemId", h.Quotes.RemoveLineItem)
	quotes.Put("/:id/pricing", h.Quotes.SetPricing)
	quotes.Post("/:id/transition", h.Quotes.Transition)
	quotes.Post("/:id/convert", h.Quotes.Convert)

	invoices := router.Group("/invoices")
	invoices.Get("/:id", h.Invoices.GetInvoice)
	invoices.Post("/:id/items", h.Invoices.AddLineItem)
	invoices.Delete("/:id/items/:itemId", h.Invoices.RemoveLineItem)
	invoices.Put("/:id/pricing", h.Invoices.SetPricing)
	invoices.Post("/:id/transition", h.Invoices.Transition)
	invoices.Post("/:id/payments", h.Invoices.RecordPayment)
}

// Register registers the v1 routes
func Register(app *fiber.App, h Handlers) {
	// API v1 routes
	v1Group := app.Group("/api/v1", middleware.Actor())
	SetupRoutes(v1Group, h)
}
