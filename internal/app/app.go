package app

import (
	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	v1 "github.com/fixbid/fixbid/internal/api/v1/routes"

	"github.com/fixbid/fixbid/internal/api/v1/handlers"
	"github.com/fixbid/fixbid/internal/api/v1/middleware"
	"github.com/fixbid/fixbid/internal/db/repos"
	"github.com/fixbid/fixbid/internal/services"
)

// NewApp wires the repositories, services and handlers onto a Fiber app
func NewApp(db *gorm.DB) *fiber.App {
	jobRepo := repos.NewJobRepository(db)
	bidRepo := repos.NewBidRepository(db)
	quoteRepo := repos.NewQuoteRepository(db)
	invoiceRepo := repos.NewInvoiceRepository(db)

	jobSvc := services.NewJobService(db, jobRepo, bidRepo)
	bidSvc := services.NewBidService(db, jobRepo, bidRepo)
	quoteSvc := services.NewQuoteService(db, jobRepo, quoteRepo)
	invoiceSvc := services.NewInvoiceService(db, jobRepo, quoteRepo, invoiceRepo)
	lifecycleSvc := services.NewLifecycleService(db, bidSvc, quoteSvc, invoiceSvc, jobRepo, invoiceRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(middleware.Logger())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1.Register(app, v1.Handlers{
		Jobs:     handlers.NewJobHandler(jobSvc, lifecycleSvc),
		Bids:     handlers.NewBidHandler(bidSvc),
		Quotes:   handlers.NewQuoteHandler(quoteSvc, invoiceSvc),
		Invoices: handlers.NewInvoiceHandler(invoiceSvc, lifecycleSvc),
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
