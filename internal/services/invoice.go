package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db"
	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/db/repos"
	"github.com/fixbid/fixbid/internal/logger"
)

// DefaultPaymentTermDays is how long after conversion an invoice falls due
// when the caller does not supply a due date.
const DefaultPaymentTermDays = 30

// InvoiceService is the invoice half of the financial document builder.
// It also owns the quote→invoice conversion, which snapshots the quote's
// line items so later quote edits cannot touch the invoice.
type InvoiceService struct {
	db       *gorm.DB
	jobs     *repos.JobRepository
	quotes   *repos.QuoteRepository
	invoices *repos.InvoiceRepository
}

// NewInvoiceService creates a new invoice service instance
func NewInvoiceService(gdb *gorm.DB, jobs *repos.JobRepository, quotes *repos.QuoteRepository, invoices *repos.InvoiceRepository) *InvoiceService {
	return &InvoiceService{db: gdb, jobs: jobs, quotes: quotes, invoices: invoices}
}

// InvoiceInput carries the caller-supplied fields for a standalone invoice
type InvoiceInput struct {
	Title          string          `json:"title"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`
	Terms          string          `json:"terms"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	LineItems      []LineItemInput `json:"line_items"`
}

// CreateInvoice creates a draft invoice directly against an awarded job,
// without an originating quote.
func (s *InvoiceService) CreateInvoice(ctx context.Context, actor models.Actor, jobID uint, in InvoiceInput) (*models.Invoice, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if job.Status != models.JobStatusInProgress && job.Status != models.JobStatusCompleted {
		return nil, fmt.Errorf("job %d is %s, not awarded: %w", jobID, job.Status, ErrInvalidState)
	}
	if job.ContractorID == nil {
		return nil, fmt.Errorf("job %d has no assigned contractor: %w", jobID, ErrInvalidState)
	}
	if err := requireContractor(actor, *job.ContractorID); err != nil {
		return nil, err
	}

	items := make([]models.InvoiceLineItem, 0, len(in.LineItems))
	totals := make([]decimal.Decimal, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		if err := li.validate(); err != nil {
			return nil, err
		}
		t := models.LineTotal(li.Quantity, li.UnitPrice)
		items = append(items, models.InvoiceLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       t,
			SortOrder:   li.SortOrder,
		})
		totals = append(totals, t)
	}
	subtotal, tax, total, err := deriveTotals(totals, in.DiscountAmount, in.TaxRate)
	if err != nil {
		return nil, err
	}

	title := in.Title
	if title == "" {
		title = job.Title
	}
	invoice := &models.Invoice{
		Number:         newDocumentNumber("INV"),
		Title:          title,
		JobID:          job.ID,
		RequesterID:    job.RequesterID,
		ContractorID:   *job.ContractorID,
		Status:         models.InvoiceStatusDraft,
		Subtotal:       subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      tax,
		DiscountAmount: in.DiscountAmount,
		Total:          total,
		AmountPaid:     decimal.Zero,
		Notes:          in.Notes,
		Terms:          in.Terms,
		DueDate:        in.DueDate,
		LineItems:      items,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	logger.Infof("invoice %s created for job %d", invoice.Number, job.ID)
	return invoice, nil
}

// ConvertQuoteToInvoice turns an accepted quote into a new draft invoice.
// Monetary fields are copied by value and every line item is deep-copied
// with a fresh identity: a snapshot, not a live link.
func (s *InvoiceService) ConvertQuoteToInvoice(ctx context.Context, actor models.Actor, quoteID uint, dueDate *time.Time) (*models.Invoice, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireContractor(actor, quote.ContractorID); err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteStatusAccepted {
		return nil, fmt.Errorf("quote %d is %s, not accepted: %w", quoteID, quote.Status, ErrInvalidState)
	}

	exists, err := s.invoices.ExistsForQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("quote %d already has an invoice: %w", quoteID, ErrInvalidState)
	}

	if dueDate == nil {
		d := time.Now().UTC().AddDate(0, 0, DefaultPaymentTermDays)
		dueDate = &d
	}

	items := make([]models.InvoiceLineItem, 0, len(quote.LineItems))
	for _, li := range quote.LineItems {
		items = append(items, models.InvoiceLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       li.Total,
			SortOrder:   li.SortOrder,
		})
	}

	invoice := &models.Invoice{
		Number:         newDocumentNumber("INV"),
		Title:          quote.Title,
		JobID:          quote.JobID,
		RequesterID:    quote.RequesterID,
		ContractorID:   quote.ContractorID,
		QuoteID:        &quote.ID,
		Status:         models.InvoiceStatusDraft,
		Subtotal:       quote.Subtotal,
		TaxRate:        quote.TaxRate,
		TaxAmount:      quote.TaxAmount,
		DiscountAmount: quote.DiscountAmount,
		Total:          quote.Total,
		AmountPaid:     decimal.Zero,
		Notes:          quote.Notes,
		Terms:          quote.Terms,
		DueDate:        dueDate,
		LineItems:      items,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		// The unique index on quote_id closes the race between two
		// concurrent conversions of the same quote.
		if db.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("quote %d already has an invoice: %w", quoteID, ErrInvalidState)
		}
		return nil, err
	}
	logger.Infof("quote %s converted to invoice %s", quote.Number, invoice.Number)
	return invoice, nil
}

// GetInvoice returns an invoice visible to one of its parties
func (s *InvoiceService) GetInvoice(ctx context.Context, actor models.Actor, invoiceID uint) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireParty(actor, invoice.RequesterID, invoice.ContractorID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// AddLineItem appends a line item to a draft invoice and recomputes the
// document aggregates in the same transaction.
func (s *InvoiceService) AddLineItem(ctx context.Context, actor models.Actor, invoiceID uint, in LineItemInput) (*models.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	invoice, err := s.editableInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	item := &models.InvoiceLineItem{
		InvoiceID:   invoice.ID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Total:       models.LineTotal(in.Quantity, in.UnitPrice),
		SortOrder:   in.SortOrder,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoices.WithTx(tx).AddLineItem(ctx, item); err != nil {
			return err
		}
		invoice, err = s.recomputeTx(ctx, tx, invoice.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RemoveLineItem deletes a line item from a draft invoice and recomputes
// the document aggregates in the same transaction.
func (s *InvoiceService) RemoveLineItem(ctx context.Context, actor models.Actor, invoiceID, itemID uint) (*models.Invoice, error) {
	invoice, err := s.editableInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := s.invoices.WithTx(tx).RemoveLineItem(ctx, invoice.ID, itemID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("line item %d does not belong to invoice %d: %w",
				itemID, invoice.ID, ErrNotFound)
		}
		invoice, err = s.recomputeTx(ctx, tx, invoice.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// SetPricing updates the tax rate and discount of a draft invoice and
// recomputes the aggregates.
func (s *InvoiceService) SetPricing(ctx context.Context, actor models.Actor, invoiceID uint, taxRate, discount decimal.Decimal) (*models.Invoice, error) {
	invoice, err := s.editableInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"tax_rate":        taxRate,
				"discount_amount": discount,
			}).Error; err != nil {
			return err
		}
		invoice, err = s.recomputeTx(ctx, tx, invoice.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecomputeTotals re-derives and persists the invoice aggregates.
func (s *InvoiceService) RecomputeTotals(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = s.recomputeTx(ctx, tx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) recomputeTx(ctx context.Context, tx *gorm.DB, invoiceID uint) (*models.Invoice, error) {
	invoices := s.invoices.WithTx(tx)
	invoice, err := invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err)
	}

	totals := make([]decimal.Decimal, 0, len(invoice.LineItems))
	for _, li := range invoice.LineItems {
		totals = append(totals, li.Total)
	}
	subtotal, tax, total, err := deriveTotals(totals, invoice.DiscountAmount, invoice.TaxRate)
	if err != nil {
		return nil, err
	}

	invoice.Subtotal = subtotal
	invoice.TaxAmount = tax
	invoice.Total = total
	if err := invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Transition drives the invoice status machine:
// draft→sent, sent→viewed, sent|viewed→paid (only once fully paid).
// Overdue is derived on read and never a transition target.
func (s *InvoiceService) Transition(ctx context.Context, actor models.Actor, invoiceID uint, target models.InvoiceStatus) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireParty(actor, invoice.RequesterID, invoice.ContractorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch {
	case invoice.Status == models.InvoiceStatusDraft && target == models.InvoiceStatusSent:
		if err := requireContractor(actor, invoice.ContractorID); err != nil {
			return nil, err
		}
		if len(invoice.LineItems) == 0 || invoice.Total.Sign() <= 0 {
			return nil, fmt.Errorf("invoice %d needs at least one line item and a positive total: %w",
				invoiceID, ErrInvalidState)
		}
		invoice.Status = models.InvoiceStatusSent
		invoice.SentAt = &now

	case invoice.Status == models.InvoiceStatusSent && target == models.InvoiceStatusViewed:
		if err := requireRequester(actor, invoice.RequesterID); err != nil {
			return nil, err
		}
		invoice.Status = models.InvoiceStatusViewed
		invoice.ViewedAt = &now

	case (invoice.Status == models.InvoiceStatusSent || invoice.Status == models.InvoiceStatusViewed) &&
		target == models.InvoiceStatusPaid:
		if !invoice.AmountPaid.Equal(invoice.Total) {
			return nil, fmt.Errorf("invoice %d is not fully paid (%s of %s): %w",
				invoiceID, invoice.AmountPaid, invoice.Total, ErrInvalidState)
		}
		invoice.Status = models.InvoiceStatusPaid
		invoice.PaidAt = &now

	default:
		return nil, fmt.Errorf("invoice cannot go from %s to %s: %w",
			invoice.Status, target, ErrInvalidTransition)
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	logger.Infof("invoice %s transitioned to %s", invoice.Number, invoice.Status)
	return invoice, nil
}

// RecordPayment adds a partial or full payment to a sent or viewed
// invoice. Reaching the exact total flips the invoice to paid; pushing
// past it fails with OverPayment and records nothing.
func (s *InvoiceService) RecordPayment(ctx context.Context, actor models.Actor, invoiceID uint, amount decimal.Decimal) (*models.Invoice, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("payment amount must be positive: %w", ErrInvalidInput)
	}

	var invoice *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoices.WithTx(tx)
		var err error
		invoice, err = invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return notFound(err)
		}
		if err := requireRequester(actor, invoice.RequesterID); err != nil {
			return err
		}
		if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusViewed {
			return fmt.Errorf("invoice %d is %s and cannot take payments: %w",
				invoiceID, invoice.Status, ErrInvalidState)
		}

		prevPaid := invoice.AmountPaid
		prevStatus := invoice.Status
		newPaid := prevPaid.Add(amount)
		if newPaid.GreaterThan(invoice.Total) {
			return fmt.Errorf("payment of %s would exceed total %s (already paid %s): %w",
				amount, invoice.Total, invoice.AmountPaid, ErrOverPayment)
		}

		invoice.AmountPaid = newPaid
		if newPaid.Equal(invoice.Total) {
			now := time.Now().UTC()
			invoice.Status = models.InvoiceStatusPaid
			invoice.PaidAt = &now
		}
		// Compare-and-swap on the observed paid amount: a payment that
		// committed since the read above must not be overwritten.
		applied, err := invoices.ApplyPayment(ctx, invoice, prevPaid, prevStatus)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("invoice %d changed concurrently, payment not applied: %w",
				invoiceID, ErrConcurrencyConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("payment of %s recorded on invoice %s (now %s)", amount, invoice.Number, invoice.Status)
	return invoice, nil
}

// editableInvoice loads an invoice and checks that the actor may edit it.
// Only draft documents are editable.
func (s *InvoiceService) editableInvoice(ctx context.Context, actor models.Actor, invoiceID uint) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireContractor(actor, invoice.ContractorID); err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, fmt.Errorf("invoice %d is %s and can no longer be edited: %w",
			invoiceID, invoice.Status, ErrInvalidState)
	}
	return invoice, nil
}
