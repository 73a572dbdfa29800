package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
)

// InvoiceRepository provides access to invoice-related database operations
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

// Create creates a new invoice together with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}
	for i := range invoice.LineItems {
		if err := invoice.LineItems[i].Validate(); err != nil {
			return fmt.Errorf("invalid line item: %w", err)
		}
	}
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID retrieves an invoice and its line items in sort order
func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invoice %d not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

// Update saves the invoice's own columns (not its line items)
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}
	return r.db.WithContext(ctx).Omit("LineItems").Save(invoice).Error
}

// ApplyPayment persists a payment by compare-and-swap on the previously
// observed paid amount and status. It reports false when the row moved
// underneath the caller, so two concurrent payments can never both apply
// against the same base amount.
func (r *InvoiceRepository) ApplyPayment(ctx context.Context, invoice *models.Invoice, prevPaid decimal.Decimal, prevStatus models.InvoiceStatus) (bool, error) {
	if err := invoice.Validate(); err != nil {
		return false, fmt.Errorf("invalid invoice: %w", err)
	}
	res := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND amount_paid = ? AND status = ?", invoice.ID, prevPaid, prevStatus).
		Updates(map[string]interface{}{
			"amount_paid": invoice.AmountPaid,
			"status":      invoice.Status,
			"paid_at":     invoice.PaidAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to apply payment: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// AddLineItem appends a line item to the invoice
func (r *InvoiceRepository) AddLineItem(ctx context.Context, item *models.InvoiceLineItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid line item: %w", err)
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// RemoveLineItem deletes a line item belonging to the invoice. It reports
// false when no such item exists on the document.
func (r *InvoiceRepository) RemoveLineItem(ctx context.Context, invoiceID, itemID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceLineItem{}, itemID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove line item: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ExistsForQuote reports whether an invoice already references the quote
func (r *InvoiceRepository) ExistsForQuote(ctx context.Context, quoteID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	return count > 0, nil
}

// ListByJob returns all invoices issued against a job
func (r *InvoiceRepository) ListByJob(ctx context.Context, jobID uint, opts models.ListOptions) ([]models.Invoice, error) {
	opts = opts.WithDefaults()
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where(&models.Invoice{JobID: jobID}).
		Limit(opts.Limit).Offset(opts.Offset).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// CountUnpaidByJob returns the number of non-paid invoices on a job.
// Completion eligibility depends on every issued invoice being settled.
func (r *InvoiceRepository) CountUnpaidByJob(ctx context.Context, jobID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("job_id = ? AND status <> ?", jobID, models.InvoiceStatusPaid).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid invoices: %w", err)
	}
	return count, nil
}
