package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
)

// QuoteRepository provides access to quote-related database operations
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository instance
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *QuoteRepository) WithTx(tx *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: tx}
}

// Create creates a new quote together with its line items
func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	for i := range quote.LineItems {
		if err := quote.LineItems[i].Validate(); err != nil {
			return fmt.Errorf("invalid line item: %w", err)
		}
	}
	return r.db.WithContext(ctx).Create(quote).Error
}

// GetByID retrieves a quote and its line items in sort order
func (r *QuoteRepository) GetByID(ctx context.Context, id uint) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("quote %d not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

// Update saves the quote's own columns (not its line items)
func (r *QuoteRepository) Update(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Omit("LineItems").Save(quote).Error
}

// AddLineItem appends a line item to the quote
func (r *QuoteRepository) AddLineItem(ctx context.Context, item *models.QuoteLineItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid line item: %w", err)
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateLineItem saves an existing line item
func (r *QuoteRepository) UpdateLineItem(ctx context.Context, item *models.QuoteLineItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid line item: %w", err)
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// RemoveLineItem deletes a line item belonging to the quote. It reports
// false when no such item exists on the document.
func (r *QuoteRepository) RemoveLineItem(ctx context.Context, quoteID, itemID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Delete(&models.QuoteLineItem{}, itemID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove line item: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListByJob returns all quotes issued against a job
func (r *QuoteRepository) ListByJob(ctx context.Context, jobID uint, opts models.ListOptions) ([]models.Quote, error) {
	opts = opts.WithDefaults()
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where(&models.Quote{JobID: jobID}).
		Limit(opts.Limit).Offset(opts.Offset).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

// ListExpirable returns quotes still awaiting a decision whose validity
// deadline has passed. Used by the operator-invoked expiry sweep.
func (r *QuoteRepository) ListExpirable(ctx context.Context, now time.Time) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("status IN ? AND valid_until IS NOT NULL AND valid_until < ?",
			[]models.QuoteStatus{models.QuoteStatusSent, models.QuoteStatusViewed}, now).
		Find(&quotes).Error
	return quotes, err
}
