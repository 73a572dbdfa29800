package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/db/repos"
	"github.com/fixbid/fixbid/internal/logger"
)

// QuoteService is the quote half of the financial document builder. All
// monetary aggregates flow through deriveTotals; the persisted subtotal,
// tax and total are never taken from caller input.
type QuoteService struct {
	db     *gorm.DB
	jobs   *repos.JobRepository
	quotes *repos.QuoteRepository
}

// NewQuoteService creates a new quote service instance
func NewQuoteService(db *gorm.DB, jobs *repos.JobRepository, quotes *repos.QuoteRepository) *QuoteService {
	return &QuoteService{db: db, jobs: jobs, quotes: quotes}
}

// QuoteInput carries the caller-supplied fields for a new quote
type QuoteInput struct {
	Title          string          `json:"title"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`
	Terms          string          `json:"terms"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	LineItems      []LineItemInput `json:"line_items"`
}

// CreateQuote creates a draft quote for an awarded job, issued by the
// job's assigned contractor.
func (s *QuoteService) CreateQuote(ctx context.Context, actor models.Actor, jobID uint, in QuoteInput) (*models.Quote, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if job.Status != models.JobStatusInProgress {
		return nil, fmt.Errorf("job %d is %s, not in_progress: %w", jobID, job.Status, ErrInvalidState)
	}
	if job.ContractorID == nil {
		return nil, fmt.Errorf("job %d has no assigned contractor: %w", jobID, ErrInvalidState)
	}
	if err := requireContractor(actor, *job.ContractorID); err != nil {
		return nil, err
	}

	var quote *models.Quote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err = s.createQuoteTx(ctx, tx, job, *job.ContractorID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// createQuoteTx builds and persists a draft quote inside the caller's
// transaction. The lifecycle orchestrator reuses it so award and quote
// creation commit or roll back together.
func (s *QuoteService) createQuoteTx(ctx context.Context, tx *gorm.DB, job *models.Job, contractorID uint, in QuoteInput) (*models.Quote, error) {
	if in.Title == "" {
		in.Title = job.Title
	}

	items := make([]models.QuoteLineItem, 0, len(in.LineItems))
	totals := make([]decimal.Decimal, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		if err := li.validate(); err != nil {
			return nil, err
		}
		t := models.LineTotal(li.Quantity, li.UnitPrice)
		items = append(items, models.QuoteLineItem{
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

	quote := &models.Quote{
		Number:         newDocumentNumber("QT"),
		Title:          in.Title,
		JobID:          job.ID,
		RequesterID:    job.RequesterID,
		ContractorID:   contractorID,
		Status:         models.QuoteStatusDraft,
		Subtotal:       subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      tax,
		DiscountAmount: in.DiscountAmount,
		Total:          total,
		Notes:          in.Notes,
		Terms:          in.Terms,
		ValidUntil:     in.ValidUntil,
		LineItems:      items,
	}
	if err := s.quotes.WithTx(tx).Create(ctx, quote); err != nil {
		return nil, err
	}
	logger.Infof("quote %s created for job %d", quote.Number, job.ID)
	return quote, nil
}

// GetQuote returns a quote visible to one of its parties. Expiry is
// evaluated lazily here, never by a background process.
func (s *QuoteService) GetQuote(ctx context.Context, actor models.Actor, quoteID uint) (*models.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireParty(actor, quote.RequesterID, quote.ContractorID); err != nil {
		return nil, err
	}
	if err := s.maybeExpire(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// AddLineItem appends a line item to a draft quote and recomputes the
// document aggregates in the same transaction.
func (s *QuoteService) AddLineItem(ctx context.Context, actor models.Actor, quoteID uint, in LineItemInput) (*models.Quote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	quote, err := s.editableQuote(ctx, actor, quoteID)
	if err != nil {
		return nil, err
	}

	item := &models.QuoteLineItem{
		QuoteID:     quote.ID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Total:       models.LineTotal(in.Quantity, in.UnitPrice),
		SortOrder:   in.SortOrder,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quotes.WithTx(tx).AddLineItem(ctx, item); err != nil {
			return err
		}
		quote, err = s.recomputeTx(ctx, tx, quote.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// RemoveLineItem deletes a line item from a draft quote and recomputes
// the document aggregates in the same transaction.
func (s *QuoteService) RemoveLineItem(ctx context.Context, actor models.Actor, quoteID, itemID uint) (*models.Quote, error) {
	quote, err := s.editableQuote(ctx, actor, quoteID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := s.quotes.WithTx(tx).RemoveLineItem(ctx, quote.ID, itemID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("line item %d does not belong to quote %d: %w",
				itemID, quote.ID, ErrNotFound)
		}
		quote, err = s.recomputeTx(ctx, tx, quote.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// SetPricing updates the tax rate and discount of a draft quote and
// recomputes the aggregates.
func (s *QuoteService) SetPricing(ctx context.Context, actor models.Actor, quoteID uint, taxRate, discount decimal.Decimal) (*models.Quote, error) {
	quote, err := s.editableQuote(ctx, actor, quoteID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Quote{}).Where("id = ?", quote.ID).
			Updates(map[string]interface{}{
				"tax_rate":        taxRate,
				"discount_amount": discount,
			}).Error; err != nil {
			return err
		}
		quote, err = s.recomputeTx(ctx, tx, quote.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// RecomputeTotals re-derives and persists the quote aggregates. It is
// idempotent: repeated calls without intervening mutation are no-ops.
func (s *QuoteService) RecomputeTotals(ctx context.Context, quoteID uint) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		quote, err = s.recomputeTx(ctx, tx, quoteID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *QuoteService) recomputeTx(ctx context.Context, tx *gorm.DB, quoteID uint) (*models.Quote, error) {
	quotes := s.quotes.WithTx(tx)
	quote, err := quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, notFound(err)
	}

	totals := make([]decimal.Decimal, 0, len(quote.LineItems))
	for _, li := range quote.LineItems {
		totals = append(totals, li.Total)
	}
	subtotal, tax, total, err := deriveTotals(totals, quote.DiscountAmount, quote.TaxRate)
	if err != nil {
		return nil, err
	}

	quote.Subtotal = subtotal
	quote.TaxAmount = tax
	quote.Total = total
	if err := quotes.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Transition drives the quote status machine:
// draft→sent, sent→viewed, sent|viewed→accepted|rejected,
// sent|viewed→expired once the validity deadline has passed.
func (s *QuoteService) Transition(ctx context.Context, actor models.Actor, quoteID uint, target models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireParty(actor, quote.RequesterID, quote.ContractorID); err != nil {
		return nil, err
	}
	if err := s.maybeExpire(ctx, quote); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch {
	case quote.Status == models.QuoteStatusDraft && target == models.QuoteStatusSent:
		if err := requireContractor(actor, quote.ContractorID); err != nil {
			return nil, err
		}
		if len(quote.LineItems) == 0 || quote.Total.Sign() <= 0 {
			return nil, fmt.Errorf("quote %d needs at least one line item and a positive total: %w",
				quoteID, ErrInvalidState)
		}
		quote.Status = models.QuoteStatusSent
		quote.SentAt = &now

	case quote.Status == models.QuoteStatusSent && target == models.QuoteStatusViewed:
		if err := requireRequester(actor, quote.RequesterID); err != nil {
			return nil, err
		}
		quote.Status = models.QuoteStatusViewed
		quote.ViewedAt = &now

	case (quote.Status == models.QuoteStatusSent || quote.Status == models.QuoteStatusViewed) &&
		(target == models.QuoteStatusAccepted || target == models.QuoteStatusRejected):
		if err := requireRequester(actor, quote.RequesterID); err != nil {
			return nil, err
		}
		quote.Status = target

	case (quote.Status == models.QuoteStatusSent || quote.Status == models.QuoteStatusViewed) &&
		target == models.QuoteStatusExpired:
		if !quote.Expirable(now) {
			return nil, fmt.Errorf("quote %d has not passed its validity deadline: %w",
				quoteID, ErrInvalidTransition)
		}
		quote.Status = models.QuoteStatusExpired

	default:
		return nil, fmt.Errorf("quote cannot go from %s to %s: %w",
			quote.Status, target, ErrInvalidTransition)
	}

	if err := s.quotes.Update(ctx, quote); err != nil {
		return nil, err
	}
	logger.Infof("quote %s transitioned to %s", quote.Number, quote.Status)
	return quote, nil
}

// ExpireQuotes marks every expirable quote as expired and returns how
// many lapsed. This is the operator-invoked sweep; the primary expiry
// path stays lazy on read.
func (s *QuoteService) ExpireQuotes(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	quotes, err := s.quotes.ListExpirable(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range quotes {
		quotes[i].Status = models.QuoteStatusExpired
		if err := s.quotes.Update(ctx, &quotes[i]); err != nil {
			return 0, err
		}
	}
	return len(quotes), nil
}

// maybeExpire lapses a quote whose validity deadline has passed. Expiry
// is observed on read or transition so there is no second mutation path
// racing with explicit transitions.
func (s *QuoteService) maybeExpire(ctx context.Context, quote *models.Quote) error {
	if !quote.Expirable(time.Now().UTC()) {
		return nil
	}
	quote.Status = models.QuoteStatusExpired
	return s.quotes.Update(ctx, quote)
}

// editableQuote loads a quote and checks that the actor may edit it.
// Only draft documents are editable.
func (s *QuoteService) editableQuote(ctx context.Context, actor models.Actor, quoteID uint) (*models.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireContractor(actor, quote.ContractorID); err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteStatusDraft {
		return nil, fmt.Errorf("quote %d is %s and can no longer be edited: %w",
			quoteID, quote.Status, ErrInvalidState)
	}
	return quote, nil
}
