package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/db/repos"
	"github.com/fixbid/fixbid/internal/logger"
)

// LifecycleService sequences the end-to-end flow. It is the only
// component that calls across bid arbitration and the financial document
// builder within one logical operation.
type LifecycleService struct {
	db       *gorm.DB
	bids     *BidService
	quoteSvc *QuoteService
	invSvc   *InvoiceService
	jobs     *repos.JobRepository
	invoices *repos.InvoiceRepository
}

// NewLifecycleService creates a new lifecycle service instance
func NewLifecycleService(gdb *gorm.DB, bids *BidService, quoteSvc *QuoteService, invSvc *InvoiceService, jobs *repos.JobRepository, invoices *repos.InvoiceRepository) *LifecycleService {
	return &LifecycleService{
		db:       gdb,
		bids:     bids,
		quoteSvc: quoteSvc,
		invSvc:   invSvc,
		jobs:     jobs,
		invoices: invoices,
	}
}

// AwardAndQuote accepts the chosen bid and creates a draft quote for the
// engagement in one transaction. If quote creation fails the award rolls
// back too — the system is never left with an awarded job and no quote.
func (s *LifecycleService) AwardAndQuote(ctx context.Context, actor models.Actor, jobID, bidID uint, in QuoteInput) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bid, err := s.bids.acceptBidTx(ctx, tx, actor, jobID, bidID)
		if err != nil {
			return err
		}

		job, err := s.jobs.WithTx(tx).GetByID(ctx, jobID)
		if err != nil {
			return notFound(err)
		}
		if in.Title == "" {
			in.Title = job.Title
		}
		quote, err = s.quoteSvc.createQuoteTx(ctx, tx, job, bid.ContractorID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("job %d awarded to bid %d with quote %s", jobID, bidID, quote.Number)
	return quote, nil
}

// SettleInvoice records a payment against the invoice. Reaching paid
// makes the job eligible for completion; the completion transition
// itself stays a separate explicit caller action.
func (s *LifecycleService) SettleInvoice(ctx context.Context, actor models.Actor, invoiceID uint, amount decimal.Decimal) (*models.Invoice, error) {
	invoice, err := s.invSvc.RecordPayment(ctx, actor, invoiceID, amount)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		logger.Infof("invoice %s settled, job %d is eligible for completion", invoice.Number, invoice.JobID)
	}
	return invoice, nil
}

// CompleteJob confirms that an in-progress job is finished. Either party
// may confirm, and every invoice issued against the job must be settled
// first.
func (s *LifecycleService) CompleteJob(ctx context.Context, actor models.Actor, jobID uint) (*models.Job, error) {
	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs := s.jobs.WithTx(tx)
		var err error
		job, err = jobs.GetByID(ctx, jobID)
		if err != nil {
			return notFound(err)
		}
		if err := requirePartyOfJob(actor, job); err != nil {
			return err
		}
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("job %d is %s, not in_progress: %w", jobID, job.Status, ErrInvalidState)
		}

		unpaid, err := s.invoices.WithTx(tx).CountUnpaidByJob(ctx, jobID)
		if err != nil {
			return err
		}
		if unpaid > 0 {
			return fmt.Errorf("job %d has %d unsettled invoice(s): %w", jobID, unpaid, ErrInvalidState)
		}

		moved, err := jobs.TransitionStatus(ctx, jobID, models.JobStatusCompleted, models.JobStatusInProgress)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("job %d changed concurrently: %w", jobID, ErrConcurrencyConflict)
		}
		job.Status = models.JobStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("job %d completed", jobID)
	return job, nil
}

// requirePartyOfJob checks that the actor is the job's requester or its
// assigned contractor.
func requirePartyOfJob(actor models.Actor, job *models.Job) error {
	if actor.Role == models.ActorRoleRequester && actor.ID == job.RequesterID {
		return nil
	}
	if actor.Role == models.ActorRoleContractor && job.ContractorID != nil && actor.ID == *job.ContractorID {
		return nil
	}
	return fmt.Errorf("actor %d is not a party to job %d: %w", actor.ID, job.ID, ErrForbidden)
}
