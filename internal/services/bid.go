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

// BidService is the bid arbitration component. It owns every bid status
// mutation and enforces the single-winner invariant: at most one accepted
// bid per job, and no pending sibling after award.
type BidService struct {
	db   *gorm.DB
	jobs *repos.JobRepository
	bids *repos.BidRepository
}

// NewBidService creates a new bid service instance
func NewBidService(db *gorm.DB, jobs *repos.JobRepository, bids *repos.BidRepository) *BidService {
	return &BidService{db: db, jobs: jobs, bids: bids}
}

// SubmitBidInput carries the caller-supplied fields for a new bid
type SubmitBidInput struct {
	Amount        decimal.Decimal `json:"amount"`
	Proposal      string          `json:"proposal"`
	TimeEstimate  string          `json:"time_estimate"`
	ProposedStart *time.Time      `json:"proposed_start,omitempty"`
}

// SubmitBid creates a pending bid by the contractor against an open job
func (s *BidService) SubmitBid(ctx context.Context, actor models.Actor, jobID uint, in SubmitBidInput) (*models.Bid, error) {
	if actor.Role != models.ActorRoleContractor {
		return nil, fmt.Errorf("only a contractor may submit a bid: %w", ErrForbidden)
	}
	if in.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("bid amount must be positive: %w", ErrInvalidInput)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if job.Status != models.JobStatusOpen {
		return nil, fmt.Errorf("job %d is %s and not accepting bids: %w",
			jobID, job.Status, ErrInvalidState)
	}
	if job.RequesterID == actor.ID {
		return nil, fmt.Errorf("requester cannot bid on their own job: %w", ErrForbidden)
	}

	active, err := s.bids.HasActiveBid(ctx, jobID, actor.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("contractor %d already has an active bid on job %d: %w",
			actor.ID, jobID, ErrDuplicateBid)
	}

	bid := &models.Bid{
		JobID:         jobID,
		ContractorID:  actor.ID,
		Amount:        in.Amount,
		Proposal:      in.Proposal,
		TimeEstimate:  in.TimeEstimate,
		ProposedStart: in.ProposedStart,
		Status:        models.BidStatusPending,
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}
	logger.Infof("bid %d submitted on job %d by contractor %d", bid.ID, jobID, actor.ID)
	return bid, nil
}

// AcceptBid awards the job to the chosen bid. The three effects — winner
// accepted, pending siblings rejected, job moved to in_progress with the
// contractor assigned — happen in one transaction or not at all.
func (s *BidService) AcceptBid(ctx context.Context, actor models.Actor, jobID, bidID uint) (*models.Bid, error) {
	var bid *models.Bid
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bid, err = s.acceptBidTx(ctx, tx, actor, jobID, bidID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("bid %d accepted on job %d, contractor %d assigned", bidID, jobID, bid.ContractorID)
	return bid, nil
}

// acceptBidTx runs the arbitration algorithm inside the caller's
// transaction. The lifecycle orchestrator reuses it so award and quote
// creation share one transactional boundary.
func (s *BidService) acceptBidTx(ctx context.Context, tx *gorm.DB, actor models.Actor, jobID, bidID uint) (*models.Bid, error) {
	bids := s.bids.WithTx(tx)
	jobs := s.jobs.WithTx(tx)

	bid, err := bids.GetByJobAndID(ctx, jobID, bidID)
	if err != nil {
		return nil, notFound(err)
	}
	job, err := jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireRequesterOf(actor, job); err != nil {
		return nil, err
	}
	if bid.Status != models.BidStatusPending {
		return nil, fmt.Errorf("bid %d is %s, not pending: %w", bidID, bid.Status, ErrInvalidState)
	}
	if job.Status != models.JobStatusOpen {
		return nil, fmt.Errorf("job %d is %s, not open: %w", jobID, job.Status, ErrInvalidState)
	}

	// Conditional update on the job row is the serialization point: a
	// concurrent award that committed first leaves the job no longer
	// open, and this caller loses the race.
	claimed, err := jobs.ClaimForAward(ctx, jobID, bid.ContractorID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("job %d was awarded concurrently: %w", jobID, ErrConcurrencyConflict)
	}

	if err := bids.UpdateStatus(ctx, bid.ID, models.BidStatusAccepted); err != nil {
		return nil, err
	}
	if err := bids.RejectPendingSiblings(ctx, jobID, bid.ID); err != nil {
		return nil, err
	}
	bid.Status = models.BidStatusAccepted
	return bid, nil
}

// RejectBid declines a pending bid with no side effects on the job
func (s *BidService) RejectBid(ctx context.Context, actor models.Actor, jobID, bidID uint) (*models.Bid, error) {
	bid, err := s.bids.GetByJobAndID(ctx, jobID, bidID)
	if err != nil {
		return nil, notFound(err)
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireRequesterOf(actor, job); err != nil {
		return nil, err
	}
	return s.decline(ctx, bid)
}

// WithdrawBid lets the bid's contractor pull a pending bid. Withdrawal is
// modeled as a transition to rejected; the contractor may then resubmit.
func (s *BidService) WithdrawBid(ctx context.Context, actor models.Actor, jobID, bidID uint) (*models.Bid, error) {
	bid, err := s.bids.GetByJobAndID(ctx, jobID, bidID)
	if err != nil {
		return nil, notFound(err)
	}
	if actor.Role != models.ActorRoleContractor || actor.ID != bid.ContractorID {
		return nil, fmt.Errorf("actor %d is not the contractor of bid %d: %w",
			actor.ID, bidID, ErrForbidden)
	}
	return s.decline(ctx, bid)
}

// ListBids returns the bids placed on a job
func (s *BidService) ListBids(ctx context.Context, jobID uint, opts models.ListOptions) ([]models.Bid, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, notFound(err)
	}
	return s.bids.ListByJob(ctx, jobID, opts)
}

func (s *BidService) decline(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	if bid.Status != models.BidStatusPending {
		return nil, fmt.Errorf("bid %d is %s, not pending: %w", bid.ID, bid.Status, ErrInvalidState)
	}
	if err := s.bids.UpdateStatus(ctx, bid.ID, models.BidStatusRejected); err != nil {
		return nil, err
	}
	bid.Status = models.BidStatusRejected
	return bid, nil
}
