package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
)

// BidRepository provides access to bid-related database operations
type BidRepository struct {
	db *gorm.DB
}

// NewBidRepository creates a new bid repository instance
func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *BidRepository) WithTx(tx *gorm.DB) *BidRepository {
	return &BidRepository{db: tx}
}

// Create creates a new bid in the database
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	if err := bid.Validate(); err != nil {
		return fmt.Errorf("invalid bid: %w", err)
	}
	return r.db.WithContext(ctx).Create(bid).Error
}

// GetByJobAndID retrieves a bid by its ID, scoped to the given job
func (r *BidRepository) GetByJobAndID(ctx context.Context, jobID, bidID uint) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where(&models.Bid{JobID: jobID}).
		First(&bid, bidID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("bid %d not found on job %d: %w", bidID, jobID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// ListByJob returns all bids placed on a job, newest first
func (r *BidRepository) ListByJob(ctx context.Context, jobID uint, opts models.ListOptions) ([]models.Bid, error) {
	opts = opts.WithDefaults()
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where(&models.Bid{JobID: jobID}).
		Limit(opts.Limit).Offset(opts.Offset).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

// HasActiveBid reports whether the contractor already has a non-rejected
// bid on the job. A contractor may resubmit only after a prior bid was
// rejected or withdrawn.
func (r *BidRepository) HasActiveBid(ctx context.Context, jobID, contractorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("job_id = ? AND contractor_id = ? AND status <> ?",
			jobID, contractorID, models.BidStatusRejected).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for active bid: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus sets the status of a single bid
func (r *BidRepository) UpdateStatus(ctx context.Context, bidID uint, status models.BidStatus) error {
	return r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ?", bidID).
		Update("status", status).Error
}

// RejectPendingSiblings rejects every still-pending bid on the job except
// the winning one, so no bid remains pending after award.
func (r *BidRepository) RejectPendingSiblings(ctx context.Context, jobID, winnerBidID uint) error {
	return r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("job_id = ? AND id <> ? AND status = ?",
			jobID, winnerBidID, models.BidStatusPending).
		Update("status", models.BidStatusRejected).Error
}

// RejectAllPending rejects every pending bid on the job. Used when a job
// is cancelled so no bid is left dangling.
func (r *BidRepository) RejectAllPending(ctx context.Context, jobID uint) error {
	return r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("job_id = ? AND status = ?", jobID, models.BidStatusPending).
		Update("status", models.BidStatusRejected).Error
}
