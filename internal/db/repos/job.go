package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/db/models"
)

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *JobRepository) WithTx(tx *gorm.DB) *JobRepository {
	return &JobRepository{db: tx}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// Update saves an existing job in the database
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	return r.db.WithContext(ctx).Save(job).Error
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %d not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns a page of jobs, optionally filtered by status and requester
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, requesterID uint, opts models.ListOptions) ([]models.Job, error) {
	opts = opts.WithDefaults()
	var jobs []models.Job
	qry := &models.Job{}

	// If status is unknown, we don't need to filter by status
	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	if requesterID != 0 {
		qry.RequesterID = requesterID
	}

	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where(qry).
		Limit(opts.Limit).Offset(opts.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	return jobs, err
}

// ClaimForAward transitions the job from open to in_progress and assigns
// the winning contractor in a single conditional statement. It reports
// false when the job was no longer open, which is how a concurrent caller
// loses the award race.
func (r *JobRepository) ClaimForAward(ctx context.Context, jobID, contractorID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, models.JobStatusOpen).
		Updates(map[string]interface{}{
			"status":        models.JobStatusInProgress,
			"contractor_id": contractorID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim job for award: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// TransitionStatus moves the job to the target status only while the row
// is still in one of the expected source statuses. It reports false when
// the job changed underneath the caller, so a stale cancel or publish
// cannot clobber a concurrent award.
func (r *JobRepository) TransitionStatus(ctx context.Context, jobID uint, to models.JobStatus, from ...models.JobStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status IN ?", jobID, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition job status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus sets the job status without touching other fields
func (r *JobRepository) UpdateStatus(ctx context.Context, id uint, status models.JobStatus) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Update("status", status).Error
}
