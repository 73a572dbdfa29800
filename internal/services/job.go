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

// JobService provides business logic for posting and managing jobs
type JobService struct {
	db   *gorm.DB
	jobs *repos.JobRepository
	bids *repos.BidRepository
}

// NewJobService creates a new job service instance
func NewJobService(db *gorm.DB, jobs *repos.JobRepository, bids *repos.BidRepository) *JobService {
	return &JobService{db: db, jobs: jobs, bids: bids}
}

// PostJobInput carries the caller-supplied fields for a new job
type PostJobInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Open        bool             `json:"open"` // post directly as open instead of draft
}

// PostJob creates a job in draft or open status for the requester
func (s *JobService) PostJob(ctx context.Context, actor models.Actor, in PostJobInput) (*models.Job, error) {
	if actor.Role != models.ActorRoleRequester {
		return nil, fmt.Errorf("only a requester may post a job: %w", ErrForbidden)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if in.Budget != nil && in.Budget.Sign() <= 0 {
		return nil, fmt.Errorf("budget must be positive: %w", ErrInvalidInput)
	}

	status := models.JobStatusDraft
	if in.Open {
		status = models.JobStatusOpen
	}
	job := &models.Job{
		Title:       in.Title,
		Description: in.Description,
		RequesterID: actor.ID,
		Status:      status,
		Budget:      in.Budget,
		Tags:        in.Tags,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	logger.Infof("job %d posted by requester %d as %s", job.ID, actor.ID, job.Status)
	return job, nil
}

// GetJob retrieves a job by its ID
func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

// ListJobs retrieves a paginated list of jobs
func (s *JobService) ListJobs(ctx context.Context, status models.JobStatus, requesterID uint, opts models.ListOptions) ([]models.Job, error) {
	return s.jobs.List(ctx, status, requesterID, opts)
}

// OpenJob publishes a draft job so contractors can bid on it
func (s *JobService) OpenJob(ctx context.Context, actor models.Actor, jobID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := requireRequesterOf(actor, job); err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusDraft {
		return nil, fmt.Errorf("job %d is %s, not draft: %w", jobID, job.Status, ErrInvalidState)
	}
	moved, err := s.jobs.TransitionStatus(ctx, jobID, models.JobStatusOpen, models.JobStatusDraft)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("job %d changed concurrently: %w", jobID, ErrConcurrencyConflict)
	}
	job.Status = models.JobStatusOpen
	return job, nil
}

// CancelJob withdraws a job before award. Cancellation is only possible
// from draft or open; any still-pending bids are rejected in the same
// transaction so none is left against a cancelled job.
func (s *JobService) CancelJob(ctx context.Context, actor models.Actor, jobID uint) (*models.Job, error) {
	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.jobs.WithTx(tx).GetByID(ctx, jobID)
		if err != nil {
			return notFound(err)
		}
		if err := requireRequesterOf(actor, job); err != nil {
			return err
		}
		if job.Status != models.JobStatusDraft && job.Status != models.JobStatusOpen {
			return fmt.Errorf("job %d is %s and can no longer be cancelled: %w",
				jobID, job.Status, ErrInvalidState)
		}
		// Conditional write: a concurrent award committing after the read
		// above leaves the job no longer draft/open, and the cancel loses.
		moved, err := s.jobs.WithTx(tx).TransitionStatus(ctx, jobID,
			models.JobStatusCancelled, models.JobStatusDraft, models.JobStatusOpen)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("job %d was awarded concurrently and can no longer be cancelled: %w",
				jobID, ErrConcurrencyConflict)
		}
		job.Status = models.JobStatusCancelled
		return s.bids.WithTx(tx).RejectAllPending(ctx, jobID)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("job %d cancelled by requester %d", jobID, actor.ID)
	return job, nil
}

// requireRequesterOf checks that the actor is the job's requester
func requireRequesterOf(actor models.Actor, job *models.Job) error {
	if actor.Role != models.ActorRoleRequester || actor.ID != job.RequesterID {
		return fmt.Errorf("actor %d is not the requester of job %d: %w",
			actor.ID, job.ID, ErrForbidden)
	}
	return nil
}

// notFound wraps a repository lookup failure as the NotFound kind while
// preserving the underlying cause.
func notFound(err error) error {
	return fmt.Errorf("%w: %v", ErrNotFound, err)
}
