package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fixbid/fixbid/internal/db/models"
)

// JobServiceTestSuite tests job posting and status management
type JobServiceTestSuite struct {
	ServiceTestSuite
}

func TestJobService(t *testing.T) {
	suite.Run(t, new(JobServiceTestSuite))
}

func (s *JobServiceTestSuite) TestPostJobDraftByDefault() {
	job, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{
		Title:       "Fix leaking faucet",
		Description: "Kitchen sink",
	})
	s.Require().NoError(err)
	s.Equal(models.JobStatusDraft, job.Status)
	s.Equal(s.requester.ID, job.RequesterID)
	s.Nil(job.ContractorID)
}

func (s *JobServiceTestSuite) TestPostJobOpen() {
	job := s.postOpenJob()
	s.Equal(models.JobStatusOpen, job.Status)
}

func (s *JobServiceTestSuite) TestPostJobRequiresRequesterRole() {
	_, err := s.jobSvc.PostJob(s.ctx, s.contractor, PostJobInput{Title: "Nope"})
	s.ErrorIs(err, ErrForbidden)
}

func (s *JobServiceTestSuite) TestPostJobValidatesInput() {
	_, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: ""})
	s.ErrorIs(err, ErrInvalidInput)

	budget := s.money("-5.00")
	_, err = s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: "Bad budget", Budget: &budget})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *JobServiceTestSuite) TestOpenJob() {
	job, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: "Fix fence"})
	s.Require().NoError(err)

	job, err = s.jobSvc.OpenJob(s.ctx, s.requester, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusOpen, job.Status)

	// Opening an already-open job is an invalid state
	_, err = s.jobSvc.OpenJob(s.ctx, s.requester, job.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *JobServiceTestSuite) TestOpenJobRequiresOwner() {
	job, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: "Fix fence"})
	s.Require().NoError(err)

	other := models.Actor{ID: 9, Role: models.ActorRoleRequester}
	_, err = s.jobSvc.OpenJob(s.ctx, other, job.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *JobServiceTestSuite) TestCancelJobRejectsPendingBids() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "120.00")
	other := s.submitBid(s.rival, job.ID, "130.00")

	job, err := s.jobSvc.CancelJob(s.ctx, s.requester, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusCancelled, job.Status)

	for _, id := range []uint{bid.ID, other.ID} {
		got, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, id)
		s.Require().NoError(err)
		s.Equal(models.BidStatusRejected, got.Status)
	}
}

func (s *JobServiceTestSuite) TestCancelJobOnlyBeforeAward() {
	job := s.awardedJob()

	_, err := s.jobSvc.CancelJob(s.ctx, s.requester, job.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *JobServiceTestSuite) TestGetJobNotFound() {
	_, err := s.jobSvc.GetJob(s.ctx, 9999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *JobServiceTestSuite) TestListJobs() {
	s.postOpenJob()
	s.postOpenJob()
	_, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: "Draft job"})
	s.Require().NoError(err)

	jobs, err := s.jobSvc.ListJobs(s.ctx, models.JobStatusOpen, 0, models.ListOptions{})
	s.Require().NoError(err)
	s.Len(jobs, 2)
}
