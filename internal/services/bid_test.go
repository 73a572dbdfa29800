package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fixbid/fixbid/internal/db/models"
)

// BidServiceTestSuite tests bid submission and arbitration
type BidServiceTestSuite struct {
	ServiceTestSuite
}

func TestBidService(t *testing.T) {
	suite.Run(t, new(BidServiceTestSuite))
}

func (s *BidServiceTestSuite) TestSubmitBid() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	s.Equal(models.BidStatusPending, bid.Status)
	s.Equal(s.contractor.ID, bid.ContractorID)
	s.True(bid.Amount.Equal(s.money("450.00")))
}

func (s *BidServiceTestSuite) TestSubmitBidRequiresContractorRole() {
	job := s.postOpenJob()
	_, err := s.bidSvc.SubmitBid(s.ctx, s.requester, job.ID, SubmitBidInput{Amount: s.money("450.00")})
	s.ErrorIs(err, ErrForbidden)
}

func (s *BidServiceTestSuite) TestSubmitBidRequiresPositiveAmount() {
	job := s.postOpenJob()
	_, err := s.bidSvc.SubmitBid(s.ctx, s.contractor, job.ID, SubmitBidInput{Amount: s.money("0")})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.bidSvc.SubmitBid(s.ctx, s.contractor, job.ID, SubmitBidInput{Amount: s.money("-1.00")})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *BidServiceTestSuite) TestSubmitBidRequiresOpenJob() {
	job, err := s.jobSvc.PostJob(s.ctx, s.requester, PostJobInput{Title: "Still a draft"})
	s.Require().NoError(err)

	_, err = s.bidSvc.SubmitBid(s.ctx, s.contractor, job.ID, SubmitBidInput{Amount: s.money("100.00")})
	s.ErrorIs(err, ErrInvalidState)
}

func (s *BidServiceTestSuite) TestSubmitDuplicateBid() {
	job := s.postOpenJob()
	s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.bidSvc.SubmitBid(s.ctx, s.contractor, job.ID, SubmitBidInput{Amount: s.money("400.00")})
	s.ErrorIs(err, ErrDuplicateBid)
}

func (s *BidServiceTestSuite) TestResubmitAfterWithdraw() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.bidSvc.WithdrawBid(s.ctx, s.contractor, job.ID, bid.ID)
	s.Require().NoError(err)

	// A withdrawn bid no longer blocks a fresh one
	s.submitBid(s.contractor, job.ID, "425.00")
}

func (s *BidServiceTestSuite) TestAcceptBidSingleWinner() {
	job := s.postOpenJob()
	winner := s.submitBid(s.contractor, job.ID, "450.00")
	loser := s.submitBid(s.rival, job.ID, "475.00")

	accepted, err := s.bidSvc.AcceptBid(s.ctx, s.requester, job.ID, winner.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusAccepted, accepted.Status)

	got, err := s.jobSvc.GetJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusInProgress, got.Status)
	s.Require().NotNil(got.ContractorID)
	s.Equal(s.contractor.ID, *got.ContractorID)

	rejected, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, loser.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusRejected, rejected.Status)
}

func (s *BidServiceTestSuite) TestAcceptBidRequiresRequester() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.bidSvc.AcceptBid(s.ctx, s.contractor, job.ID, bid.ID)
	s.ErrorIs(err, ErrForbidden)

	other := models.Actor{ID: 9, Role: models.ActorRoleRequester}
	_, err = s.bidSvc.AcceptBid(s.ctx, other, job.ID, bid.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *BidServiceTestSuite) TestAcceptSecondBidAfterAward() {
	job := s.postOpenJob()
	winner := s.submitBid(s.contractor, job.ID, "450.00")
	loser := s.submitBid(s.rival, job.ID, "475.00")

	_, err := s.bidSvc.AcceptBid(s.ctx, s.requester, job.ID, winner.ID)
	s.Require().NoError(err)

	// The losing bid was already rejected, so a second award attempt
	// fails before it ever reaches the job row.
	_, err = s.bidSvc.AcceptBid(s.ctx, s.requester, job.ID, loser.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *BidServiceTestSuite) TestAcceptBidLosesRaceOnClaimedJob() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	// Simulate a concurrent award that already committed: the job row is
	// taken by another contractor while the bid under arbitration is
	// still pending.
	claimed, err := s.jobRepo.ClaimForAward(s.ctx, job.ID, s.rival.ID)
	s.Require().NoError(err)
	s.Require().True(claimed)

	_, err = s.bidSvc.AcceptBid(s.ctx, s.requester, job.ID, bid.ID)
	s.ErrorIs(err, ErrInvalidState)

	got, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, bid.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusPending, got.Status)
}

func (s *BidServiceTestSuite) TestRejectBid() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	rejected, err := s.bidSvc.RejectBid(s.ctx, s.requester, job.ID, bid.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusRejected, rejected.Status)

	// Rejection leaves the job open for other bids
	got, err := s.jobSvc.GetJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusOpen, got.Status)

	// A rejected bid cannot be rejected again
	_, err = s.bidSvc.RejectBid(s.ctx, s.requester, job.ID, bid.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *BidServiceTestSuite) TestWithdrawBidRequiresOwner() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.bidSvc.WithdrawBid(s.ctx, s.rival, job.ID, bid.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *BidServiceTestSuite) TestWithdrawAcceptedBid() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.bidSvc.AcceptBid(s.ctx, s.requester, job.ID, bid.ID)
	s.Require().NoError(err)

	_, err = s.bidSvc.WithdrawBid(s.ctx, s.contractor, job.ID, bid.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *BidServiceTestSuite) TestListBids() {
	job := s.postOpenJob()
	s.submitBid(s.contractor, job.ID, "450.00")
	s.submitBid(s.rival, job.ID, "475.00")

	bids, err := s.bidSvc.ListBids(s.ctx, job.ID, models.ListOptions{})
	s.Require().NoError(err)
	s.Len(bids, 2)

	_, err = s.bidSvc.ListBids(s.ctx, 9999, models.ListOptions{})
	s.ErrorIs(err, ErrNotFound)
}
