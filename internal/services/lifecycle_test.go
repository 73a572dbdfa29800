package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fixbid/fixbid/internal/db/models"
)

// LifecycleServiceTestSuite tests the cross-service orchestration
type LifecycleServiceTestSuite struct {
	ServiceTestSuite
}

func TestLifecycleService(t *testing.T) {
	suite.Run(t, new(LifecycleServiceTestSuite))
}

func (s *LifecycleServiceTestSuite) TestAwardAndQuote() {
	job := s.postOpenJob()
	winner := s.submitBid(s.contractor, job.ID, "450.00")
	loser := s.submitBid(s.rival, job.ID, "475.00")

	quote, err := s.lifecycle.AwardAndQuote(s.ctx, s.requester, job.ID, winner.ID, s.standardQuoteInput())
	s.Require().NoError(err)

	s.Equal(models.QuoteStatusDraft, quote.Status)
	s.Equal(s.contractor.ID, quote.ContractorID)
	s.True(quote.Total.Equal(s.money("313.14")), "total was %s", quote.Total)

	got, err := s.jobSvc.GetJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusInProgress, got.Status)

	accepted, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, winner.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusAccepted, accepted.Status)

	rejected, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, loser.ID)
	s.Require().NoError(err)
	s.Equal(models.BidStatusRejected, rejected.Status)
}

func (s *LifecycleServiceTestSuite) TestAwardAndQuoteDefaultsTitle() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	in := s.standardQuoteInput()
	in.Title = ""
	quote, err := s.lifecycle.AwardAndQuote(s.ctx, s.requester, job.ID, bid.ID, in)
	s.Require().NoError(err)
	s.Equal(job.Title, quote.Title)
}

func (s *LifecycleServiceTestSuite) TestAwardAndQuoteRollsBackOnBadQuote() {
	job := s.postOpenJob()
	winner := s.submitBid(s.contractor, job.ID, "450.00")
	loser := s.submitBid(s.rival, job.ID, "475.00")

	in := s.standardQuoteInput()
	in.LineItems[0].UnitPrice = s.money("-1.00")
	_, err := s.lifecycle.AwardAndQuote(s.ctx, s.requester, job.ID, winner.ID, in)
	s.ErrorIs(err, ErrInvalidInput)

	// The failed quote rolled the award back with it
	got, err := s.jobSvc.GetJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusOpen, got.Status)
	s.Nil(got.ContractorID)

	for _, id := range []uint{winner.ID, loser.ID} {
		bid, err := s.bidRepo.GetByJobAndID(s.ctx, job.ID, id)
		s.Require().NoError(err)
		s.Equal(models.BidStatusPending, bid.Status)
	}

	quotes, err := s.quoteRepo.ListByJob(s.ctx, job.ID, models.ListOptions{})
	s.Require().NoError(err)
	s.Empty(quotes)
}

func (s *LifecycleServiceTestSuite) TestAwardAndQuoteRequiresRequester() {
	job := s.postOpenJob()
	bid := s.submitBid(s.contractor, job.ID, "450.00")

	_, err := s.lifecycle.AwardAndQuote(s.ctx, s.contractor, job.ID, bid.ID, s.standardQuoteInput())
	s.ErrorIs(err, ErrForbidden)
}

func (s *LifecycleServiceTestSuite) TestSettleInvoiceThenCompleteJob() {
	job := s.awardedJob()
	invoice := s.sentInvoice(job) // total 313.14

	// Completion is blocked while the invoice is unsettled
	_, err := s.lifecycle.CompleteJob(s.ctx, s.requester, job.ID)
	s.ErrorIs(err, ErrInvalidState)

	invoice, err = s.lifecycle.SettleInvoice(s.ctx, s.requester, invoice.ID, s.money("313.14"))
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusPaid, invoice.Status)

	job, err = s.lifecycle.CompleteJob(s.ctx, s.requester, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusCompleted, job.Status)
}

func (s *LifecycleServiceTestSuite) TestCompleteJobByContractor() {
	job := s.awardedJob()

	job, err := s.lifecycle.CompleteJob(s.ctx, s.contractor, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusCompleted, job.Status)
}

func (s *LifecycleServiceTestSuite) TestCompleteJobRequiresParty() {
	job := s.awardedJob()

	_, err := s.lifecycle.CompleteJob(s.ctx, s.rival, job.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *LifecycleServiceTestSuite) TestCompleteJobRequiresInProgress() {
	job := s.postOpenJob()

	_, err := s.lifecycle.CompleteJob(s.ctx, s.requester, job.ID)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *LifecycleServiceTestSuite) TestSettleInvoicePartial() {
	job := s.awardedJob()
	invoice := s.sentInvoice(job)

	invoice, err := s.lifecycle.SettleInvoice(s.ctx, s.requester, invoice.ID, s.money("100.00"))
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusSent, invoice.Status)

	// Still one unsettled invoice on the job
	_, err = s.lifecycle.CompleteJob(s.ctx, s.requester, job.ID)
	s.ErrorIs(err, ErrInvalidState)
}
