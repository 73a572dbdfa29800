package repos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fixbid/fixbid/internal/db/models"
)

// QuoteRepositoryTestSuite tests the quote repository
type QuoteRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestQuoteRepository(t *testing.T) {
	suite.Run(t, new(QuoteRepositoryTestSuite))
}

func (s *QuoteRepositoryTestSuite) TestCreateAndGetWithLineItems() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := s.createTestQuote(job.ID)

	got, err := s.quoteRepo.GetByID(s.ctx, quote.ID)
	s.Require().NoError(err)
	s.Equal(quote.Number, got.Number)
	s.Require().Len(got.LineItems, 2)
	// Line items come back ordered by sort_order
	s.Equal("Labor", got.LineItems[0].Description)
	s.Equal("Parts", got.LineItems[1].Description)
	s.True(got.LineItems[0].Total.Equal(s.money("360.00")))
}

func (s *QuoteRepositoryTestSuite) TestCreateRejectsInvalidLineItem() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := &models.Quote{
		Number:       "QT-BAD00001",
		Title:        "Bad quote",
		JobID:        job.ID,
		RequesterID:  1,
		ContractorID: 2,
		Status:       models.QuoteStatusDraft,
		LineItems: []models.QuoteLineItem{
			{Description: "", Quantity: s.money("1"), UnitPrice: s.money("10.00")},
		},
	}
	err := s.quoteRepo.Create(s.ctx, quote)
	s.Error(err)
}

func (s *QuoteRepositoryTestSuite) TestAddAndRemoveLineItem() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := s.createTestQuote(job.ID)

	item := &models.QuoteLineItem{
		QuoteID:     quote.ID,
		Description: "Disposal fee",
		Quantity:    s.money("1"),
		UnitPrice:   s.money("25.00"),
		Total:       s.money("25.00"),
		SortOrder:   3,
	}
	s.Require().NoError(s.quoteRepo.AddLineItem(s.ctx, item))

	got, err := s.quoteRepo.GetByID(s.ctx, quote.ID)
	s.Require().NoError(err)
	s.Len(got.LineItems, 3)

	removed, err := s.quoteRepo.RemoveLineItem(s.ctx, quote.ID, item.ID)
	s.Require().NoError(err)
	s.True(removed)

	// Removing the same item again reports nothing deleted
	removed, err = s.quoteRepo.RemoveLineItem(s.ctx, quote.ID, item.ID)
	s.Require().NoError(err)
	s.False(removed)

	// An item ID from another quote is not removable through this quote
	removed, err = s.quoteRepo.RemoveLineItem(s.ctx, quote.ID+1, got.LineItems[0].ID)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *QuoteRepositoryTestSuite) TestListByJob() {
	job := s.createTestJob(models.JobStatusInProgress)
	s.createTestQuote(job.ID)

	other := s.createTestJob(models.JobStatusInProgress)
	q2 := &models.Quote{
		Number:       "QT-TEST0002",
		Title:        "Other work",
		JobID:        other.ID,
		RequesterID:  1,
		ContractorID: 2,
		Status:       models.QuoteStatusDraft,
	}
	s.Require().NoError(s.quoteRepo.Create(s.ctx, q2))

	quotes, err := s.quoteRepo.ListByJob(s.ctx, job.ID, models.ListOptions{})
	s.Require().NoError(err)
	s.Len(quotes, 1)
	s.Equal("QT-TEST0001", quotes[0].Number)
}

func (s *QuoteRepositoryTestSuite) TestListExpirable() {
	job := s.createTestJob(models.JobStatusInProgress)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	stale := &models.Quote{
		Number: "QT-STALE001", Title: "Stale", JobID: job.ID,
		RequesterID: 1, ContractorID: 2,
		Status: models.QuoteStatusSent, ValidUntil: &past,
	}
	fresh := &models.Quote{
		Number: "QT-FRESH001", Title: "Fresh", JobID: job.ID,
		RequesterID: 1, ContractorID: 2,
		Status: models.QuoteStatusSent, ValidUntil: &future,
	}
	accepted := &models.Quote{
		Number: "QT-DONE0001", Title: "Done", JobID: job.ID,
		RequesterID: 1, ContractorID: 2,
		Status: models.QuoteStatusAccepted, ValidUntil: &past,
	}
	open := &models.Quote{
		Number: "QT-OPEN0001", Title: "No deadline", JobID: job.ID,
		RequesterID: 1, ContractorID: 2,
		Status: models.QuoteStatusSent,
	}
	for _, q := range []*models.Quote{stale, fresh, accepted, open} {
		s.Require().NoError(s.quoteRepo.Create(s.ctx, q))
	}

	expirable, err := s.quoteRepo.ListExpirable(s.ctx, now)
	s.Require().NoError(err)
	s.Require().Len(expirable, 1)
	s.Equal("QT-STALE001", expirable[0].Number)
}

func (s *QuoteRepositoryTestSuite) TestUpdateDoesNotTouchLineItems() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := s.createTestQuote(job.ID)

	got, err := s.quoteRepo.GetByID(s.ctx, quote.ID)
	s.Require().NoError(err)

	got.Notes = "Updated notes"
	got.LineItems = nil
	s.Require().NoError(s.quoteRepo.Update(s.ctx, got))

	reread, err := s.quoteRepo.GetByID(s.ctx, quote.ID)
	s.Require().NoError(err)
	s.Equal("Updated notes", reread.Notes)
	s.Len(reread.LineItems, 2)
}
