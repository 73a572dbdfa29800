package repos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fixbid/fixbid/internal/db/models"
)

// InvoiceRepositoryTestSuite tests the invoice repository
type InvoiceRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestInvoiceRepository(t *testing.T) {
	suite.Run(t, new(InvoiceRepositoryTestSuite))
}

func (s *InvoiceRepositoryTestSuite) TestCreateAndGet() {
	job := s.createTestJob(models.JobStatusInProgress)
	invoice := s.createTestInvoice(job.ID, nil)

	got, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.Equal(invoice.Number, got.Number)
	s.Require().Len(got.LineItems, 2)
	s.True(got.Total.Equal(s.money("780.00")))
	s.True(got.AmountPaid.IsZero())
	s.Nil(got.QuoteID)
}

func (s *InvoiceRepositoryTestSuite) TestCreateRejectsOverpaid() {
	job := s.createTestJob(models.JobStatusInProgress)
	invoice := &models.Invoice{
		Number:       "INV-OVER001",
		Title:        "Overpaid",
		JobID:        job.ID,
		RequesterID:  1,
		ContractorID: 2,
		Status:       models.InvoiceStatusDraft,
		Subtotal:     s.money("100.00"),
		Total:        s.money("100.00"),
		AmountPaid:   s.money("150.00"),
	}
	err := s.invoiceRepo.Create(s.ctx, invoice)
	s.Error(err)
}

func (s *InvoiceRepositoryTestSuite) TestExistsForQuote() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := s.createTestQuote(job.ID)

	exists, err := s.invoiceRepo.ExistsForQuote(s.ctx, quote.ID)
	s.Require().NoError(err)
	s.False(exists)

	s.createTestInvoice(job.ID, &quote.ID)

	exists, err = s.invoiceRepo.ExistsForQuote(s.ctx, quote.ID)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *InvoiceRepositoryTestSuite) TestQuoteIDUniqueIndex() {
	job := s.createTestJob(models.JobStatusInProgress)
	quote := s.createTestQuote(job.ID)
	s.createTestInvoice(job.ID, &quote.ID)

	dup := &models.Invoice{
		Number:       "INV-DUP0001",
		Title:        "Duplicate conversion",
		JobID:        job.ID,
		RequesterID:  1,
		ContractorID: 2,
		QuoteID:      &quote.ID,
		Status:       models.InvoiceStatusDraft,
		Subtotal:     s.money("780.00"),
		Total:        s.money("780.00"),
		AmountPaid:   decimal.Zero,
	}
	err := s.invoiceRepo.Create(s.ctx, dup)
	s.Error(err)
}

func (s *InvoiceRepositoryTestSuite) TestCountUnpaidByJob() {
	job := s.createTestJob(models.JobStatusInProgress)

	count, err := s.invoiceRepo.CountUnpaidByJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Zero(count)

	invoice := s.createTestInvoice(job.ID, nil)

	count, err = s.invoiceRepo.CountUnpaidByJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	got, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	got.Status = models.InvoiceStatusPaid
	got.AmountPaid = got.Total
	got.LineItems = nil
	s.Require().NoError(s.invoiceRepo.Update(s.ctx, got))

	count, err = s.invoiceRepo.CountUnpaidByJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *InvoiceRepositoryTestSuite) TestApplyPayment() {
	job := s.createTestJob(models.JobStatusInProgress)
	invoice := s.createTestInvoice(job.ID, nil)
	invoice.Status = models.InvoiceStatusSent
	invoice.LineItems = nil
	s.Require().NoError(s.invoiceRepo.Update(s.ctx, invoice))

	first, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	second, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)

	// First payment applies against the observed base
	prevPaid, prevStatus := first.AmountPaid, first.Status
	first.AmountPaid = s.money("300.00")
	applied, err := s.invoiceRepo.ApplyPayment(s.ctx, first, prevPaid, prevStatus)
	s.Require().NoError(err)
	s.True(applied)

	// A concurrent payment still holding the stale base is refused
	stalePaid, staleStatus := second.AmountPaid, second.Status
	second.AmountPaid = s.money("150.00")
	applied, err = s.invoiceRepo.ApplyPayment(s.ctx, second, stalePaid, staleStatus)
	s.Require().NoError(err)
	s.False(applied)

	got, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.True(got.AmountPaid.Equal(s.money("300.00")), "amount_paid was %s", got.AmountPaid)
}

func (s *InvoiceRepositoryTestSuite) TestListByJob() {
	job := s.createTestJob(models.JobStatusInProgress)
	other := s.createTestJob(models.JobStatusInProgress)
	s.createTestInvoice(job.ID, nil)

	invoices, err := s.invoiceRepo.ListByJob(s.ctx, job.ID, models.ListOptions{})
	s.Require().NoError(err)
	s.Len(invoices, 1)

	invoices, err = s.invoiceRepo.ListByJob(s.ctx, other.ID, models.ListOptions{})
	s.Require().NoError(err)
	s.Empty(invoices)
}

func (s *InvoiceRepositoryTestSuite) TestRemoveLineItem() {
	job := s.createTestJob(models.JobStatusInProgress)
	invoice := s.createTestInvoice(job.ID, nil)

	got, err := s.invoiceRepo.GetByID(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.Require().Len(got.LineItems, 2)

	removed, err := s.invoiceRepo.RemoveLineItem(s.ctx, invoice.ID, got.LineItems[0].ID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.invoiceRepo.RemoveLineItem(s.ctx, invoice.ID, got.LineItems[0].ID)
	s.Require().NoError(err)
	s.False(removed)
}
