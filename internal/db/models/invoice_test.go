package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceEffectiveStatus(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		status  InvoiceStatus
		dueDate *time.Time
		want    InvoiceStatus
	}{
		{"sent before due date", InvoiceStatusSent, &future, InvoiceStatusSent},
		{"sent past due date", InvoiceStatusSent, &past, InvoiceStatusOverdue},
		{"viewed past due date", InvoiceStatusViewed, &past, InvoiceStatusOverdue},
		{"paid past due date", InvoiceStatusPaid, &past, InvoiceStatusPaid},
		{"draft past due date", InvoiceStatusDraft, &past, InvoiceStatusOverdue},
		{"sent without due date", InvoiceStatusSent, nil, InvoiceStatusSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invoice{Status: tt.status, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, inv.EffectiveStatus(now))
		})
	}
}

func TestInvoiceValidate(t *testing.T) {
	total := decimal.RequireFromString("100.00")

	ok := Invoice{Total: total, AmountPaid: decimal.RequireFromString("60.00"), Status: InvoiceStatusSent}
	assert.NoError(t, ok.Validate())

	over := Invoice{Total: total, AmountPaid: decimal.RequireFromString("100.01"), Status: InvoiceStatusSent}
	assert.Error(t, over.Validate())

	negative := Invoice{Total: total, AmountPaid: decimal.RequireFromString("-1"), Status: InvoiceStatusSent}
	assert.Error(t, negative.Validate())

	paidShort := Invoice{Total: total, AmountPaid: decimal.RequireFromString("99.99"), Status: InvoiceStatusPaid}
	assert.Error(t, paidShort.Validate())

	paidExact := Invoice{Total: total, AmountPaid: total, Status: InvoiceStatusPaid}
	assert.NoError(t, paidExact.Validate())
}

func TestQuoteExpirable(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	sentLapsed := Quote{Status: QuoteStatusSent, ValidUntil: &past}
	assert.True(t, sentLapsed.Expirable(now))

	viewedLapsed := Quote{Status: QuoteStatusViewed, ValidUntil: &past}
	assert.True(t, viewedLapsed.Expirable(now))

	sentCurrent := Quote{Status: QuoteStatusSent, ValidUntil: &future}
	assert.False(t, sentCurrent.Expirable(now))

	draftLapsed := Quote{Status: QuoteStatusDraft, ValidUntil: &past}
	assert.False(t, draftLapsed.Expirable(now))

	acceptedLapsed := Quote{Status: QuoteStatusAccepted, ValidUntil: &past}
	assert.False(t, acceptedLapsed.Expirable(now))

	noDeadline := Quote{Status: QuoteStatusSent}
	assert.False(t, noDeadline.Expirable(now))
}
