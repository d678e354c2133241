package Models

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheque   = "cheque"
)

// Payment rows are append-only; none are edited or deleted once recorded.
type Payment struct {
	gorm.Model
	InvoiceID uint            `gorm:"not null;index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string          `gorm:"size:20;not null" json:"method"`
	PaidDate  time.Time       `json:"paid_date"`
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

// invoiceLocks serializes payment registration and cancellation per invoice.
// Different invoices proceed in parallel.
var invoiceLocks sync.Map

// LockInvoice acquires the mutex for one invoice and returns it locked; the
// caller must Unlock it.
func LockInvoice(invoiceID uint) *sync.Mutex {
	entry, _ := invoiceLocks.LoadOrStore(invoiceID, &sync.Mutex{})
	mu := entry.(*sync.Mutex)
	mu.Lock()
	return mu
}

// SettleStatus recomputes the invoice status from its balance after a
// payment: zero balance means Paid, anything between zero and total means
// PartiallyPaid.
func SettleStatus(total, paid decimal.Decimal) string {
	if paid.GreaterThanOrEqual(total) {
		return InvoicePaid
	}
	if paid.GreaterThan(decimal.Zero) {
		return InvoicePartiallyPaid
	}
	return InvoiceIssued
}
