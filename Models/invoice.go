package Models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoiceDraft         = "Draft"
	InvoiceIssued        = "Issued"
	InvoicePartiallyPaid = "PartiallyPaid"
	InvoicePaid          = "Paid"
	InvoiceCancelled     = "Cancelled"
)

type Invoice struct {
	gorm.Model
	InvoiceNo          string          `gorm:"uniqueIndex;size:50;not null" json:"invoice_no"`
	PatientID          uint            `gorm:"not null;index" json:"patient_id"`
	OdontogramID       uint            `gorm:"not null;index" json:"odontogram_id"`
	IssuedDate         time.Time       `gorm:"index" json:"issued_date"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"tax_rate"`
	Tax                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status             string          `gorm:"size:20;not null;default:'Issued'" json:"status"`
	CancellationReason string          `gorm:"type:text" json:"cancellation_reason,omitempty"`
	Lines              []InvoiceLine   `json:"lines,omitempty"`
	Payments           []Payment       `json:"payments,omitempty"`
}

// InvoiceLine is the billing projection of exactly one treatment entry, with
// its own price snapshot. Lines are never released, even on cancellation.
type InvoiceLine struct {
	gorm.Model
	InvoiceID        uint            `gorm:"not null;index" json:"invoice_id"`
	ToothTreatmentID uint            `gorm:"not null;index" json:"tooth_treatment_id"`
	ToothRecordID    *uint           `json:"tooth_record_id,omitempty"`
	Description      string          `gorm:"size:255" json:"description"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func NewInvoiceNumber() string {
	return "INV-" + uuid.NewString()
}

// RoundMoney rounds to 2 decimal places, half up. Shopspring's Round rounds
// half away from zero, which is half-up for the non-negative amounts this
// ledger deals in.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ComputeTotals applies the billing rounding policy: each line is rounded to
// 2 decimals before summation, and the taxed total is rounded once more.
// Tax is derived as total minus subtotal so the three published figures
// always add up exactly.
func ComputeTotals(prices []decimal.Decimal, rate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, price := range prices {
		subtotal = subtotal.Add(RoundMoney(price))
	}
	total = RoundMoney(subtotal.Mul(decimal.NewFromInt(1).Add(rate)))
	tax = total.Sub(subtotal)
	return subtotal, tax, total
}

// PaidAmount sums the invoice's recorded payments.
func (inv *Invoice) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.Total.Sub(inv.PaidAmount())
}

// Payable reports whether the invoice can accept payments in its current
// lifecycle state.
func (inv *Invoice) Payable() bool {
	return inv.Status == InvoiceIssued || inv.Status == InvoicePartiallyPaid
}

func GetInvoice(db *gorm.DB, id uint) (Invoice, error) {
	var invoice Invoice
	err := db.Preload("Lines").Preload("Payments").First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoice, Errf(ErrNotFound, "invoice %d not found", id)
		}
		return invoice, err
	}
	return invoice, nil
}
