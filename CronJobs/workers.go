package CronJobs

import (
	"fmt"
	"log"
	"time"

	"DentaLedger/Models"
	"DentaLedger/SSE"

	"github.com/go-co-op/gocron"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerAuditor re-verifies the billing invariants over the whole store:
// invoice totals must match their lines, payments must never exceed totals,
// and no treatment may be claimed by two live invoices.
type LedgerAuditor struct {
	DB *gorm.DB
}

func NewLedgerAuditor(db *gorm.DB) *LedgerAuditor {
	return &LedgerAuditor{
		DB: db,
	}
}

// StartAuditCron schedules the nightly audit.
func (la *LedgerAuditor) StartAuditCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Day().At("02:30").Do(func() {
		log.Println("Running ledger audit...")
		if problems, err := la.Audit(); err != nil {
			log.Printf("Ledger audit failed: %v", err)
		} else if len(problems) > 0 {
			for _, p := range problems {
				log.Printf("Ledger audit finding: %s", p)
			}
			SSE.Broadcaster.Publish(SSE.Event{Entity: "audit", Action: "findings"})
		}
	})

	scheduler.StartAsync()
	log.Println("Ledger audit cron job started")

	return scheduler
}

// Audit returns a description of every invariant violation it finds. A clean
// ledger returns an empty slice.
func (la *LedgerAuditor) Audit() ([]string, error) {
	var problems []string

	var invoices []Models.Invoice
	if err := la.DB.Preload("Lines").Preload("Payments").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	for _, invoice := range invoices {
		lineSum := decimal.Zero
		for _, line := range invoice.Lines {
			lineSum = lineSum.Add(line.Price)
		}
		if !lineSum.Equal(invoice.Subtotal) {
			problems = append(problems, fmt.Sprintf("invoice %s: line sum %s != subtotal %s", invoice.InvoiceNo, lineSum, invoice.Subtotal))
		}
		if !invoice.Subtotal.Add(invoice.Tax).Equal(invoice.Total) {
			problems = append(problems, fmt.Sprintf("invoice %s: subtotal %s + tax %s != total %s", invoice.InvoiceNo, invoice.Subtotal, invoice.Tax, invoice.Total))
		}

		paid := invoice.PaidAmount()
		if paid.GreaterThan(invoice.Total) {
			problems = append(problems, fmt.Sprintf("invoice %s: payments %s exceed total %s", invoice.InvoiceNo, paid, invoice.Total))
		}
		if invoice.Status == Models.InvoicePaid && !paid.Equal(invoice.Total) {
			problems = append(problems, fmt.Sprintf("invoice %s: marked Paid but balance is %s", invoice.InvoiceNo, invoice.Total.Sub(paid)))
		}
		if invoice.Status == Models.InvoicePartiallyPaid && (paid.IsZero() || paid.GreaterThanOrEqual(invoice.Total)) {
			problems = append(problems, fmt.Sprintf("invoice %s: marked PartiallyPaid but paid %s of %s", invoice.InvoiceNo, paid, invoice.Total))
		}
		if invoice.Status == Models.InvoiceCancelled && invoice.CancellationReason == "" {
			problems = append(problems, fmt.Sprintf("invoice %s: cancelled without a reason", invoice.InvoiceNo))
		}
	}

	// A treatment claimed by two live (non-cancelled) invoices means a failed
	// claim slipped through; this must never happen.
	type claimRow struct {
		ToothTreatmentID uint
		Count            int64
	}
	var doubleClaims []claimRow
	err := la.DB.Model(&Models.InvoiceLine{}).
		Select("invoice_lines.tooth_treatment_id as tooth_treatment_id, count(*) as count").
		Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id AND invoices.status <> ?", Models.InvoiceCancelled).
		Group("invoice_lines.tooth_treatment_id").
		Having("count(*) > 1").
		Scan(&doubleClaims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan for double claims: %w", err)
	}
	for _, row := range doubleClaims {
		problems = append(problems, fmt.Sprintf("treatment %d is claimed by %d live invoices", row.ToothTreatmentID, row.Count))
	}

	return problems, nil
}
