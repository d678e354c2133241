package Controllers

import (
	"net/http"
	"time"

	"DentaLedger/Models"
	"DentaLedger/SSE"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type invoicePreviewLine struct {
	TreatmentID   uint            `json:"treatment_id"`
	ToothRecordID *uint           `json:"tooth_record_id,omitempty"`
	IsGlobal      bool            `json:"is_global_treatment"`
	Code          string          `json:"treatment_code"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
}

func previewLines(treatments []Models.ToothTreatment) ([]invoicePreviewLine, []decimal.Decimal) {
	var lines []invoicePreviewLine
	var prices []decimal.Decimal
	for _, t := range treatments {
		lines = append(lines, invoicePreviewLine{
			TreatmentID:   t.ID,
			ToothRecordID: t.ToothRecordID,
			IsGlobal:      t.IsGlobalTreatment(),
			Code:          t.TreatmentCode,
			Description:   t.TreatmentName,
			Price:         Models.RoundMoney(t.Price),
		})
		prices = append(prices, t.Price)
	}
	return lines, prices
}

// PreviewInvoice projects the billable set for a chart: every completed,
// not-yet-invoiced treatment entry, with computed totals. Read-only and
// repeatable; nothing is claimed until commit.
func PreviewInvoice(c *gin.Context) {
	var input struct {
		OdontogramID uint `json:"odontogram_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var chart Models.Odontogram
	if err := Models.DB.First(&chart, input.OdontogramID).Error; err != nil {
		respondError(c, Models.Errf(Models.ErrNotFound, "odontogram %d not found", input.OdontogramID))
		return
	}

	treatments, err := Models.EligibleTreatments(Models.DB, chart.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, prices := previewLines(treatments)
	rate := Models.CurrentTaxRate()
	subtotal, tax, total := Models.ComputeTotals(prices, rate)

	c.JSON(http.StatusOK, gin.H{
		"odontogram_id": chart.ID,
		"patient_id":    chart.PatientID,
		"lines":         lines,
		"subtotal":      subtotal,
		"tax_rate":      rate,
		"tax":           tax,
		"total":         total,
	})
}

// CommitInvoice turns a preview selection into an Issued invoice. Empty
// treatment_ids means "bill everything eligible". Every selected entry is
// claimed by a conditional update inside the transaction; if any claim fails
// because another commit got there first, the whole invoice rolls back and
// the caller gets StaleLine.
func CommitInvoice(c *gin.Context) {
	var input struct {
		OdontogramID uint   `json:"odontogram_id" binding:"required"`
		TreatmentIDs []uint `json:"treatment_ids"`
		IssuedDate   string `json:"issued_date"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issuedDate := time.Now()
	if input.IssuedDate != "" {
		var err error
		issuedDate, err = parseDate(input.IssuedDate)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var chart Models.Odontogram
	if err := tx.First(&chart, input.OdontogramID).Error; err != nil {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrNotFound, "odontogram %d not found", input.OdontogramID))
		return
	}

	var selected []Models.ToothTreatment
	if len(input.TreatmentIDs) == 0 {
		var err error
		selected, err = Models.EligibleTreatments(tx, chart.ID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(selected) == 0 {
			tx.Rollback()
			respondError(c, Models.Errf(Models.ErrEmptySelection, "odontogram %d has no billable treatments", chart.ID))
			return
		}
	} else {
		for _, id := range input.TreatmentIDs {
			var treatment Models.ToothTreatment
			if err := tx.First(&treatment, id).Error; err != nil {
				tx.Rollback()
				respondError(c, Models.Errf(Models.ErrNotFound, "treatment %d not found", id))
				return
			}
			if treatment.OdontogramID != chart.ID {
				tx.Rollback()
				respondError(c, Models.Errf(Models.ErrValidation, "treatment %d does not belong to odontogram %d", id, chart.ID))
				return
			}
			if !treatment.IsCompleted {
				tx.Rollback()
				respondError(c, Models.Errf(Models.ErrInvalidState, "treatment %d is not completed", id))
				return
			}
			if treatment.InvoiceID != nil {
				tx.Rollback()
				respondError(c, Models.Errf(Models.ErrStaleLine, "treatment %d was claimed by another invoice, re-run the preview", id))
				return
			}
			selected = append(selected, treatment)
		}
	}

	_, prices := previewLines(selected)
	rate := Models.CurrentTaxRate()
	subtotal, tax, total := Models.ComputeTotals(prices, rate)

	invoice := Models.Invoice{
		InvoiceNo:    Models.NewInvoiceNumber(),
		PatientID:    chart.PatientID,
		OdontogramID: chart.ID,
		IssuedDate:   issuedDate,
		Subtotal:     subtotal,
		TaxRate:      rate,
		Tax:          tax,
		Total:        total,
		Status:       Models.InvoiceIssued,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, treatment := range selected {
		// The claim is the one place needing mutual exclusion: it succeeds
		// only if the entry is still unclaimed at the instant of the update.
		if err := Models.ClaimTreatment(tx, treatment.ID, invoice.ID); err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}

		line := Models.InvoiceLine{
			InvoiceID:        invoice.ID,
			ToothTreatmentID: treatment.ID,
			ToothRecordID:    treatment.ToothRecordID,
			Description:      treatment.TreatmentName,
			Price:            Models.RoundMoney(treatment.Price),
		}
		if err := tx.Create(&line).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	committed, err := Models.GetInvoice(Models.DB, invoice.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	SSE.Broadcaster.Publish(SSE.Event{Entity: "invoice", ID: invoice.ID, Action: "committed"})
	c.JSON(http.StatusOK, committed)
}

func FetchInvoice(c *gin.Context) {
	var input struct {
		InvoiceID uint `json:"invoice_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := Models.GetInvoice(Models.DB, input.InvoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":     invoice,
		"paid_amount": invoice.PaidAmount(),
		"balance_due": invoice.BalanceDue(),
	})
}

func FetchPatientInvoices(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var invoices []Models.Invoice
	err := Models.DB.Where("patient_id = ?", input.PatientID).
		Order("issued_date desc").
		Preload("Lines").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Find(&invoices).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, invoices)
}
